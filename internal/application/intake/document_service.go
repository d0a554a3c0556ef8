package intake

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"go.uber.org/zap"
)

// DefaultDownloadURLTTL is how long a presigned download link stays valid
const DefaultDownloadURLTTL = time.Hour

// DocumentService stores and serves documents attached to submissions.
// Every operation is scoped to the caller's firm through the submission.
type DocumentService struct {
	submissions intake.SubmissionRepository
	documents   intake.DocumentRepository
	storage     ObjectStorage
	urlTTL      time.Duration
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	submissions intake.SubmissionRepository,
	documents intake.DocumentRepository,
	storage ObjectStorage,
	urlTTL time.Duration,
	logger *zap.Logger,
) *DocumentService {
	if urlTTL <= 0 {
		urlTTL = DefaultDownloadURLTTL
	}
	return &DocumentService{
		submissions: submissions,
		documents:   documents,
		storage:     storage,
		urlTTL:      urlTTL,
		logger:      logger,
	}
}

// Upload stores the file and records its metadata
func (s *DocumentService) Upload(ctx context.Context, firmID uuid.UUID, in UploadDocumentInput) (*DocumentResponse, error) {
	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, in.SubmissionID)
	if err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(in.Data)
	}
	doc, err := intake.NewDocument(sub.ID, in.Filename, in.DocumentType, contentType, int64(len(in.Data)), s.storage.GetBucket())
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, doc.StorageKey, in.Data, contentType); err != nil {
		s.logger.Error("Failed to upload document",
			zap.String("submission_id", sub.ID.String()),
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err))
		return nil, err
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		// Do not leave an orphaned blob behind
		if delErr := s.storage.DeleteObject(ctx, doc.StorageKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned document blob",
				zap.String("storage_key", doc.StorageKey),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("submission_id", sub.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("document_type", doc.DocumentType),
		zap.Int64("size", doc.FileSize))

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Get returns document metadata with a presigned download URL
func (s *DocumentService) Get(ctx context.Context, firmID, id uuid.UUID) (*DocumentDetailResponse, error) {
	doc, err := s.documents.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &DocumentDetailResponse{
		DocumentResponse: ToDocumentResponse(doc),
		DownloadURL:      url,
		ExpiresAt:        expiresAt,
	}, nil
}

// Download returns the document bytes
func (s *DocumentService) Download(ctx context.Context, firmID, id uuid.UUID) (*DocumentContent, error) {
	doc, err := s.documents.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}
	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &DocumentContent{Filename: doc.Filename, ContentType: contentType, Data: data}, nil
}

// Delete removes the blob and the metadata row
func (s *DocumentService) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	doc, err := s.documents.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return err
	}

	s.logger.Info("Document deleted",
		zap.String("document_id", doc.ID.String()),
		zap.String("submission_id", doc.SubmissionID.String()))
	return nil
}

// ListBySubmission returns the documents of one of the firm's submissions
func (s *DocumentService) ListBySubmission(ctx context.Context, firmID, submissionID uuid.UUID) ([]DocumentResponse, error) {
	sub, err := s.submissions.FindByIDForFirm(ctx, firmID, submissionID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}
