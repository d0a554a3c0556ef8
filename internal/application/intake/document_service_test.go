package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	pdf := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")

	t.Run("stores blob and metadata", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		env.storage.On("GetBucket").Return("lexflow-documents")
		env.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "submissions/"+sub.ID.String()+"/") && strings.HasSuffix(key, ".pdf")
		}), pdf, "application/pdf").Return(nil)
		env.documents.On("Create", mock.Anything, mock.AnythingOfType("*intake.Document")).Return(nil)

		resp, err := env.documentSvc.Upload(ctx, env.firmID, UploadDocumentInput{
			SubmissionID: sub.ID,
			DocumentType: intake.DocumentTypeRetainer,
			Filename:     "retainer.pdf",
			Data:         pdf,
		})
		require.NoError(t, err)
		assert.Equal(t, "retainer.pdf", resp.Filename)
		assert.Equal(t, "application/pdf", resp.MimeType)
		assert.Equal(t, int64(len(pdf)), resp.FileSize)
		env.storage.AssertExpectations(t)
		env.documents.AssertExpectations(t)
	})

	t.Run("removes blob when metadata write fails", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		env.storage.On("GetBucket").Return("lexflow-documents")
		env.storage.On("Upload", mock.Anything, mock.Anything, pdf, "application/pdf").Return(nil)
		env.storage.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)
		env.documents.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		_, err := env.documentSvc.Upload(ctx, env.firmID, UploadDocumentInput{
			SubmissionID: sub.ID,
			Filename:     "retainer.pdf",
			ContentType:  "application/pdf",
			Data:         pdf,
		})
		require.Error(t, err)
		env.storage.AssertCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		env.storage.On("GetBucket").Return("lexflow-documents")

		_, err := env.documentSvc.Upload(ctx, env.firmID, UploadDocumentInput{
			SubmissionID: sub.ID,
			Filename:     "retainer.pdf",
			ContentType:  "application/pdf",
		})
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
		env.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other firm's submission", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))

		_, err := env.documentSvc.Upload(ctx, uuid.New(), UploadDocumentInput{
			SubmissionID: sub.ID,
			Filename:     "retainer.pdf",
			Data:         pdf,
		})
		assert.ErrorIs(t, err, intake.ErrSubmissionNotFound)
	})
}

func TestDocumentService_Reads(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sub := env.seedSubmission(t, env.retainerForm(t))
	doc := retainerDocument(t, sub.ID)

	env.documents.On("FindByIDForFirm", mock.Anything, env.firmID, doc.ID).Return(doc, nil)
	env.documents.On("FindByIDForFirm", mock.Anything, mock.Anything, mock.Anything).Return(nil, intake.ErrDocumentNotFound)

	t.Run("get includes presigned url", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		env.storage.On("GenerateDownloadURL", mock.Anything, doc.StorageKey, DefaultDownloadURLTTL).
			Return("https://s3.example.com/signed", expires, nil).Once()

		resp, err := env.documentSvc.Get(ctx, env.firmID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com/signed", resp.DownloadURL)
		assert.Equal(t, expires, resp.ExpiresAt)
		assert.Equal(t, doc.ID, resp.ID)
	})

	t.Run("download returns bytes", func(t *testing.T) {
		env.storage.On("Download", mock.Anything, doc.StorageKey).Return([]byte("pdf-bytes"), nil).Once()

		content, err := env.documentSvc.Download(ctx, env.firmID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "Retainer Agreement.PDF", content.Filename)
		assert.Equal(t, "application/pdf", content.ContentType)
		assert.Equal(t, []byte("pdf-bytes"), content.Data)
	})

	t.Run("other firm cannot read", func(t *testing.T) {
		_, err := env.documentSvc.Get(ctx, uuid.New(), doc.ID)
		assert.ErrorIs(t, err, intake.ErrDocumentNotFound)
	})

	t.Run("list by submission", func(t *testing.T) {
		env.documents.On("ListBySubmission", mock.Anything, sub.ID).Return([]*intake.Document{doc}, nil).Once()

		docs, err := env.documentSvc.ListBySubmission(ctx, env.firmID, sub.ID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, doc.ID, docs[0].ID)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes object then row", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		doc := retainerDocument(t, sub.ID)
		env.documents.On("FindByIDForFirm", mock.Anything, env.firmID, doc.ID).Return(doc, nil)
		env.storage.On("DeleteObject", mock.Anything, doc.StorageKey).Return(nil)
		env.documents.On("Delete", mock.Anything, doc.ID).Return(nil)

		require.NoError(t, env.documentSvc.Delete(ctx, env.firmID, doc.ID))
		env.documents.AssertExpectations(t)
	})

	t.Run("storage failure keeps the row", func(t *testing.T) {
		env := newTestEnv(t)
		sub := env.seedSubmission(t, env.retainerForm(t))
		doc := retainerDocument(t, sub.ID)
		env.documents.On("FindByIDForFirm", mock.Anything, env.firmID, doc.ID).Return(doc, nil)
		env.storage.On("DeleteObject", mock.Anything, doc.StorageKey).Return(errors.New("access denied"))

		require.Error(t, env.documentSvc.Delete(ctx, env.firmID, doc.ID))
		env.documents.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
