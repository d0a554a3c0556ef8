package intake

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// MaxDocumentSize is the largest accepted upload (10 MiB)
const MaxDocumentSize = 10 << 20

// Document types that can be sent out for signature
const (
	DocumentTypeRetainer         = "retainer"
	DocumentTypeRetainerTemplate = "retainer_template"
	DocumentTypeAttachment       = "attachment"
)

// RetainerDocumentTypes lists the types accepted as the signable retainer
var RetainerDocumentTypes = []string{DocumentTypeRetainer, DocumentTypeRetainerTemplate}

// Document is a stored blob attached to exactly one submission
type Document struct {
	shared.BaseEntity
	SubmissionID uuid.UUID
	Filename     string
	DocumentType string
	MimeType     string
	FileSize     int64
	StorageKey   string
	Bucket       string
}

// NewDocument validates and creates a document record for an uploaded blob.
// The storage key is derived from the submission and a fresh id. Filenames
// are stored in NFC so decomposed names from macOS clients compare equal.
func NewDocument(submissionID uuid.UUID, filename, documentType, mimeType string, size int64, bucket string) (*Document, error) {
	filename = norm.NFC.String(strings.TrimSpace(filepath.Base(filename)))
	if filename == "" || filename == "." || filename == "/" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Filename is required")
	}
	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		documentType = DocumentTypeAttachment
	}
	if size <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document is empty")
	}
	if size > MaxDocumentSize {
		return nil, shared.NewDomainError("PAYLOAD_TOO_LARGE", "Document exceeds the 10MB limit")
	}

	doc := &Document{
		BaseEntity:   shared.NewBaseEntity(),
		SubmissionID: submissionID,
		Filename:     filename,
		DocumentType: documentType,
		MimeType:     mimeType,
		FileSize:     size,
		Bucket:       bucket,
	}
	doc.StorageKey = DocumentStorageKey(submissionID, doc.ID, filename)
	return doc, nil
}

// DocumentStorageKey builds submissions/{submission}/{id}{ext}
func DocumentStorageKey(submissionID, documentID uuid.UUID, filename string) string {
	return "submissions/" + submissionID.String() + "/" + documentID.String() + strings.ToLower(filepath.Ext(filename))
}

// IsRetainer reports whether the document can be sent for signature
func (d *Document) IsRetainer() bool {
	for _, t := range RetainerDocumentTypes {
		if d.DocumentType == t {
			return true
		}
	}
	return false
}
