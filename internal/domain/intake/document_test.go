package intake

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	submissionID := uuid.New()

	doc, err := NewDocument(submissionID, "../../Retainer.PDF", DocumentTypeRetainer, "application/pdf", 1024, "lexflow-docs")
	require.NoError(t, err)

	assert.Equal(t, "Retainer.PDF", doc.Filename)
	assert.True(t, doc.IsRetainer())
	assert.Equal(t, "submissions/"+submissionID.String()+"/"+doc.ID.String()+".pdf", doc.StorageKey)
	assert.Equal(t, "lexflow-docs", doc.Bucket)
}

func TestNewDocument_NormalizesFilename(t *testing.T) {
	decomposed := "Re\u0301sume\u0301.pdf"
	doc, err := NewDocument(uuid.New(), decomposed, DocumentTypeAttachment, "application/pdf", 10, "b")
	require.NoError(t, err)
	assert.Equal(t, "R\u00e9sum\u00e9.pdf", doc.Filename)
}

func TestNewDocument_Validation(t *testing.T) {
	id := uuid.New()

	_, err := NewDocument(id, "", "retainer", "application/pdf", 10, "b")
	assert.Error(t, err)

	_, err = NewDocument(id, "a.pdf", "retainer", "application/pdf", 0, "b")
	assert.Error(t, err)

	_, err = NewDocument(id, "a.pdf", "retainer", "application/pdf", MaxDocumentSize+1, "b")
	assert.Error(t, err)

	doc, err := NewDocument(id, "notes.txt", "", "text/plain", 10, "b")
	require.NoError(t, err)
	assert.Equal(t, DocumentTypeAttachment, doc.DocumentType)
	assert.False(t, doc.IsRetainer())
	assert.True(t, strings.HasSuffix(doc.StorageKey, ".txt"))
}
