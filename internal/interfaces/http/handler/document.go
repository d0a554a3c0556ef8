package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appintake "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
)

// DocumentUploadLimit is the request body limit of the upload route. It
// leaves room for the multipart framing around a maximum-size file.
const DocumentUploadLimit = intake.MaxDocumentSize + 1<<20

// UploadDocumentQuery carries the upload target
type UploadDocumentQuery struct {
	SubmissionID string `form:"submission_id" binding:"required,uuid"`
	DocumentType string `form:"document_type" binding:"omitempty,oneof=retainer retainer_template attachment"`
}

// DocumentHandler serves documents attached to submissions
type DocumentHandler struct {
	BaseHandler
	documentService *appintake.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *appintake.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload godoc
// @ID           uploadDocument
// @Summary      Upload a document
// @Description  Attaches a file to a submission. Upload a retainer before requesting a signature.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        submission_id query string true "Submission ID" format(uuid)
// @Param        document_type query string false "Document type" Enums(retainer, retainer_template, attachment)
// @Param        file formData file true "File, at most 10 MiB"
// @Success      201 {object} APIResponse[appintake.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var query UploadDocumentQuery
	if !h.bindQuery(c, &query) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "File exceeds the 10 MiB limit")
			return
		}
		h.BadRequest(c, "A file is required")
		return
	}
	if fileHeader.Size > intake.MaxDocumentSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "File exceeds the 10 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, intake.MaxDocumentSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read file")
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), firmID, appintake.UploadDocumentInput{
		SubmissionID: uuid.MustParse(query.SubmissionID),
		DocumentType: query.DocumentType,
		Filename:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Get godoc
// @ID           getDocument
// @Summary      Get a document
// @Description  Returns document metadata with a presigned download URL
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.DocumentDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Document")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Download godoc
// @ID           downloadDocument
// @Summary      Download a document
// @Tags         documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Document")
	if !ok {
		return
	}

	content, err := h.documentService.Download(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.Filename}))
	c.Data(http.StatusOK, content.ContentType, content.Data)
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Tags         documents
// @Security     BearerAuth
// @Param        id path string true "Document ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Document")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), firmID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListBySubmission godoc
// @ID           listSubmissionDocuments
// @Summary      List a submission's documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        submission_id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[[]appintake.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /documents/submission/{submission_id} [get]
func (h *DocumentHandler) ListBySubmission(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	submissionID, ok := h.uuidParam(c, "submission_id", "Submission")
	if !ok {
		return
	}

	docs, err := h.documentService.ListBySubmission(c.Request.Context(), firmID, submissionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}
