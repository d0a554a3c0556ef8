package handler

import (
	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
)

// SignatureHandler drives the e-signature step for firm users
type SignatureHandler struct {
	BaseHandler
	signatureService *appintake.SignatureService
}

// NewSignatureHandler creates a new SignatureHandler
func NewSignatureHandler(signatureService *appintake.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatureService: signatureService}
}

// RequestSignature godoc
// @ID           requestSignature
// @Summary      Send for signature
// @Description  Sends the submission's retainer document to the client through the e-signature provider
// @Tags         signatures
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.SignatureRequestResponse]
// @Failure      400 {object} ErrorResponse "Already signed or no retainer document"
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /submissions/{id}/signature/request [post]
func (h *SignatureHandler) RequestSignature(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Submission")
	if !ok {
		return
	}

	resp, err := h.signatureService.RequestSignature(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SignatureStatus godoc
// @ID           getSignatureStatus
// @Summary      Signature status
// @Description  Polls the e-signature provider and reconciles the submission with the answer
// @Tags         signatures
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.SignatureStatusResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /submissions/{id}/signature/status [get]
func (h *SignatureHandler) SignatureStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Submission")
	if !ok {
		return
	}

	resp, err := h.signatureService.SignatureStatus(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
