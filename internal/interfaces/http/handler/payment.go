package handler

import (
	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
)

// PaymentHandler exposes the payment poll to firm users
type PaymentHandler struct {
	BaseHandler
	paymentService *appintake.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appintake.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentStatus godoc
// @ID           getPaymentStatus
// @Summary      Payment status
// @Description  Polls the checkout session and reconciles the submission with the answer
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.PaymentStatusResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /submissions/{id}/payment/status [get]
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Submission")
	if !ok {
		return
	}

	resp, err := h.paymentService.PaymentStatus(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
