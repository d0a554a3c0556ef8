package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/infrastructure/esign"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// maxWebhookPayloadSize bounds provider callbacks. DocuSign Connect may embed
// envelope summaries, so this is larger than a bare Stripe event.
const maxWebhookPayloadSize = 256 << 10

// StripeSignatureHeader carries the Stripe webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// WebhookHandler receives provider callbacks. These endpoints are called by
// Stripe and DocuSign and do not require authentication; the payload
// signature is the credential.
type WebhookHandler struct {
	BaseHandler
	paymentService   *appintake.PaymentService
	signatureService *appintake.SignatureService
	logger           *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paymentService *appintake.PaymentService, signatureService *appintake.SignatureService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentService:   paymentService,
		signatureService: signatureService,
		logger:           logger,
	}
}

// PaymentWebhook godoc
// @ID           handlePaymentWebhook
// @Summary      Payment provider webhook
// @Description  Receives checkout events from Stripe. Every verified event is acknowledged with 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe webhook signature"
// @Success      200 {object} appintake.WebhookResult
// @Failure      401 {object} ErrorResponse "Invalid signature"
// @Failure      413 {object} ErrorResponse
// @Router       /webhooks/payment [post]
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SignatureWebhook godoc
// @ID           handleSignatureWebhook
// @Summary      E-signature provider webhook
// @Description  Receives envelope events from DocuSign Connect. Unknown envelopes and events are acknowledged with 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-DocuSign-Signature-1 header string false "Connect HMAC signature, required when a secret is configured"
// @Success      200 {object} appintake.WebhookResult
// @Failure      401 {object} ErrorResponse "Invalid signature"
// @Failure      413 {object} ErrorResponse
// @Router       /webhooks/signature [post]
func (h *WebhookHandler) SignatureWebhook(c *gin.Context) {
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	result, err := h.signatureService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(esign.ConnectSignatureHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// readPayload reads the raw body, which signature verification needs
// byte for byte
func (h *WebhookHandler) readPayload(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		h.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Payload too large")
		return nil, false
	}
	return payload, true
}
