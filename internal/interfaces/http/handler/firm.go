package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/lexflow/backend/internal/application/identity"
)

// FirmHandler serves the caller's firm profile
type FirmHandler struct {
	BaseHandler
	firmService *appidentity.FirmService
}

// NewFirmHandler creates a new FirmHandler
func NewFirmHandler(firmService *appidentity.FirmService) *FirmHandler {
	return &FirmHandler{firmService: firmService}
}

// GetFirm godoc
// @ID           getMyFirm
// @Summary      Get firm
// @Description  Returns the authenticated user's firm
// @Tags         firms
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[appidentity.FirmResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /firms/me [get]
func (h *FirmHandler) GetFirm(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.firmService.GetFirm(c.Request.Context(), *p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateFirm godoc
// @ID           updateMyFirm
// @Summary      Update firm
// @Description  Updates the firm profile. Only a super-user may do this.
// @Tags         firms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appidentity.UpdateFirmRequest true "Firm fields"
// @Success      200 {object} APIResponse[appidentity.FirmResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /firms/me [put]
func (h *FirmHandler) UpdateFirm(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appidentity.UpdateFirmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.firmService.UpdateFirm(c.Request.Context(), *p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
