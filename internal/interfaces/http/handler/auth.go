package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/lexflow/backend/internal/application/identity"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @ID           registerFirm
// @Summary      Register a firm
// @Description  Creates a law firm together with its first administrator and returns a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RegisterRequest true "Registration"
// @Success      201 {object} APIResponse[appidentity.AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req appidentity.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @ID           login
// @Summary      Log in
// @Description  Exchanges email and password for a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[appidentity.AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[appidentity.AuthResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req appidentity.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CurrentUser godoc
// @ID           getCurrentUser
// @Summary      Current user
// @Description  Returns the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[appidentity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /users/me [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.authService.CurrentUser(c.Request.Context(), *p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
