package handler

import (
	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
)

// ClientHandler serves the firm's client registry
type ClientHandler struct {
	BaseHandler
	clientService *appintake.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *appintake.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Client status" Enums(pending, signed, paid, active, rejected)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appintake.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var filter appintake.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Client")
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appintake.UpdateClientRequest true "Changed fields"
// @Success      200 {object} APIResponse[appintake.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Client")
	if !ok {
		return
	}
	var req appintake.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), firmID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}
