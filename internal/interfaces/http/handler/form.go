package handler

import (
	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
)

// FormHandler serves the form catalog: the owner CRUD surface and the
// public form lookup
type FormHandler struct {
	BaseHandler
	formService *appintake.FormService
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(formService *appintake.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// GetPublicForm godoc
// @ID           getPublicForm
// @Summary      Get a public form
// @Description  Returns an active intake form for display to a prospective client
// @Tags         public
// @Produce      json
// @Param        id path string true "Form ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.PublicFormResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /forms/{id} [get]
func (h *FormHandler) GetPublicForm(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "Form")
	if !ok {
		return
	}

	form, err := h.formService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Create godoc
// @ID           createIntakeForm
// @Summary      Create a form
// @Tags         intake-forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appintake.CreateFormRequest true "Form"
// @Success      201 {object} APIResponse[appintake.FormResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /intake/forms [post]
func (h *FormHandler) Create(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var req appintake.CreateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	form, err := h.formService.Create(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, form)
}

// List godoc
// @ID           listIntakeForms
// @Summary      List forms
// @Description  Lists the firm's forms, inactive ones included unless filtered
// @Tags         intake-forms
// @Produce      json
// @Security     BearerAuth
// @Param        is_active query bool false "Active filter"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appintake.FormResponse]
// @Router       /intake/forms [get]
func (h *FormHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var filter appintake.FormListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	forms, total, err := h.formService.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, forms, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getIntakeForm
// @Summary      Get a form
// @Tags         intake-forms
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Form ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.FormResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/forms/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Form")
	if !ok {
		return
	}

	form, err := h.formService.Get(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Update godoc
// @ID           updateIntakeForm
// @Summary      Update a form
// @Tags         intake-forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Form ID" format(uuid)
// @Param        request body appintake.UpdateFormRequest true "Changed fields"
// @Success      200 {object} APIResponse[appintake.FormResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /intake/forms/{id} [put]
func (h *FormHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Form")
	if !ok {
		return
	}
	var req appintake.UpdateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	form, err := h.formService.Update(c.Request.Context(), firmID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Delete godoc
// @ID           deleteIntakeForm
// @Summary      Deactivate a form
// @Description  Soft delete: the form stops accepting submissions
// @Tags         intake-forms
// @Security     BearerAuth
// @Param        id path string true "Form ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /intake/forms/{id} [delete]
func (h *FormHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Form")
	if !ok {
		return
	}

	if err := h.formService.Delete(c.Request.Context(), firmID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
