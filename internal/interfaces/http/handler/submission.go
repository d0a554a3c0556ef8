package handler

import (
	"github.com/gin-gonic/gin"
	appintake "github.com/lexflow/backend/internal/application/intake"
)

// SubmissionHandler serves public submission entry and the owner views
type SubmissionHandler struct {
	BaseHandler
	submissionService *appintake.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(submissionService *appintake.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit godoc
// @ID           submitForm
// @Summary      Submit a form
// @Description  Records a client's answers, then starts the signature and payment workflow the form requires
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        id path string true "Form ID" format(uuid)
// @Param        request body appintake.SubmitRequest true "Form values"
// @Success      201 {object} APIResponse[appintake.SubmitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /forms/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	formID, ok := h.uuidParam(c, "id", "Form")
	if !ok {
		return
	}
	var req appintake.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.submissionService.Submit(c.Request.Context(), formID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPublicStatus godoc
// @ID           getSubmissionStatus
// @Summary      Submission status
// @Description  Status snapshot polled by the success page
// @Tags         public
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.SubmissionStatusResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /submissions/{id} [get]
func (h *SubmissionHandler) GetPublicStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "Submission")
	if !ok {
		return
	}

	resp, err := h.submissionService.GetPublicStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PublicSign godoc
// @ID           signSubmission
// @Summary      Sign directly
// @Description  Records the signer's name and date without the e-signature provider
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        submission_id path string true "Submission ID" format(uuid)
// @Param        request body appintake.SignRequest true "Signature"
// @Success      200 {object} APIResponse[appintake.SubmissionStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sign/{submission_id} [post]
func (h *SubmissionHandler) PublicSign(c *gin.Context) {
	id, ok := h.uuidParam(c, "submission_id", "Submission")
	if !ok {
		return
	}
	var req appintake.SignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.submissionService.PublicSign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PublicPay godoc
// @ID           paySubmission
// @Summary      Confirm payment directly
// @Description  Manual payment confirmation that bypasses the payment provider
// @Tags         public
// @Produce      json
// @Param        submission_id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.SubmissionStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /pay/{submission_id} [post]
func (h *SubmissionHandler) PublicPay(c *gin.Context) {
	id, ok := h.uuidParam(c, "submission_id", "Submission")
	if !ok {
		return
	}

	resp, err := h.submissionService.PublicPay(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @ID           listSubmissions
// @Summary      List submissions
// @Tags         intake-submissions
// @Produce      json
// @Security     BearerAuth
// @Param        form_id query string false "Form ID" format(uuid)
// @Param        status query string false "Lifecycle status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appintake.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /intake/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var filter appintake.SubmissionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	subs, total, err := h.submissionService.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, subs, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getSubmission
// @Summary      Get a submission
// @Tags         intake-submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[appintake.SubmissionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "Submission")
	if !ok {
		return
	}

	resp, err := h.submissionService.Get(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
