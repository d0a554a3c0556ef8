package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FormService manages a firm's intake forms
type FormService struct {
	forms  intake.FormRepository
	logger *zap.Logger
}

// NewFormService creates a new FormService
func NewFormService(forms intake.FormRepository, logger *zap.Logger) *FormService {
	return &FormService{forms: forms, logger: logger}
}

// Create creates a new form for the firm
func (s *FormService) Create(ctx context.Context, firmID uuid.UUID, req CreateFormRequest) (*FormResponse, error) {
	form, err := intake.NewIntakeForm(firmID, req.Name, req.FieldsSchema)
	if err != nil {
		return nil, err
	}
	form.Description = req.Description
	form.RetainerTemplateURL = req.RetainerTemplateURL
	if req.RetainerAmount != nil {
		if err := form.SetRetainerAmount(*req.RetainerAmount); err != nil {
			return nil, err
		}
	}
	if req.PaymentRequired != nil {
		form.PaymentRequired = *req.PaymentRequired
	}
	if req.IsActive != nil {
		form.IsActive = *req.IsActive
	}

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, err
	}

	s.logger.Info("Intake form created",
		zap.String("firm_id", firmID.String()),
		zap.String("form_id", form.ID.String()))

	resp := ToFormResponse(form)
	return &resp, nil
}

// Get returns one of the firm's forms, active or not
func (s *FormService) Get(ctx context.Context, firmID, id uuid.UUID) (*FormResponse, error) {
	form, err := s.forms.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	resp := ToFormResponse(form)
	return &resp, nil
}

// GetPublic returns an active form. Inactive and missing forms are both
// reported as not found.
func (s *FormService) GetPublic(ctx context.Context, id uuid.UUID) (*PublicFormResponse, error) {
	form, err := s.forms.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsPubliclyVisible() {
		return nil, intake.ErrFormNotFound
	}
	resp := ToPublicFormResponse(form)
	return &resp, nil
}

// List pages through the firm's forms
func (s *FormService) List(ctx context.Context, firmID uuid.UUID, filter FormListFilter) ([]FormResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	domainFilter.Normalize()
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	forms, total, err := s.forms.ListForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToFormResponses(forms), total, nil
}

// Update applies a partial update
func (s *FormService) Update(ctx context.Context, firmID, id uuid.UUID, req UpdateFormRequest) (*FormResponse, error) {
	form, err := s.forms.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}

	if err := form.Update(intake.FormUpdate{
		Name:                req.Name,
		Description:         req.Description,
		FieldsSchema:        req.FieldsSchema,
		RetainerTemplateURL: req.RetainerTemplateURL,
		RetainerAmount:      req.RetainerAmount,
		PaymentRequired:     req.PaymentRequired,
		IsActive:            req.IsActive,
	}); err != nil {
		return nil, err
	}

	if err := s.forms.Save(ctx, form); err != nil {
		return nil, err
	}

	resp := ToFormResponse(form)
	return &resp, nil
}

// Delete deactivates the form. Submissions keep referencing it.
func (s *FormService) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	form, err := s.forms.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return err
	}
	if !form.IsActive {
		return nil
	}
	form.Deactivate()
	if err := s.forms.Save(ctx, form); err != nil {
		return err
	}

	s.logger.Info("Intake form deactivated",
		zap.String("firm_id", firmID.String()),
		zap.String("form_id", id.String()))
	return nil
}
