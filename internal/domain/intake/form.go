package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeIntakeForm is the aggregate type for form events
const AggregateTypeIntakeForm = "IntakeForm"

// IntakeForm is a firm-owned template that clients fill in publicly
type IntakeForm struct {
	shared.FirmAggregateRoot
	Name                string
	Description         string
	FieldsSchema        map[string]any
	RetainerTemplateURL string
	RetainerAmount      decimal.NullDecimal
	PaymentRequired     bool
	IsActive            bool
}

// NewIntakeForm creates an active form owned by firmID
func NewIntakeForm(firmID uuid.UUID, name string, fieldsSchema map[string]any) (*IntakeForm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FORM_NAME", "Form name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_FORM_NAME", "Form name cannot exceed 200 characters")
	}
	if fieldsSchema == nil {
		fieldsSchema = map[string]any{}
	}
	return &IntakeForm{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Name:              name,
		FieldsSchema:      fieldsSchema,
		PaymentRequired:   true,
		IsActive:          true,
	}, nil
}

// SetRetainerAmount validates and sets the retainer amount. An empty
// string clears it.
func (f *IntakeForm) SetRetainerAmount(raw string) error {
	amount, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	f.RetainerAmount = amount
	return nil
}

// HasRetainerTemplate reports whether a retainer document template is attached
func (f *IntakeForm) HasRetainerTemplate() bool {
	return strings.TrimSpace(f.RetainerTemplateURL) != ""
}

// Requirements derives what a new submission against this form must collect.
// A retainer template or a payment flag means the client signs first;
// payment is only collectable when an amount is set.
func (f *IntakeForm) Requirements() Requirements {
	return Requirements{
		SignatureRequired: f.HasRetainerTemplate() || f.PaymentRequired,
		PaymentRequired:   f.PaymentRequired && f.RetainerAmount.Valid && f.RetainerAmount.Decimal.IsPositive(),
	}
}

// IsPubliclyVisible reports whether the public endpoints may expose the form
func (f *IntakeForm) IsPubliclyVisible() bool {
	return f.IsActive
}

// FormUpdate is a partial update; nil fields are left unchanged
type FormUpdate struct {
	Name                *string
	Description         *string
	FieldsSchema        map[string]any
	RetainerTemplateURL *string
	RetainerAmount      *string
	PaymentRequired     *bool
	IsActive            *bool
}

// Update applies a partial update
func (f *IntakeForm) Update(in FormUpdate) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_FORM_NAME", "Form name is required")
		}
		f.Name = name
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.FieldsSchema != nil {
		f.FieldsSchema = in.FieldsSchema
	}
	if in.RetainerTemplateURL != nil {
		f.RetainerTemplateURL = strings.TrimSpace(*in.RetainerTemplateURL)
	}
	if in.RetainerAmount != nil {
		if err := f.SetRetainerAmount(*in.RetainerAmount); err != nil {
			return err
		}
	}
	if in.PaymentRequired != nil {
		f.PaymentRequired = *in.PaymentRequired
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	f.UpdatedAt = time.Now()
	return nil
}

// Deactivate hides the form from public endpoints. Forms are never hard
// deleted because submissions keep referencing them.
func (f *IntakeForm) Deactivate() {
	f.IsActive = false
	f.UpdatedAt = time.Now()
}
