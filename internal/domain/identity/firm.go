package identity

import (
	"strings"
	"time"

	"github.com/lexflow/backend/internal/domain/shared"
)

// SubscriptionStatus represents the billing state of a firm
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

// IsValid reports whether s is a known subscription status
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionCancelled, SubscriptionPastDue:
		return true
	}
	return false
}

// Firm is the tenant root. It owns users, clients and intake forms.
type Firm struct {
	shared.BaseAggregateRoot
	Name               string
	Email              string
	Phone              string
	Address            string
	StripeCustomerID   string
	SubscriptionStatus SubscriptionStatus
	Branding           map[string]any
	IsActive           bool
}

// NewFirm creates an active firm on a trial subscription
func NewFirm(name, email string) (*Firm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FIRM_NAME", "Firm name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_FIRM_NAME", "Firm name cannot exceed 200 characters")
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	firm := &Firm{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		Email:              email,
		SubscriptionStatus: SubscriptionTrial,
		IsActive:           true,
	}
	firm.AddDomainEvent(NewFirmRegisteredEvent(firm))
	return firm, nil
}

// FirmUpdate carries the mutable profile fields; nil means unchanged
type FirmUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Branding map[string]any
}

// Update applies a partial profile update
func (f *Firm) Update(in FirmUpdate) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_FIRM_NAME", "Firm name is required")
		}
		f.Name = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
		f.Email = email
	}
	if in.Phone != nil {
		f.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		f.Address = strings.TrimSpace(*in.Address)
	}
	if in.Branding != nil {
		f.Branding = in.Branding
	}
	f.UpdatedAt = time.Now()
	return nil
}
