package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
)

// ClientStatus is informational only; the submission owns the workflow state
type ClientStatus string

const (
	ClientPending  ClientStatus = "pending"
	ClientSigned   ClientStatus = "signed"
	ClientPaid     ClientStatus = "paid"
	ClientActive   ClientStatus = "active"
	ClientRejected ClientStatus = "rejected"
)

// IsValid reports whether s is a known client status
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientPending, ClientSigned, ClientPaid, ClientActive, ClientRejected:
		return true
	}
	return false
}

// Client is a firm-scoped contact, unique by (firm, email)
type Client struct {
	shared.FirmAggregateRoot
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	IntakeData map[string]any
	Status     ClientStatus
}

// ClientProfile holds the contact fields extracted from submitted form data
type ClientProfile struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// NormalizeClientEmail is the canonical form used for deduplication
func NormalizeClientEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileFromFormData extracts the client profile from submitted values.
// Both snake_case and camelCase name keys are accepted.
func ProfileFromFormData(formData map[string]any) (ClientProfile, error) {
	email := NormalizeClientEmail(stringField(formData, "email"))
	if email == "" {
		return ClientProfile{}, shared.NewDomainError(shared.CodeInvalidInput, "Client email is required")
	}
	return ClientProfile{
		Email:     email,
		FirstName: firstNonEmpty(stringField(formData, "first_name"), stringField(formData, "firstName")),
		LastName:  firstNonEmpty(stringField(formData, "last_name"), stringField(formData, "lastName")),
		Phone:     stringField(formData, "phone"),
	}, nil
}

// NewClient creates a pending client from a profile and the raw intake payload
func NewClient(firmID uuid.UUID, profile ClientProfile, intakeData map[string]any) (*Client, error) {
	email := NormalizeClientEmail(profile.Email)
	if email == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Client email is required")
	}
	return &Client{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Email:             email,
		FirstName:         strings.TrimSpace(profile.FirstName),
		LastName:          strings.TrimSpace(profile.LastName),
		Phone:             strings.TrimSpace(profile.Phone),
		IntakeData:        intakeData,
		Status:            ClientPending,
	}, nil
}

// FullName joins first and last name
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ClientUpdate is a partial update; nil fields are left unchanged
type ClientUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Status    *ClientStatus
}

// Update applies a partial update
func (c *Client) Update(in ClientUpdate) error {
	if in.Status != nil {
		if !in.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Unknown client status")
		}
		c.Status = *in.Status
	}
	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	c.UpdatedAt = time.Now()
	return nil
}

// StatusForSubmission maps a submission's workflow position onto the
// informational client status. It returns false when the client status
// should stay as it is.
func StatusForSubmission(s *Submission) (ClientStatus, bool) {
	switch s.Status {
	case StatusCompleted:
		return ClientActive, true
	case StatusPaymentCompleted:
		return ClientPaid, true
	case StatusAwaitingPayment, StatusPaymentExpired:
		if s.SignatureStatus == SignatureSigned {
			return ClientSigned, true
		}
	case StatusDeclined, StatusCancelled:
		return ClientRejected, true
	}
	return "", false
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
