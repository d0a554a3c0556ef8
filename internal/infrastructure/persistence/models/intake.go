package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IntakeFormModel is the persistence model for IntakeForm
type IntakeFormModel struct {
	FirmAggregateModel
	Name                string              `gorm:"type:varchar(200);not null"`
	Description         string              `gorm:"type:text"`
	FieldsSchema        string              `gorm:"type:jsonb;not null;default:'{}'"`
	RetainerTemplateURL string              `gorm:"type:varchar(500)"`
	RetainerAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PaymentRequired     bool                `gorm:"not null"`
	IsActive            bool                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (IntakeFormModel) TableName() string {
	return "intake_forms"
}

// ToDomain converts the persistence model to a domain IntakeForm
func (m *IntakeFormModel) ToDomain() *intake.IntakeForm {
	return &intake.IntakeForm{
		FirmAggregateRoot:   m.ToFirmAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		FieldsSchema:        decodeJSON(m.FieldsSchema),
		RetainerTemplateURL: m.RetainerTemplateURL,
		RetainerAmount:      m.RetainerAmount,
		PaymentRequired:     m.PaymentRequired,
		IsActive:            m.IsActive,
	}
}

// IntakeFormModelFromDomain creates a persistence model from a domain form
func IntakeFormModelFromDomain(f *intake.IntakeForm) *IntakeFormModel {
	m := &IntakeFormModel{
		Name:                f.Name,
		Description:         f.Description,
		FieldsSchema:        encodeJSON(f.FieldsSchema),
		RetainerTemplateURL: f.RetainerTemplateURL,
		RetainerAmount:      f.RetainerAmount,
		PaymentRequired:     f.PaymentRequired,
		IsActive:            f.IsActive,
	}
	m.FromDomainFirmAggregateRoot(f.FirmAggregateRoot)
	return m
}

// ClientModel is the persistence model for Client.
// (firm_id, email) is unique; get-or-create relies on it.
type ClientModel struct {
	AggregateModel
	FirmID     uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_clients_firm_email,priority:1"`
	Email      string              `gorm:"type:varchar(200);not null;uniqueIndex:idx_clients_firm_email,priority:2"`
	FirstName  string              `gorm:"type:varchar(100)"`
	LastName   string              `gorm:"type:varchar(100)"`
	Phone      string              `gorm:"type:varchar(50)"`
	IntakeData string              `gorm:"type:jsonb;not null;default:'{}'"`
	Status     intake.ClientStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *intake.Client {
	return &intake.Client{
		FirmAggregateRoot: shared.FirmAggregateRoot{
			BaseAggregateRoot: m.ToAggregateRoot(),
			FirmID:            m.FirmID,
		},
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Phone:      m.Phone,
		IntakeData: decodeJSON(m.IntakeData),
		Status:     m.Status,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client
func ClientModelFromDomain(c *intake.Client) *ClientModel {
	m := &ClientModel{
		FirmID:     c.FirmID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Phone:      c.Phone,
		IntakeData: encodeJSON(c.IntakeData),
		Status:     c.Status,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// SubmissionModel is the persistence model for Submission.
// Correlation ids are unique so a webhook can never resolve to two rows.
type SubmissionModel struct {
	FirmAggregateModel
	FormID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	ClientID          uuid.UUID               `gorm:"type:uuid;not null;index"`
	FormData          string                  `gorm:"type:jsonb;not null;default:'{}'"`
	SignatureRequired bool                    `gorm:"not null"`
	PaymentRequired   bool                    `gorm:"not null"`
	SignatureStatus   intake.SignatureStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus     intake.PaymentStatus    `gorm:"type:varchar(20);not null;default:'pending'"`
	Status            intake.SubmissionStatus `gorm:"type:varchar(30);not null;default:'submitted';index"`
	EnvelopeID        *string                 `gorm:"type:varchar(255);uniqueIndex"`
	CheckoutSessionID *string                 `gorm:"type:varchar(255);uniqueIndex"`
	PaymentAmount     decimal.NullDecimal     `gorm:"type:decimal(12,2)"`
	SignedAt          *time.Time
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (SubmissionModel) TableName() string {
	return "submissions"
}

// ToDomain converts the persistence model to a domain Submission
func (m *SubmissionModel) ToDomain() *intake.Submission {
	return &intake.Submission{
		FirmAggregateRoot: m.ToFirmAggregateRoot(),
		FormID:            m.FormID,
		ClientID:          m.ClientID,
		FormData:          decodeJSON(m.FormData),
		Requirements: intake.Requirements{
			SignatureRequired: m.SignatureRequired,
			PaymentRequired:   m.PaymentRequired,
		},
		SignatureStatus:   m.SignatureStatus,
		PaymentStatus:     m.PaymentStatus,
		Status:            m.Status,
		EnvelopeID:        m.EnvelopeID,
		CheckoutSessionID: m.CheckoutSessionID,
		PaymentAmount:     m.PaymentAmount,
		SignedAt:          m.SignedAt,
		PaidAt:            m.PaidAt,
	}
}

// SubmissionModelFromDomain creates a persistence model from a domain Submission
func SubmissionModelFromDomain(s *intake.Submission) *SubmissionModel {
	m := &SubmissionModel{
		FormID:            s.FormID,
		ClientID:          s.ClientID,
		FormData:          encodeJSON(s.FormData),
		SignatureRequired: s.Requirements.SignatureRequired,
		PaymentRequired:   s.Requirements.PaymentRequired,
		SignatureStatus:   s.SignatureStatus,
		PaymentStatus:     s.PaymentStatus,
		Status:            s.Status,
		EnvelopeID:        s.EnvelopeID,
		CheckoutSessionID: s.CheckoutSessionID,
		PaymentAmount:     s.PaymentAmount,
		SignedAt:          s.SignedAt,
		PaidAt:            s.PaidAt,
	}
	m.FromDomainFirmAggregateRoot(s.FirmAggregateRoot)
	return m
}

// LockedUpdates returns the mutable columns written by an optimistic save
func (m *SubmissionModel) LockedUpdates(nextVersion int) map[string]any {
	return map[string]any{
		"form_data":           m.FormData,
		"signature_status":    m.SignatureStatus,
		"payment_status":      m.PaymentStatus,
		"status":              m.Status,
		"envelope_id":         m.EnvelopeID,
		"checkout_session_id": m.CheckoutSessionID,
		"signed_at":           m.SignedAt,
		"paid_at":             m.PaidAt,
		"updated_at":          m.UpdatedAt,
		"version":             nextVersion,
	}
}

// DocumentModel is the persistence model for Document
type DocumentModel struct {
	BaseModel
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename     string    `gorm:"type:varchar(255);not null"`
	DocumentType string    `gorm:"type:varchar(50);not null;index"`
	MimeType     string    `gorm:"type:varchar(100)"`
	FileSize     int64     `gorm:"not null"`
	StorageKey   string    `gorm:"type:varchar(500);not null"`
	Bucket       string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *intake.Document {
	return &intake.Document{
		BaseEntity:   m.BaseModel.ToDomain(),
		SubmissionID: m.SubmissionID,
		Filename:     m.Filename,
		DocumentType: m.DocumentType,
		MimeType:     m.MimeType,
		FileSize:     m.FileSize,
		StorageKey:   m.StorageKey,
		Bucket:       m.Bucket,
	}
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *intake.Document) *DocumentModel {
	m := &DocumentModel{
		SubmissionID: d.SubmissionID,
		Filename:     d.Filename,
		DocumentType: d.DocumentType,
		MimeType:     d.MimeType,
		FileSize:     d.FileSize,
		StorageKey:   d.StorageKey,
		Bucket:       d.Bucket,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
