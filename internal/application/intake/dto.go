package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/shopspring/decimal"
)

// CreateFormRequest represents a request to create an intake form
type CreateFormRequest struct {
	Name                string         `json:"name" binding:"required,min=1,max=200"`
	Description         string         `json:"description" binding:"max=2000"`
	FieldsSchema        map[string]any `json:"fields_schema"`
	RetainerTemplateURL string         `json:"retainer_template_url" binding:"max=1000"`
	RetainerAmount      *string        `json:"retainer_amount" binding:"omitempty,money"`
	PaymentRequired     *bool          `json:"payment_required"`
	IsActive            *bool          `json:"is_active"`
}

// UpdateFormRequest is a partial form update
type UpdateFormRequest struct {
	Name                *string        `json:"name" binding:"omitempty,min=1,max=200"`
	Description         *string        `json:"description" binding:"omitempty,max=2000"`
	FieldsSchema        map[string]any `json:"fields_schema"`
	RetainerTemplateURL *string        `json:"retainer_template_url" binding:"omitempty,max=1000"`
	RetainerAmount      *string        `json:"retainer_amount" binding:"omitempty,money"`
	PaymentRequired     *bool          `json:"payment_required"`
	IsActive            *bool          `json:"is_active"`
}

// FormListFilter represents filter options for the owner form list
type FormListFilter struct {
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// FormResponse is the owner view of a form
type FormResponse struct {
	ID                  uuid.UUID      `json:"id"`
	FirmID              uuid.UUID      `json:"firm_id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	FieldsSchema        map[string]any `json:"fields_schema"`
	RetainerTemplateURL string         `json:"retainer_template_url,omitempty"`
	RetainerAmount      *string        `json:"retainer_amount"`
	PaymentRequired     bool           `json:"payment_required"`
	IsActive            bool           `json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// PublicFormResponse is what an unauthenticated client sees
type PublicFormResponse struct {
	ID                  uuid.UUID      `json:"id"`
	FirmID              uuid.UUID      `json:"firm_id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	FieldsSchema        map[string]any `json:"fields_schema"`
	RetainerAmount      *string        `json:"retainer_amount"`
	PaymentRequired     bool           `json:"payment_required"`
	HasRetainerTemplate bool           `json:"has_retainer_template"`
}

// SubmitRequest carries the values a client typed into a public form
type SubmitRequest struct {
	FormData map[string]any `json:"form_data" binding:"required"`
}

// SubmitResponse is returned after a public submission
type SubmitResponse struct {
	Submission   SubmissionResponse `json:"submission"`
	SignatureURL *string            `json:"signature_url"`
	PaymentURL   *string            `json:"payment_url"`
	NextStep     string             `json:"next_step"`
}

// SubmissionResponse is the owner view of a submission
type SubmissionResponse struct {
	ID                uuid.UUID      `json:"id"`
	FirmID            uuid.UUID      `json:"firm_id"`
	FormID            uuid.UUID      `json:"form_id"`
	ClientID          uuid.UUID      `json:"client_id"`
	FormData          map[string]any `json:"form_data"`
	Status            string         `json:"status"`
	SignatureStatus   string         `json:"signature_status"`
	PaymentStatus     string         `json:"payment_status"`
	SignatureRequired bool           `json:"signature_required"`
	PaymentRequired   bool           `json:"payment_required"`
	EnvelopeID        *string        `json:"envelope_id"`
	CheckoutSessionID *string        `json:"checkout_session_id"`
	PaymentAmount     *string        `json:"payment_amount"`
	SignedAt          *time.Time     `json:"signed_at"`
	PaidAt            *time.Time     `json:"paid_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Version           int            `json:"version"`
}

// SubmissionStatusResponse is the public status snapshot polled by the
// success page
type SubmissionStatusResponse struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	SignatureStatus string     `json:"signature_status"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentAmount   *string    `json:"payment_amount"`
	NextStep        string     `json:"next_step"`
	SignedAt        *time.Time `json:"signed_at"`
	PaidAt          *time.Time `json:"paid_at"`
}

// SubmissionListFilter represents filter options for the owner submission list
type SubmissionListFilter struct {
	FormID   string `form:"form_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=submitted awaiting_signature awaiting_payment payment_completed payment_expired completed declined cancelled rejected"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SignRequest is the direct signature captured by the public signing page
type SignRequest struct {
	SignatureName string `json:"signature_name" binding:"required,min=1,max=200"`
	// SignatureDate defaults to today (YYYY-MM-DD)
	SignatureDate string `json:"signature_date" binding:"max=50"`
}

// SignatureRequestResponse is returned after an envelope has been sent
type SignatureRequestResponse struct {
	SubmissionID    uuid.UUID `json:"submission_id"`
	EnvelopeID      string    `json:"envelope_id"`
	Status          string    `json:"status"`
	SignatureStatus string    `json:"signature_status"`
	Message         string    `json:"message"`
}

// SignatureStatusResponse answers a signature status poll
type SignatureStatusResponse struct {
	SubmissionID     uuid.UUID  `json:"submission_id"`
	EnvelopeID       *string    `json:"envelope_id"`
	RemoteStatus     string     `json:"remote_status"`
	SignatureStatus  string     `json:"signature_status"`
	SubmissionStatus string     `json:"submission_status"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	DeclinedAt       *time.Time `json:"declined_at,omitempty"`
	VoidedAt         *time.Time `json:"voided_at,omitempty"`
}

// PaymentStatusResponse answers a payment status poll
type PaymentStatusResponse struct {
	SubmissionID      uuid.UUID `json:"submission_id"`
	CheckoutSessionID *string   `json:"checkout_session_id"`
	CheckoutStatus    string    `json:"checkout_status"`
	PaymentStatus     string    `json:"payment_status"`
	SubmissionStatus  string    `json:"submission_status"`
}

// Webhook outcomes reported back to the provider. All of them are 200s.
const (
	WebhookProcessed = "success"
	WebhookIgnored   = "ignored"
	WebhookWarning   = "warning"
	WebhookDuplicate = "duplicate"
)

// WebhookResult is the acknowledgement body of a webhook delivery
type WebhookResult struct {
	Status       string     `json:"status"`
	Message      string     `json:"message,omitempty"`
	SubmissionID *uuid.UUID `json:"submission_id,omitempty"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID         uuid.UUID      `json:"id"`
	FirmID     uuid.UUID      `json:"firm_id"`
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      string         `json:"phone"`
	Status     string         `json:"status"`
	IntakeData map[string]any `json:"intake_data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// UpdateClientRequest is a partial client update
type UpdateClientRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Status    *string `json:"status" binding:"omitempty,oneof=pending signed paid active rejected"`
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending signed paid active rejected"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UploadDocumentInput is an uploaded file as read by the HTTP layer
type UploadDocumentInput struct {
	SubmissionID uuid.UUID
	DocumentType string
	Filename     string
	ContentType  string
	Data         []byte
}

// DocumentResponse represents document metadata
type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	MimeType     string    `json:"mime_type"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentDetailResponse adds a presigned download link
type DocumentDetailResponse struct {
	DocumentResponse
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DocumentContent is a downloaded document
type DocumentContent struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ToFormResponse converts a domain IntakeForm
func ToFormResponse(f *intake.IntakeForm) FormResponse {
	return FormResponse{
		ID:                  f.ID,
		FirmID:              f.FirmID,
		Name:                f.Name,
		Description:         f.Description,
		FieldsSchema:        nonNilMap(f.FieldsSchema),
		RetainerTemplateURL: f.RetainerTemplateURL,
		RetainerAmount:      moneyPtr(f.RetainerAmount),
		PaymentRequired:     f.PaymentRequired,
		IsActive:            f.IsActive,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

// ToFormResponses converts a slice of forms
func ToFormResponses(forms []*intake.IntakeForm) []FormResponse {
	out := make([]FormResponse, len(forms))
	for i, f := range forms {
		out[i] = ToFormResponse(f)
	}
	return out
}

// ToPublicFormResponse converts a domain IntakeForm for public display
func ToPublicFormResponse(f *intake.IntakeForm) PublicFormResponse {
	return PublicFormResponse{
		ID:                  f.ID,
		FirmID:              f.FirmID,
		Name:                f.Name,
		Description:         f.Description,
		FieldsSchema:        nonNilMap(f.FieldsSchema),
		RetainerAmount:      moneyPtr(f.RetainerAmount),
		PaymentRequired:     f.PaymentRequired,
		HasRetainerTemplate: f.HasRetainerTemplate(),
	}
}

// ToSubmissionResponse converts a domain Submission
func ToSubmissionResponse(s *intake.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                s.ID,
		FirmID:            s.FirmID,
		FormID:            s.FormID,
		ClientID:          s.ClientID,
		FormData:          nonNilMap(s.FormData),
		Status:            string(s.Status),
		SignatureStatus:   string(s.SignatureStatus),
		PaymentStatus:     string(s.PaymentStatus),
		SignatureRequired: s.Requirements.SignatureRequired,
		PaymentRequired:   s.Requirements.PaymentRequired,
		EnvelopeID:        s.EnvelopeID,
		CheckoutSessionID: s.CheckoutSessionID,
		PaymentAmount:     moneyPtr(s.PaymentAmount),
		SignedAt:          s.SignedAt,
		PaidAt:            s.PaidAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

// ToSubmissionResponses converts a slice of submissions
func ToSubmissionResponses(subs []*intake.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, len(subs))
	for i, s := range subs {
		out[i] = ToSubmissionResponse(s)
	}
	return out
}

// ToSubmissionStatusResponse converts a domain Submission to the public snapshot
func ToSubmissionStatusResponse(s *intake.Submission) SubmissionStatusResponse {
	return SubmissionStatusResponse{
		ID:              s.ID,
		Status:          string(s.Status),
		SignatureStatus: string(s.SignatureStatus),
		PaymentStatus:   string(s.PaymentStatus),
		PaymentAmount:   moneyPtr(s.PaymentAmount),
		NextStep:        string(s.NextStep(s.CheckoutSessionID != nil)),
		SignedAt:        s.SignedAt,
		PaidAt:          s.PaidAt,
	}
}

// ToClientResponse converts a domain Client
func ToClientResponse(c *intake.Client) ClientResponse {
	return ClientResponse{
		ID:         c.ID,
		FirmID:     c.FirmID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Phone:      c.Phone,
		Status:     string(c.Status),
		IntakeData: nonNilMap(c.IntakeData),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []*intake.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = ToClientResponse(c)
	}
	return out
}

// ToDocumentResponse converts a domain Document
func ToDocumentResponse(d *intake.Document) DocumentResponse {
	return DocumentResponse{
		ID:           d.ID,
		SubmissionID: d.SubmissionID,
		Filename:     d.Filename,
		DocumentType: d.DocumentType,
		MimeType:     d.MimeType,
		FileSize:     d.FileSize,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDocumentResponses converts a slice of documents
func ToDocumentResponses(docs []*intake.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = ToDocumentResponse(d)
	}
	return out
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func moneyPtr(amount decimal.NullDecimal) *string {
	if !amount.Valid {
		return nil
	}
	s := intake.FormatMoney(amount)
	return &s
}
