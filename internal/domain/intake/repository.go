package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
)

// FormRepository persists intake forms
type FormRepository interface {
	Create(ctx context.Context, form *IntakeForm) error
	Save(ctx context.Context, form *IntakeForm) error
	// FindByIDForFirm is the owner view; inactive forms are visible
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*IntakeForm, error)
	// FindActiveByID is the public view; inactive forms are reported as not found
	FindActiveByID(ctx context.Context, id uuid.UUID) (*IntakeForm, error)
	FindByID(ctx context.Context, id uuid.UUID) (*IntakeForm, error)
	ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*IntakeForm, int64, error)
}

// ClientRepository persists clients
type ClientRepository interface {
	// GetOrCreate returns the client with (firm, email) or inserts candidate.
	// Concurrent calls for the same key yield the same row.
	GetOrCreate(ctx context.Context, candidate *Client) (*Client, bool, error)
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Client, error)
	ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*Client, int64, error)
	Save(ctx context.Context, client *Client) error
	// UpdateStatus writes only the status and bumps the version
	UpdateStatus(ctx context.Context, firmID, id uuid.UUID, status ClientStatus) error
}

// SubmissionRepository persists submissions
type SubmissionRepository interface {
	Create(ctx context.Context, submission *Submission) error
	// SaveWithLock writes the submission if its version is unchanged since
	// it was loaded and bumps the version. Otherwise it returns a
	// CONCURRENCY_CONFLICT domain error.
	SaveWithLock(ctx context.Context, submission *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Submission, error)
	FindByEnvelopeID(ctx context.Context, envelopeID string) (*Submission, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*Submission, error)
	ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*Submission, int64, error)
}

// DocumentRepository persists document metadata
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	// FindByIDForFirm scopes through the owning submission
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Document, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Document, error)
	FindRetainer(ctx context.Context, submissionID uuid.UUID) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
