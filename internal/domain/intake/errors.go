package intake

import (
	"fmt"

	"github.com/lexflow/backend/internal/domain/shared"
)

// GatewayError reports a failed call to a third-party provider. The reason
// text from the provider is preserved. Adapters never retry on their own.
type GatewayError struct {
	Provider string
	Reason   string
	Err      error
}

// NewGatewayError creates a GatewayError
func NewGatewayError(provider, reason string, err error) *GatewayError {
	return &GatewayError{Provider: provider, Reason: reason, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error: %s", e.Provider, e.Reason)
}

// Unwrap exposes the domain error used for HTTP mapping
func (e *GatewayError) Unwrap() []error {
	domainErr := shared.NewDomainError(shared.CodeGatewayError, e.Error())
	if e.Err != nil {
		return []error{domainErr, e.Err}
	}
	return []error{domainErr}
}

// Intake error messages surfaced to callers
var (
	ErrFormNotFound       = shared.NewDomainError(shared.CodeNotFound, "Intake form not found")
	ErrSubmissionNotFound = shared.NewDomainError(shared.CodeNotFound, "Submission not found")
	ErrClientNotFound     = shared.NewDomainError(shared.CodeNotFound, "Client not found")
	ErrDocumentNotFound   = shared.NewDomainError(shared.CodeNotFound, "Document not found")
	ErrAlreadySigned      = shared.NewPreconditionError("Document already signed")
	ErrNoRetainerDocument = shared.NewPreconditionError("No retainer document found. Please upload a retainer first.")
	ErrSubmissionClosed   = shared.NewPreconditionError("Submission is already closed")
)
