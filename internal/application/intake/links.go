package intake

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Links builds the frontend URLs handed to clients and providers
type Links struct {
	base string
}

// NewLinks creates Links rooted at the frontend base URL
func NewLinks(frontendBaseURL string) Links {
	return Links{base: strings.TrimRight(frontendBaseURL, "/")}
}

// SignaturePage is where the client signs directly
func (l Links) SignaturePage(submissionID uuid.UUID) string {
	return l.build("/signature/sign", submissionID)
}

// SignatureComplete is the e-signature return URL
func (l Links) SignatureComplete(submissionID uuid.UUID) string {
	return l.build("/signature/complete", submissionID)
}

// PaymentSuccess is the checkout success URL
func (l Links) PaymentSuccess(submissionID uuid.UUID) string {
	return l.build("/payment/success", submissionID)
}

// PaymentCancelled is the checkout cancel URL
func (l Links) PaymentCancelled(submissionID uuid.UUID) string {
	return l.build("/payment/cancelled", submissionID)
}

func (l Links) build(path string, submissionID uuid.UUID) string {
	q := url.Values{}
	q.Set("submission_id", submissionID.String())
	return l.base + path + "?" + q.Encode()
}
