package esign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/shared"
)

// ConnectSignatureHeader carries the base64 HMAC-SHA256 of the raw body
const ConnectSignatureHeader = "X-DocuSign-Signature-1"

// ErrInvalidConnectSignature is returned for a missing or wrong HMAC
var ErrInvalidConnectSignature = shared.NewDomainError(shared.CodeUnauthenticated, "Invalid signature webhook signature")

var _ intakeapp.SignatureWebhookVerifier = (*ConnectVerifier)(nil)

// ConnectVerifier checks DocuSign Connect HMAC signatures. With an empty
// secret verification is off and every payload is accepted.
type ConnectVerifier struct {
	secret []byte
}

// NewConnectVerifier creates a ConnectVerifier
func NewConnectVerifier(secret string) *ConnectVerifier {
	return &ConnectVerifier{secret: []byte(strings.TrimSpace(secret))}
}

// Enabled reports whether a secret is configured
func (v *ConnectVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify checks signature against payload
func (v *ConnectVerifier) Verify(payload []byte, signature string) error {
	if !v.Enabled() {
		return nil
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrInvalidConnectSignature
	}
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidConnectSignature
	}
	if !hmac.Equal(v.sign(payload), provided) {
		return ErrInvalidConnectSignature
	}
	return nil
}

// Sign computes the signature DocuSign would send for payload
func (v *ConnectVerifier) Sign(payload []byte) string {
	return base64.StdEncoding.EncodeToString(v.sign(payload))
}

func (v *ConnectVerifier) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}
