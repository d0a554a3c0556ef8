// Package esign adapts the DocuSign eSignature REST API to the intake
// signature port.
package esign

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
	infraconfig "github.com/lexflow/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const provider = "docusign"

var _ intakeapp.SignatureGateway = (*DocuSignGateway)(nil)

// DocuSignGateway sends single-signer envelopes for remote signing.
// DocuSign emails the signer, so no embedded signing URL is produced.
type DocuSignGateway struct {
	basePath   string
	accountID  string
	httpClient *http.Client
	tokens     *tokenSource
	logger     *zap.Logger
}

// Option configures DocuSignGateway
type Option func(*DocuSignGateway)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(g *DocuSignGateway) {
		g.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *DocuSignGateway) {
		g.logger = logger
	}
}

// NewDocuSignGateway creates a gateway from configuration
func NewDocuSignGateway(cfg infraconfig.DocuSignConfig, opts ...Option) (*DocuSignGateway, error) {
	if !cfg.IsConfigured() {
		return nil, errors.New("docusign: integration key, user id, account id and private key are required")
	}

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	g := &DocuSignGateway{
		basePath:   strings.TrimRight(cfg.BasePath, "/"),
		accountID:  cfg.AccountID,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	tokens, err := newTokenSource(cfg, g.httpClient)
	if err != nil {
		return nil, err
	}
	g.tokens = tokens
	return g, nil
}

type envelopeDefinition struct {
	EmailSubject string        `json:"emailSubject"`
	Documents    []envelopeDoc `json:"documents"`
	Recipients   recipients    `json:"recipients"`
	CustomFields *customFields `json:"customFields,omitempty"`
	Status       string        `json:"status"`
}

type envelopeDoc struct {
	DocumentBase64 string `json:"documentBase64"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension"`
	DocumentID     string `json:"documentId"`
}

type recipients struct {
	Signers []signer `json:"signers"`
}

type signer struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RecipientID  string `json:"recipientId"`
	RoutingOrder string `json:"routingOrder"`
	Tabs         tabs   `json:"tabs"`
}

type tabs struct {
	SignHereTabs []signHere `json:"signHereTabs"`
}

type signHere struct {
	DocumentID string `json:"documentId"`
	PageNumber string `json:"pageNumber"`
	XPosition  string `json:"xPosition"`
	YPosition  string `json:"yPosition"`
}

type customFields struct {
	TextCustomFields []textCustomField `json:"textCustomFields"`
}

type textCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Show  string `json:"show"`
}

type envelopeSummary struct {
	EnvelopeID            string `json:"envelopeId"`
	Status                string `json:"status"`
	SentDateTime          string `json:"sentDateTime"`
	DeliveredDateTime     string `json:"deliveredDateTime"`
	CompletedDateTime     string `json:"completedDateTime"`
	DeclinedDateTime      string `json:"declinedDateTime"`
	VoidedDateTime        string `json:"voidedDateTime"`
	StatusChangedDateTime string `json:"statusChangedDateTime"`
}

type apiError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// CreateEnvelope creates and immediately sends an envelope with one signer
func (g *DocuSignGateway) CreateEnvelope(ctx context.Context, req intakeapp.EnvelopeRequest) (*intakeapp.Envelope, error) {
	if len(req.Document) == 0 {
		return nil, intake.NewGatewayError(provider, "document content is required", nil)
	}
	ext := strings.TrimPrefix(req.FileExtension, ".")
	if ext == "" {
		ext = "pdf"
	}
	name := req.DocumentName
	if name == "" {
		name = "Retainer Agreement"
	}

	def := envelopeDefinition{
		EmailSubject: "Please sign: " + name,
		Documents: []envelopeDoc{{
			DocumentBase64: base64.StdEncoding.EncodeToString(req.Document),
			Name:           name,
			FileExtension:  ext,
			DocumentID:     "1",
		}},
		Recipients: recipients{Signers: []signer{{
			Email:        req.SignerEmail,
			Name:         req.SignerName,
			RecipientID:  "1",
			RoutingOrder: "1",
			Tabs: tabs{SignHereTabs: []signHere{{
				DocumentID: "1",
				PageNumber: "1",
				XPosition:  "100",
				YPosition:  "700",
			}}},
		}}},
		Status: "sent",
	}
	if len(req.Metadata) > 0 {
		fields := make([]textCustomField, 0, len(req.Metadata))
		for k, v := range req.Metadata {
			fields = append(fields, textCustomField{Name: k, Value: v, Show: "false"})
		}
		def.CustomFields = &customFields{TextCustomFields: fields}
	}

	var out envelopeSummary
	if err := g.do(ctx, http.MethodPost, g.accountPath("envelopes"), def, &out); err != nil {
		g.logger.Error("Failed to create DocuSign envelope",
			zap.String("signer_email", req.SignerEmail),
			zap.Error(err))
		return nil, err
	}

	g.logger.Info("Created DocuSign envelope",
		zap.String("envelope_id", out.EnvelopeID),
		zap.String("status", out.Status))
	return &intakeapp.Envelope{EnvelopeID: out.EnvelopeID, Status: out.Status}, nil
}

// GetEnvelopeStatus looks up the current envelope status
func (g *DocuSignGateway) GetEnvelopeStatus(ctx context.Context, envelopeID string) (*intakeapp.EnvelopeStatus, error) {
	if envelopeID == "" {
		return nil, intake.NewGatewayError(provider, "envelope id is required", nil)
	}

	var out envelopeSummary
	if err := g.do(ctx, http.MethodGet, g.accountPath("envelopes", envelopeID), nil, &out); err != nil {
		return nil, err
	}

	return &intakeapp.EnvelopeStatus{
		EnvelopeID:    envelopeID,
		Status:        strings.ToLower(out.Status),
		SentAt:        parseTime(out.SentDateTime),
		DeliveredAt:   parseTime(out.DeliveredDateTime),
		CompletedAt:   parseTime(out.CompletedDateTime),
		DeclinedAt:    parseTime(out.DeclinedDateTime),
		VoidedAt:      parseTime(out.VoidedDateTime),
		StatusChanged: parseTime(out.StatusChangedDateTime),
	}, nil
}

func (g *DocuSignGateway) accountPath(segments ...string) string {
	parts := []string{g.basePath, "v2.1", "accounts", url.PathEscape(g.accountID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}

// do performs an authenticated JSON call. Every failure comes back as a
// GatewayError carrying the provider's message.
func (g *DocuSignGateway) do(ctx context.Context, method, endpoint string, in, out any) error {
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return intake.NewGatewayError(provider, "DocuSign authentication failed: "+err.Error(), err)
	}

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return intake.NewGatewayError(provider, "failed to encode request", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return intake.NewGatewayError(provider, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return intake.NewGatewayError(provider, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		reason := fmt.Sprintf("DocuSign API error: HTTP %d", resp.StatusCode)
		if apiErr.Message != "" {
			reason = fmt.Sprintf("DocuSign API error: %s (%s)", apiErr.Message, apiErr.ErrorCode)
		}
		return intake.NewGatewayError(provider, reason, nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return intake.NewGatewayError(provider, "failed to decode response", err)
		}
	}
	return nil
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
