package intake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// memSubmissions is an in-memory SubmissionRepository with version checks.
// Every read hands out a fresh copy, like a database would.
type memSubmissions struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]intake.Submission
	conflicts int
	saves     int
	saveErr   error
}

func newMemSubmissions() *memSubmissions {
	return &memSubmissions{rows: make(map[uuid.UUID]intake.Submission)}
}

func (r *memSubmissions) put(s *intake.Submission) {
	c := *s
	c.ClearDomainEvents()
	r.rows[s.ID] = c
}

func (r *memSubmissions) get(id uuid.UUID) (*intake.Submission, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, intake.ErrSubmissionNotFound
	}
	c := row
	return &c, nil
}

func (r *memSubmissions) Create(_ context.Context, s *intake.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(s)
	return nil
}

func (r *memSubmissions) SaveWithLock(_ context.Context, s *intake.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.rows[s.ID]
	if !ok {
		return intake.ErrSubmissionNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		return shared.ErrConcurrencyConflict
	}
	if stored.Version != s.Version {
		return shared.ErrConcurrencyConflict
	}
	s.IncrementVersion()
	r.put(s)
	return nil
}

func (r *memSubmissions) FindByID(_ context.Context, id uuid.UUID) (*intake.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memSubmissions) FindByIDForFirm(_ context.Context, firmID, id uuid.UUID) (*intake.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if s.FirmID != firmID {
		return nil, intake.ErrSubmissionNotFound
	}
	return s, nil
}

func (r *memSubmissions) FindByEnvelopeID(_ context.Context, envelopeID string) (*intake.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.EnvelopeID != nil && *row.EnvelopeID == envelopeID {
			return r.get(id)
		}
	}
	return nil, intake.ErrSubmissionNotFound
}

func (r *memSubmissions) FindByCheckoutSessionID(_ context.Context, sessionID string) (*intake.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.CheckoutSessionID != nil && *row.CheckoutSessionID == sessionID {
			return r.get(id)
		}
	}
	return nil, intake.ErrSubmissionNotFound
}

func (r *memSubmissions) ListForFirm(_ context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intake.Submission
	for id, row := range r.rows {
		if row.FirmID != firmID {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(row.Status) != status {
			continue
		}
		s, _ := r.get(id)
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

// memClients is an in-memory ClientRepository keyed by (firm, email)
type memClients struct {
	mu   sync.Mutex
	rows map[uuid.UUID]intake.Client
}

func newMemClients() *memClients {
	return &memClients{rows: make(map[uuid.UUID]intake.Client)}
}

func (r *memClients) GetOrCreate(_ context.Context, candidate *intake.Client) (*intake.Client, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.FirmID == candidate.FirmID && row.Email == candidate.Email {
			c := row
			return &c, false, nil
		}
	}
	r.rows[candidate.ID] = *candidate
	return candidate, true, nil
}

func (r *memClients) FindByIDForFirm(_ context.Context, firmID, id uuid.UUID) (*intake.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.FirmID != firmID {
		return nil, intake.ErrClientNotFound
	}
	c := row
	return &c, nil
}

func (r *memClients) ListForFirm(_ context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intake.Client
	for _, row := range r.rows {
		if row.FirmID != firmID {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(row.Status) != status {
			continue
		}
		c := row
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *memClients) Save(_ context.Context, client *intake.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[client.ID]; !ok {
		return intake.ErrClientNotFound
	}
	r.rows[client.ID] = *client
	return nil
}

func (r *memClients) UpdateStatus(_ context.Context, firmID, id uuid.UUID, status intake.ClientStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.FirmID != firmID {
		return intake.ErrClientNotFound
	}
	row.Status = status
	row.IncrementVersion()
	r.rows[id] = row
	return nil
}

func (r *memClients) status(id uuid.UUID) intake.ClientStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].Status
}

// memForms is an in-memory FormRepository
type memForms struct {
	mu   sync.Mutex
	rows map[uuid.UUID]intake.IntakeForm
}

func newMemForms(forms ...*intake.IntakeForm) *memForms {
	r := &memForms{rows: make(map[uuid.UUID]intake.IntakeForm)}
	for _, f := range forms {
		r.rows[f.ID] = *f
	}
	return r
}

func (r *memForms) Create(_ context.Context, form *intake.IntakeForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[form.ID] = *form
	return nil
}

func (r *memForms) Save(_ context.Context, form *intake.IntakeForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[form.ID]; !ok {
		return intake.ErrFormNotFound
	}
	r.rows[form.ID] = *form
	return nil
}

func (r *memForms) FindByIDForFirm(_ context.Context, firmID, id uuid.UUID) (*intake.IntakeForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.FirmID != firmID {
		return nil, intake.ErrFormNotFound
	}
	f := row
	return &f, nil
}

func (r *memForms) FindActiveByID(_ context.Context, id uuid.UUID) (*intake.IntakeForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsActive {
		return nil, intake.ErrFormNotFound
	}
	f := row
	return &f, nil
}

func (r *memForms) FindByID(_ context.Context, id uuid.UUID) (*intake.IntakeForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, intake.ErrFormNotFound
	}
	f := row
	return &f, nil
}

func (r *memForms) ListForFirm(_ context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.IntakeForm, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intake.IntakeForm
	for _, row := range r.rows {
		if row.FirmID != firmID {
			continue
		}
		if active, ok := filter.Filters["is_active"]; ok && row.IsActive != active {
			continue
		}
		f := row
		out = append(out, &f)
	}
	return out, int64(len(out)), nil
}

// MockDocumentRepository is a mock implementation of intake.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *intake.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*intake.Document, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intake.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*intake.Document, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*intake.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindRetainer(ctx context.Context, submissionID uuid.UUID) (*intake.Document, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intake.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) GetBucket() string {
	args := m.Called()
	return args.String(0)
}

// MockSignatureGateway is a mock implementation of SignatureGateway
type MockSignatureGateway struct {
	mock.Mock
}

func (m *MockSignatureGateway) CreateEnvelope(ctx context.Context, req EnvelopeRequest) (*Envelope, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Envelope), args.Error(1)
}

func (m *MockSignatureGateway) GetEnvelopeStatus(ctx context.Context, envelopeID string) (*EnvelopeStatus, error) {
	args := m.Called(ctx, envelopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EnvelopeStatus), args.Error(1)
}

// MockVerifier is a mock implementation of SignatureWebhookVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(payload []byte, signature string) error {
	args := m.Called(payload, signature)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentEvent), args.Error(1)
}

// memIdempotency is an in-memory IdempotencyStore
type memIdempotency struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{seen: make(map[string]bool)}
}

func (s *memIdempotency) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[id] {
		return false, nil
	}
	s.seen[id] = true
	return true, nil
}

func (s *memIdempotency) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[id], s.err
}

func (s *memIdempotency) Release(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	return s.err
}

func (s *memIdempotency) Close() error {
	return nil
}

// recordingPublisher keeps every published event type
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
