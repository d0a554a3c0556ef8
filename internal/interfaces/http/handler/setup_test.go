package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/lexflow/backend/internal/application/identity"
	appintake "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/infrastructure/auth"
	"github.com/lexflow/backend/internal/infrastructure/billing"
	"github.com/lexflow/backend/internal/infrastructure/cache"
	"github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/lexflow/backend/internal/infrastructure/esign"
	"github.com/lexflow/backend/internal/infrastructure/persistence"
	"github.com/lexflow/backend/internal/infrastructure/persistence/models"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
	"github.com/lexflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testFrontendURL   = "https://intake.smithlaw.test"
	testWebhookSecret = "whsec_handler_test"
	testConnectSecret = "connect-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "lexflow-test",
		MaxRefreshCount:        10,
	}
}

// memStorage is an in-memory ObjectStorage
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *memStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://storage.test/" + key, time.Now().Add(expiresIn), nil
}

func (s *memStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) GetBucket() string { return "lexflow-test" }

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// testServer wires real services over an in-memory sqlite database. The
// payment and signature providers are the disabled adapters, so checkout
// and envelope calls fail like an unconfigured deployment while webhook
// verification stays real.
type testServer struct {
	engine   *gin.Engine
	db       *gorm.DB
	storage  *memStorage
	verifier *esign.ConnectVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	forms := persistence.NewGormFormRepository(db)
	clients := persistence.NewGormClientRepository(db)
	submissions := persistence.NewGormSubmissionRepository(db)
	documents := persistence.NewGormDocumentRepository(db)
	storage := newMemStorage()
	verifier := esign.NewConnectVerifier(testConnectSecret)
	payments := billing.NewDisabledPaymentGateway(testWebhookSecret, logger)
	processed := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { processed.Close() })
	links := appintake.NewLinks(testFrontendURL)

	lifecycle := appintake.NewLifecycleEngine(submissions, clients, logger)
	authService := appidentity.NewAuthService(
		persistence.NewGormUserRepository(db),
		persistence.NewGormRegistrar(db),
		auth.NewJWTService(testJWTConfig()),
		logger,
	)
	paymentService := appintake.NewPaymentService(lifecycle, submissions, payments, processed, time.Second, logger)
	signatureService := appintake.NewSignatureService(lifecycle, submissions, clients, documents, storage,
		esign.DisabledSignatureGateway{}, verifier, links, time.Second, logger)

	authHandler := NewAuthHandler(authService)
	firmHandler := NewFirmHandler(appidentity.NewFirmService(persistence.NewGormFirmRepository(db), logger))
	formHandler := NewFormHandler(appintake.NewFormService(forms, logger))
	submissionHandler := NewSubmissionHandler(appintake.NewSubmissionService(lifecycle, forms, clients, submissions, payments, links, time.Second, logger))
	signatureHandler := NewSignatureHandler(signatureService)
	paymentHandler := NewPaymentHandler(paymentService)
	webhookHandler := NewWebhookHandler(paymentService, signatureService, logger)
	clientHandler := NewClientHandler(appintake.NewClientService(clients))
	documentHandler := NewDocumentHandler(appintake.NewDocumentService(submissions, documents, storage, 0, logger))
	systemHandler := NewSystemHandler("LexFlow API", "test", persistence.NewDatabaseFromGorm(db), logger)

	r := gin.New()
	r.GET("/health", systemHandler.Health)

	api := r.Group("/api/v1")
	api.GET("/system/ping", systemHandler.Ping)
	api.GET("/system/info", systemHandler.GetSystemInfo)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/forms/:id", formHandler.GetPublicForm)
	api.POST("/forms/:id/submit", submissionHandler.Submit)
	api.GET("/submissions/:id", submissionHandler.GetPublicStatus)
	api.POST("/sign/:submission_id", submissionHandler.PublicSign)
	api.POST("/pay/:submission_id", submissionHandler.PublicPay)
	api.POST("/webhooks/payment", webhookHandler.PaymentWebhook)
	api.POST("/webhooks/signature", webhookHandler.SignatureWebhook)

	private := api.Group("", middleware.JWTAuthMiddleware(authService, logger))
	private.GET("/users/me", authHandler.CurrentUser)
	private.GET("/firms/me", firmHandler.GetFirm)
	private.PUT("/firms/me", firmHandler.UpdateFirm)
	private.POST("/intake/forms", formHandler.Create)
	private.GET("/intake/forms", formHandler.List)
	private.GET("/intake/forms/:id", formHandler.Get)
	private.PUT("/intake/forms/:id", formHandler.Update)
	private.DELETE("/intake/forms/:id", formHandler.Delete)
	private.GET("/intake/submissions", submissionHandler.List)
	private.GET("/intake/submissions/:id", submissionHandler.Get)
	private.POST("/submissions/:id/signature/request", signatureHandler.RequestSignature)
	private.GET("/submissions/:id/signature/status", signatureHandler.SignatureStatus)
	private.GET("/submissions/:id/payment/status", paymentHandler.PaymentStatus)
	private.GET("/clients", clientHandler.List)
	private.GET("/clients/:id", clientHandler.Get)
	private.PUT("/clients/:id", clientHandler.Update)
	private.POST("/documents/upload", middleware.BodyLimit(DocumentUploadLimit), documentHandler.Upload)
	private.GET("/documents/submission/:submission_id", documentHandler.ListBySubmission)
	private.GET("/documents/:id", documentHandler.Get)
	private.GET("/documents/:id/download", documentHandler.Download)
	private.DELETE("/documents/:id", documentHandler.Delete)

	return &testServer{engine: r, db: db, storage: storage, verifier: verifier}
}

// do performs a request. body is JSON-encoded unless it is already bytes.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

// register creates a firm and returns its owner's access token
func (s *testServer) register(t *testing.T, email string) (token string, user appidentity.UserResponse) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", appidentity.RegisterRequest{
		FirmName: "Smith & Associates",
		Email:    email,
		Password: "correct-horse-battery",
		FullName: "Alex Smith",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp appidentity.AuthResponse
	decodeData(t, rec, &resp)
	require.NotNil(t, resp.User)
	return resp.AccessToken, *resp.User
}

// createForm creates a form through the owner API
func (s *testServer) createForm(t *testing.T, token string, req appintake.CreateFormRequest) appintake.FormResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/intake/forms", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var form appintake.FormResponse
	decodeData(t, rec, &form)
	return form
}

// retainerForm needs a signature and a 500.00 payment
func (s *testServer) retainerForm(t *testing.T, token string) appintake.FormResponse {
	amount := "500.00"
	return s.createForm(t, token, appintake.CreateFormRequest{
		Name:                "Personal Injury Intake",
		RetainerTemplateURL: "https://files.smithlaw.test/retainer.pdf",
		RetainerAmount:      &amount,
	})
}

// submit posts a public submission
func (s *testServer) submit(t *testing.T, formID uuid.UUID, email string) appintake.SubmitResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/forms/"+formID.String()+"/submit", "", map[string]any{
		"form_data": map[string]any{"email": email, "firstName": "Jane", "lastName": "Doe"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp appintake.SubmitResponse
	decodeData(t, rec, &resp)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error, rec.Body.String())
	return *env.Error
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString()[:8], "-", "") + "@smithlaw.test"
}
