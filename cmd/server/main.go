package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lexflow/backend/docs"
	appidentity "github.com/lexflow/backend/internal/application/identity"
	appintake "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/infrastructure/auth"
	"github.com/lexflow/backend/internal/infrastructure/billing"
	"github.com/lexflow/backend/internal/infrastructure/cache"
	"github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/lexflow/backend/internal/infrastructure/esign"
	"github.com/lexflow/backend/internal/infrastructure/event"
	"github.com/lexflow/backend/internal/infrastructure/logger"
	"github.com/lexflow/backend/internal/infrastructure/persistence"
	"github.com/lexflow/backend/internal/infrastructure/storage"
	"github.com/lexflow/backend/internal/infrastructure/telemetry"
	"github.com/lexflow/backend/internal/interfaces/http/handler"
	"github.com/lexflow/backend/internal/interfaces/http/middleware"
	"github.com/lexflow/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

//	@title			LexFlow API
//	@version		1.0
//	@description	Legal intake backend: intake forms, client submissions, retainer signature and payment

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		_ = logsProvider.Shutdown(context.Background())
	}()
	log = logsProvider.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting LexFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	// Telemetry
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tracerProvider.Shutdown(context.Background())
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		_ = meterProvider.Shutdown(context.Background())
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	intakeMetrics, err := telemetry.NewIntakeMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register intake metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log, cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, 200*time.Millisecond, log); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis backs webhook dedupe, auth rate limits and the notification
	// queue. Without it each falls back to a per-instance implementation.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = client.Close()
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	processedEvents := cache.NewIdempotencyStore(redisClient, log)
	defer func() {
		_ = processedEvents.Close()
	}()

	// Providers
	objectStorage := newObjectStorage(ctx, cfg, log)
	paymentGateway := newPaymentGateway(cfg, log)
	signatureGateway := newSignatureGateway(cfg, log)
	connectVerifier := esign.NewConnectVerifier(cfg.DocuSign.ConnectHMACSecret)
	if cfg.DocuSign.ConnectHMACSecret == "" {
		log.Warn("DocuSign Connect HMAC secret not set, signature webhooks are accepted unverified")
	}

	// Repositories
	formRepo := persistence.NewGormFormRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	submissionRepo := persistence.NewGormSubmissionRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	firmRepo := persistence.NewGormFirmRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Lifecycle events
	eventBus := event.NewInMemoryEventBus(log)
	if redisClient != nil {
		eventBus.Subscribe(event.NewNotificationHandler(event.NewRedisNotificationQueue(redisClient), log))
		log.Info("Client notifications enabled")
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	links := appintake.NewLinks(cfg.Frontend.BaseURL)
	lifecycle := appintake.NewLifecycleEngine(submissionRepo, clientRepo, log,
		appintake.WithEventPublisher(eventBus),
		appintake.WithMetrics(intakeMetrics),
	)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, persistence.NewGormRegistrar(db.DB), jwtService, log)
	firmService := appidentity.NewFirmService(firmRepo, log)
	formService := appintake.NewFormService(formRepo, log)
	clientService := appintake.NewClientService(clientRepo)
	submissionService := appintake.NewSubmissionService(lifecycle, formRepo, clientRepo, submissionRepo,
		paymentGateway, links, cfg.Gateway.Timeout, log)
	paymentService := appintake.NewPaymentService(lifecycle, submissionRepo, paymentGateway, processedEvents,
		cfg.Gateway.Timeout, log)
	signatureService := appintake.NewSignatureService(lifecycle, submissionRepo, clientRepo, documentRepo,
		objectStorage, signatureGateway, connectVerifier, links, cfg.Gateway.Timeout, log)
	documentService := appintake.NewDocumentService(submissionRepo, documentRepo, objectStorage,
		cfg.Storage.PresignExpiration, log)

	// HTTP handlers
	handlers := router.Handlers{
		System:     handler.NewSystemHandler(cfg.App.Name, Version, db, log),
		Auth:       handler.NewAuthHandler(authService),
		Firm:       handler.NewFirmHandler(firmService),
		Form:       handler.NewFormHandler(formService),
		Submission: handler.NewSubmissionHandler(submissionService),
		Signature:  handler.NewSignatureHandler(signatureService),
		Payment:    handler.NewPaymentHandler(paymentService),
		Webhook:    handler.NewWebhookHandler(paymentService, signatureService, log),
		Client:     handler.NewClientHandler(clientService),
		Document:   handler.NewDocumentHandler(documentService),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id, panic recovery, tracing, access log,
	// metrics, security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	routeMiddleware := router.Middleware{
		Authenticate: middleware.JWTAuthMiddleware(authService, log),
		AfterAuth:    []gin.HandlerFunc{middleware.TracingAttributeInjector()},
		UploadLimit:  middleware.BodyLimit(handler.DocumentUploadLimit),
	}
	if cfg.HTTP.RateLimitEnabled {
		routeMiddleware.AuthRateLimit = middleware.RateLimitByKey(newAuthLimiter(cfg, redisClient), log, func(c *gin.Context) string {
			return "auth:" + c.ClientIP()
		})
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthCheck(handlers.System.Health),
		router.WithSwagger(cfg.Swagger.Enabled),
	).Register(router.IntakeGroups(handlers, routeMiddleware)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) appintake.ObjectStorage {
	if !cfg.Storage.IsConfigured() {
		log.Warn("Object storage not configured, document uploads are disabled")
		return storage.NewDisabledObjectStorage()
	}
	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to create object storage client", zap.Error(err))
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare storage bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
	}
	return s3Storage
}

func newPaymentGateway(cfg *config.Config, log *zap.Logger) appintake.PaymentGateway {
	if !cfg.Stripe.IsConfigured() {
		log.Warn("Stripe not configured, checkout sessions are disabled")
		return billing.NewDisabledPaymentGateway(cfg.Stripe.WebhookSecret, log)
	}
	gateway, err := billing.NewStripeCheckoutGateway(cfg.Stripe, billing.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create Stripe gateway", zap.Error(err))
	}
	return gateway
}

func newSignatureGateway(cfg *config.Config, log *zap.Logger) appintake.SignatureGateway {
	if !cfg.DocuSign.IsConfigured() {
		log.Warn("DocuSign not configured, envelopes cannot be sent")
		return esign.DisabledSignatureGateway{}
	}
	gateway, err := esign.NewDocuSignGateway(cfg.DocuSign, esign.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create DocuSign gateway", zap.Error(err))
	}
	return gateway
}

func newAuthLimiter(cfg *config.Config, client redis.UniversalClient) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}
	return middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
}
