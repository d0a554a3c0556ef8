package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/application/identity"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/logger"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTPrincipalKey = "jwt_principal"
	JWTUserIDKey    = "jwt_user_id"
	JWTFirmIDKey    = "jwt_firm_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// Authenticator resolves a bearer token into the calling principal
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.Principal, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Authenticator Authenticator
	// SkipPaths are full paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuthMiddleware requires a valid bearer token on every request
func JWTAuthMiddleware(authn Authenticator, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{Authenticator: authn, Logger: log})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, identity.ErrInvalidToken, "missing or malformed authorization header")
			return
		}

		principal, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			handleAuthError(c, cfg, err, "token rejected")
			return
		}

		setPrincipal(c, principal)
		cfg.Logger.Debug("JWT authentication successful",
			zap.String("user_id", principal.UserID.String()),
			zap.String("firm_id", principal.FirmID.String()),
		)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func setPrincipal(c *gin.Context, p *identity.Principal) {
	c.Set(JWTPrincipalKey, p)
	c.Set(JWTUserIDKey, p.UserID.String())
	c.Set(JWTFirmIDKey, p.FirmID.String())

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, log = logger.WithUserID(ctx, log, p.UserID.String())
	ctx, _ = logger.WithFirmID(ctx, log, p.FirmID.String())
	c.Request = c.Request.WithContext(ctx)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, reason string) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	var de *shared.DomainError
	if errors.As(err, &de) {
		abortWithError(c, de.Code, de.Message)
		return
	}
	abortWithError(c, dto.ErrCodeUnauthorized, "Could not validate credentials")
}

// GetPrincipal returns the authenticated caller, or nil on public routes
func GetPrincipal(c *gin.Context) *identity.Principal {
	if v, exists := c.Get(JWTPrincipalKey); exists {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTFirmID retrieves the firm ID from context
func GetJWTFirmID(c *gin.Context) string {
	return c.GetString(JWTFirmIDKey)
}

// GetFirmUUID parses the firm ID stored by the JWT middleware
func GetFirmUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetJWTFirmID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
