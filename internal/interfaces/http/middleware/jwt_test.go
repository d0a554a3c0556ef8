package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/application/identity"
	"github.com/lexflow/backend/internal/infrastructure/logger"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*identity.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Principal), args.Error(1)
}

func jwtRouter(authn Authenticator, skip ...string) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{Authenticator: authn, SkipPaths: skip}))
	router.GET("/test", func(c *gin.Context) {
		p := GetPrincipal(c)
		firmID, ok := GetFirmUUID(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": p != nil,
			"firm_ok":       ok,
			"firm_id":       firmID.String(),
			"user_id":       GetJWTUserID(c),
			"log_firm_id":   logger.GetFirmID(c.Request.Context()),
		})
	})
	return router
}

func decodeError(t *testing.T, body []byte) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	principal := &identity.Principal{UserID: uuid.New(), FirmID: uuid.New(), Email: "owner@smithlaw.com", IsActive: true}
	authn := new(MockAuthenticator)
	authn.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, "Bearer good-token")
	rec := httptest.NewRecorder()
	jwtRouter(authn).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["firm_ok"])
	assert.Equal(t, principal.FirmID.String(), body["firm_id"])
	assert.Equal(t, principal.UserID.String(), body["user_id"])
	assert.Equal(t, principal.FirmID.String(), body["log_firm_id"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := new(MockAuthenticator)
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			rec := httptest.NewRecorder()
			jwtRouter(authn).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			info := decodeError(t, rec.Body.Bytes())
			assert.Equal(t, dto.ErrCodeUnauthorized, info.Code)
			assert.NotEmpty(t, info.RequestID)
			authn.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

func TestJWTAuthMiddleware_AuthenticatorErrors(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "old").Return(nil, identity.ErrTokenExpired)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Bearer old")
		rec := httptest.NewRecorder()
		jwtRouter(authn).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token has expired", decodeError(t, rec.Body.Bytes()).Message)
	})

	t.Run("inactive user is forbidden", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "tok").Return(nil, identity.ErrInactiveUser)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Bearer tok")
		rec := httptest.NewRecorder()
		jwtRouter(authn).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeInactive, decodeError(t, rec.Body.Bytes()).Code)
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	authn := new(MockAuthenticator)
	rec := httptest.NewRecorder()
	jwtRouter(authn, "/test").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	assert.Contains(t, rec.Body.String(), `"firm_ok":false`)
}
