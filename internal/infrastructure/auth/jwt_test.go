package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        2,
	})
}

func newTestPrincipal() Principal {
	return Principal{
		FirmID:      uuid.New(),
		UserID:      uuid.New(),
		Email:       "owner@firm.example",
		IsSuperuser: true,
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	p := newTestPrincipal()

	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.FirmID.String(), claims.FirmID)
	assert.Equal(t, p.UserID.String(), claims.Subject)
	assert.Equal(t, "owner@firm.example", claims.Email)
	assert.True(t, claims.IsSuperuser)

	firmID, err := claims.FirmUUID()
	require.NoError(t, err)
	assert.Equal(t, p.FirmID, firmID)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(newTestPrincipal())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsOtherSigningMethods(t *testing.T) {
	svc := newTestJWTService()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
		FirmID:           uuid.NewString(),
		UserID:           uuid.NewString(),
		TokenType:        TokenTypeAccess,
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MissingFirm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: svc.registered(uuid.New(), time.Now(), time.Minute),
		UserID:           uuid.NewString(),
		TokenType:        TokenTypeAccess,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.accessSecret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrMissingFirmID)
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	p := newTestPrincipal()

	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)

	next, err := svc.RefreshTokenPair(pair.RefreshToken, p)
	require.NoError(t, err)
	claims, err := svc.ValidateRefreshToken(next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.RefreshCount)

	third, err := svc.RefreshTokenPair(next.RefreshToken, p)
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(third.RefreshToken, p)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)

	other := p
	other.UserID = uuid.New()
	_, err = svc.RefreshTokenPair(pair.RefreshToken, other)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
