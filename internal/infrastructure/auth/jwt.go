// Package auth issues and checks the bearer tokens staff users present.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/infrastructure/config"
)

// TokenType separates access tokens from refresh tokens; each is signed
// with its own secret and only accepted where its type is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingFirmID      = errors.New("missing firm_id in claims")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
)

// Claims is the token body. FirmID scopes every request the token makes.
type Claims struct {
	jwt.RegisteredClaims
	FirmID       string    `json:"firm_id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	IsSuperuser  bool      `json:"is_superuser,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) FirmUUID() (uuid.UUID, error) { return uuid.Parse(c.FirmID) }
func (c *Claims) UserUUID() (uuid.UUID, error) { return uuid.Parse(c.UserID) }

// TokenPair is what login, register and refresh hand back
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Principal is the staff user a pair is minted for
type Principal struct {
	FirmID      uuid.UUID
	UserID      uuid.UUID
	Email       string
	IsSuperuser bool
}

// JWTService signs HS256 tokens. A refresh token may be exchanged at most
// maxRefreshCount times before the user has to log in again.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
	now               func() time.Time
}

// NewJWTService falls back to jwt.secret when no refresh secret is set
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     []byte(refreshSecret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
		now:               time.Now,
	}
}

func (s *JWTService) GenerateTokenPair(p Principal) (*TokenPair, error) {
	return s.issue(p, 0)
}

func (s *JWTService) issue(p Principal, refreshCount int) (*TokenPair, error) {
	now := s.now()
	pair := &TokenPair{
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}

	var err error
	pair.AccessToken, err = sign(s.accessSecret, &Claims{
		RegisteredClaims: s.registered(p.UserID, now, s.accessExpiration),
		FirmID:           p.FirmID.String(),
		UserID:           p.UserID.String(),
		Email:            p.Email,
		IsSuperuser:      p.IsSuperuser,
		TokenType:        TokenTypeAccess,
	})
	if err != nil {
		return nil, err
	}
	// no email or role on refresh tokens: they are re-read at refresh time
	pair.RefreshToken, err = sign(s.refreshSecret, &Claims{
		RegisteredClaims: s.registered(p.UserID, now, s.refreshExpiration),
		FirmID:           p.FirmID.String(),
		UserID:           p.UserID.String(),
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func sign(secret []byte, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *JWTService) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(token, s.accessSecret, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) parse(raw string, secret []byte, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case claims.FirmID == "":
		return nil, ErrMissingFirmID
	case claims.UserID == "":
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// RefreshTokenPair exchanges a refresh token for a new pair minted for
// current, the user as they are now, so revoked rights do not carry over.
func (s *JWTService) RefreshTokenPair(refreshToken string, current Principal) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if claims.UserID != current.UserID.String() || claims.FirmID != current.FirmID.String() {
		return nil, ErrInvalidClaims
	}
	return s.issue(current, claims.RefreshCount+1)
}

func (s *JWTService) AccessTokenExpiration() time.Duration { return s.accessExpiration }
