package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/identity"
	"github.com/lexflow/backend/internal/infrastructure/auth"
)

// RegisterRequest creates a firm together with its first administrator
type RegisterRequest struct {
	FirmName string `json:"firm_name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=256"`
	FullName string `json:"full_name" binding:"required,min=1,max=200"`
}

// LoginRequest contains the credentials for a password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateFirmRequest is a partial firm profile update
type UpdateFirmRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=1,max=200"`
	Email    *string        `json:"email" binding:"omitempty,email,max=200"`
	Phone    *string        `json:"phone" binding:"omitempty,max=50"`
	Address  *string        `json:"address" binding:"omitempty,max=500"`
	Branding map[string]any `json:"branding"`
}

// Principal is the authenticated caller of a private operation
type Principal struct {
	UserID      uuid.UUID
	FirmID      uuid.UUID
	Email       string
	IsSuperuser bool
	IsActive    bool
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	TokenType             string        `json:"token_type"`
	ExpiresIn             int64         `json:"expires_in"`
	AccessTokenExpiresAt  time.Time     `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time     `json:"refresh_token_expires_at"`
	User                  *UserResponse `json:"user,omitempty"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirmID      uuid.UUID  `json:"firm_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FirmResponse represents a firm in API responses
type FirmResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	Address            string         `json:"address"`
	SubscriptionStatus string         `json:"subscription_status"`
	Branding           map[string]any `json:"branding"`
	IsActive           bool           `json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirmID:      u.FirmID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ToFirmResponse converts a domain Firm
func ToFirmResponse(f *identity.Firm) FirmResponse {
	branding := f.Branding
	if branding == nil {
		branding = map[string]any{}
	}
	return FirmResponse{
		ID:                 f.ID,
		Name:               f.Name,
		Email:              f.Email,
		Phone:              f.Phone,
		Address:            f.Address,
		SubscriptionStatus: string(f.SubscriptionStatus),
		Branding:           branding,
		IsActive:           f.IsActive,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

func toAuthResponse(pair *auth.TokenPair, accessTTL time.Duration, user *identity.User) *AuthResponse {
	resp := &AuthResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		TokenType:             pair.TokenType,
		ExpiresIn:             int64(accessTTL.Seconds()),
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
	if user != nil {
		u := ToUserResponse(user)
		resp.User = &u
	}
	return resp
}

func principalOf(u *identity.User) auth.Principal {
	return auth.Principal{
		FirmID:      u.FirmID,
		UserID:      u.ID,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
	}
}
