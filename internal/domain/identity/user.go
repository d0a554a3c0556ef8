package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// bcrypt only looks at the first 72 bytes
const bcryptMaxInput = 72

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an attorney or staff member of a firm
type User struct {
	shared.FirmAggregateRoot
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	IsSuperuser  bool
	LastLoginAt  *time.Time
}

// NewUser creates an active, non-privileged user in the firm
func NewUser(firmID uuid.UUID, email, fullName, password string) (*User, error) {
	if firmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FIRM", "Firm is required")
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Email:             email,
		PasswordHash:      hash,
		FullName:          fullName,
		IsActive:          true,
	}, nil
}

// NewFirmOwner creates the first super-user of a newly registered firm
func NewFirmOwner(firmID uuid.UUID, email, fullName, password string) (*User, error) {
	user, err := NewUser(firmID, email, fullName, password)
	if err != nil {
		return nil, err
	}
	user.IsSuperuser = true
	return user, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(preparePassword(password)))
	return err == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate blocks the user from logging in
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// CanManageFirm reports whether the user may change firm-wide settings
func (u *User) CanManageFirm() bool {
	return u.IsActive && u.IsSuperuser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 256 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 256 characters")
	}
	return nil
}

// preparePassword pre-hashes inputs that bcrypt would otherwise truncate
func preparePassword(password string) string {
	if len(password) > bcryptMaxInput {
		sum := sha256.Sum256([]byte(password))
		return hex.EncodeToString(sum[:])
	}
	return password
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(preparePassword(password)), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
