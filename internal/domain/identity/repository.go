package identity

import (
	"context"

	"github.com/google/uuid"
)

// FirmRepository defines persistence for firms
type FirmRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Firm, error)
	// Save updates an existing firm using its version for optimistic locking
	Save(ctx context.Context, firm *Firm) error
}

// UserRepository defines persistence for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail looks a user up across all firms; emails are globally unique
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
}

// Registrar creates a firm together with its owner atomically.
// Either both rows are written or neither is.
type Registrar interface {
	Register(ctx context.Context, firm *Firm, owner *User) error
}
