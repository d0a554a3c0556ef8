package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/identity"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFirmRepository implements identity.FirmRepository
type GormFirmRepository struct {
	db *gorm.DB
}

// NewGormFirmRepository creates a new GormFirmRepository
func NewGormFirmRepository(db *gorm.DB) *GormFirmRepository {
	return &GormFirmRepository{db: db}
}

// FindByID finds a firm by its ID
func (r *GormFirmRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Firm, error) {
	var model models.FirmModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// Save writes the firm's profile under optimistic locking
func (r *GormFirmRepository) Save(ctx context.Context, firm *identity.Firm) error {
	m := models.FirmModelFromDomain(firm)
	err := saveWithVersion(ctx, r.db, &models.FirmModel{}, firm.ID, firm.Version, map[string]any{
		"name":                m.Name,
		"email":               m.Email,
		"phone":               m.Phone,
		"address":             m.Address,
		"stripe_customer_id":  m.StripeCustomerID,
		"subscription_status": m.SubscriptionStatus,
		"branding":            m.Branding,
		"is_active":           m.IsActive,
		"updated_at":          m.UpdatedAt,
	})
	if err != nil {
		return err
	}
	firm.IncrementVersion()
	return nil
}

// GormUserRepository implements identity.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by (case-insensitive) email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, notFound(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks whether any firm already has a user with email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes login bookkeeping and profile fields
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	m := models.UserModelFromDomain(user)
	err := saveWithVersion(ctx, r.db, &models.UserModel{}, user.ID, user.Version, map[string]any{
		"full_name":     m.FullName,
		"password_hash": m.PasswordHash,
		"is_active":     m.IsActive,
		"is_superuser":  m.IsSuperuser,
		"last_login_at": m.LastLoginAt,
		"updated_at":    m.UpdatedAt,
	})
	if err != nil {
		return err
	}
	user.IncrementVersion()
	return nil
}

// GormRegistrar implements identity.Registrar with a single transaction
type GormRegistrar struct {
	db *gorm.DB
}

// NewGormRegistrar creates a new GormRegistrar
func NewGormRegistrar(db *gorm.DB) *GormRegistrar {
	return &GormRegistrar{db: db}
}

// Register inserts the firm and its owner, or neither
func (r *GormRegistrar) Register(ctx context.Context, firm *identity.Firm, owner *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.FirmModelFromDomain(firm)).Error; err != nil {
			return duplicate(err)
		}
		if err := tx.Create(models.UserModelFromDomain(owner)).Error; err != nil {
			return duplicate(err)
		}
		return nil
	})
}
