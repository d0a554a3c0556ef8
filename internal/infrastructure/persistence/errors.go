package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error to the given domain error
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// duplicate maps unique-constraint violations to ErrAlreadyExists
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// saveWithVersion writes updates only if the row still carries version,
// bumping it to version+1. A lost race surfaces as ErrConcurrencyConflict.
func saveWithVersion(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int, updates map[string]any) error {
	updates["version"] = version + 1
	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return duplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
