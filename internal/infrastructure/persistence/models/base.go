package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain aggregate header
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// FirmAggregateModel is the header for firm-owned aggregates
type FirmAggregateModel struct {
	AggregateModel
	FirmID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainFirmAggregateRoot populates the header from the domain aggregate
func (m *FirmAggregateModel) FromDomainFirmAggregateRoot(a shared.FirmAggregateRoot) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.FirmID = a.FirmID
}

// ToFirmAggregateRoot rebuilds the domain aggregate header
func (m *FirmAggregateModel) ToFirmAggregateRoot() shared.FirmAggregateRoot {
	return shared.FirmAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		FirmID:            m.FirmID,
	}
}

// AllModels lists every persistence model, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&FirmModel{},
		&UserModel{},
		&IntakeFormModel{},
		&ClientModel{},
		&SubmissionModel{},
		&DocumentModel{},
	}
}

// encodeJSON renders a document column. Nil maps are stored as "{}".
func encodeJSON(doc map[string]any) string {
	if len(doc) == 0 {
		return "{}"
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// decodeJSON parses a document column, yielding an empty map on bad input
func decodeJSON(raw string) map[string]any {
	doc := make(map[string]any)
	if raw == "" {
		return doc
	}
	_ = json.Unmarshal([]byte(raw), &doc)
	return doc
}
