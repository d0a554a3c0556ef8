package models

import (
	"time"

	"github.com/lexflow/backend/internal/domain/identity"
)

// FirmModel is the persistence model for the Firm aggregate
type FirmModel struct {
	AggregateModel
	Name               string                      `gorm:"type:varchar(200);not null"`
	Email              string                      `gorm:"type:varchar(200);not null;index"`
	Phone              string                      `gorm:"type:varchar(50)"`
	Address            string                      `gorm:"type:text"`
	StripeCustomerID   string                      `gorm:"type:varchar(255);index"`
	SubscriptionStatus identity.SubscriptionStatus `gorm:"type:varchar(20);not null;default:'trial'"`
	Branding           string                      `gorm:"type:jsonb;default:'{}'"`
	IsActive           bool                        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FirmModel) TableName() string {
	return "firms"
}

// ToDomain converts the persistence model to a domain Firm
func (m *FirmModel) ToDomain() *identity.Firm {
	return &identity.Firm{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		StripeCustomerID:   m.StripeCustomerID,
		SubscriptionStatus: m.SubscriptionStatus,
		Branding:           decodeJSON(m.Branding),
		IsActive:           m.IsActive,
	}
}

// FirmModelFromDomain creates a persistence model from a domain Firm
func FirmModelFromDomain(f *identity.Firm) *FirmModel {
	m := &FirmModel{
		Name:               f.Name,
		Email:              f.Email,
		Phone:              f.Phone,
		Address:            f.Address,
		StripeCustomerID:   f.StripeCustomerID,
		SubscriptionStatus: f.SubscriptionStatus,
		Branding:           encodeJSON(f.Branding),
		IsActive:           f.IsActive,
	}
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate.
// Emails are unique across firms so login needs no firm hint.
type UserModel struct {
	FirmAggregateModel
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	FullName     string     `gorm:"type:varchar(200)"`
	IsActive     bool       `gorm:"not null"`
	IsSuperuser  bool       `gorm:"not null"`
	LastLoginAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		FirmAggregateRoot: m.ToFirmAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		IsActive:          m.IsActive,
		IsSuperuser:       m.IsSuperuser,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
		IsSuperuser:  u.IsSuperuser,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainFirmAggregateRoot(u.FirmAggregateRoot)
	return m
}
