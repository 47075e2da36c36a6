package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Email        string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null"`
	LastLoginAt  *time.Time
	LastLoginIP  string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// ProfileModel is the persistence model for a user's profile row.
// The role column is free text so rows written by other tools may carry
// values the role policy ignores.
type ProfileModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"type:varchar(200)"`
	AvatarURL string    `gorm:"type:varchar(500)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Role      string    `gorm:"type:varchar(20);index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		UserID:    m.UserID,
		FullName:  m.FullName,
		AvatarURL: m.AvatarURL,
		Phone:     m.Phone,
		Role:      identity.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ProfileModelFromDomain creates a new persistence model from a domain Profile.
func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	return &ProfileModel{
		UserID:    p.UserID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Phone:     p.Phone,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
