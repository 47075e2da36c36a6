package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/address"
	"github.com/storefront/backend/internal/domain/favorites"
)

// FavoriteModel is a row of the favorites table.
type FavoriteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FavoriteModel) TableName() string {
	return "favorites"
}

// ToDomain converts the row to a domain Favorite.
func (m *FavoriteModel) ToDomain() favorites.Favorite {
	return favorites.Favorite{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		CreatedAt: m.CreatedAt,
	}
}

// AddressModel is the persistence model for a saved shipping address.
type AddressModel struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label      string    `gorm:"type:varchar(50)"`
	Recipient  string    `gorm:"type:varchar(200);not null"`
	Phone      string    `gorm:"type:varchar(50)"`
	Line1      string    `gorm:"type:varchar(200);not null"`
	Line2      string    `gorm:"type:varchar(200)"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20);not null"`
	Country    string    `gorm:"type:char(2);not null"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address.
func (m *AddressModel) ToDomain() address.Address {
	return address.Address{
		ID:         m.ID,
		UserID:     m.UserID,
		Label:      m.Label,
		Recipient:  m.Recipient,
		Phone:      m.Phone,
		Line1:      m.Line1,
		Line2:      m.Line2,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// AddressModelFromDomain creates a new persistence model from a domain Address.
func AddressModelFromDomain(a *address.Address) *AddressModel {
	return &AddressModel{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		UserID:     a.UserID,
		Label:      a.Label,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}
