package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Name           string           `gorm:"type:varchar(200);not null"`
	Slug           string           `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description    string           `gorm:"type:text"`
	Price          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock          int              `gorm:"not null;default:0"`
	Category       string           `gorm:"type:varchar(100);index"`
	Brand          string           `gorm:"type:varchar(100);index"`
	Images         []string         `gorm:"type:jsonb;serializer:json"`
	Sizes          []string         `gorm:"type:jsonb;serializer:json"`
	Colors         []string         `gorm:"type:jsonb;serializer:json"`
	IsFeatured     bool             `gorm:"not null;default:false"`
	IsActive       bool             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		Price:             m.Price,
		CompareAtPrice:    m.CompareAtPrice,
		Stock:             m.Stock,
		Category:          m.Category,
		Brand:             m.Brand,
		Images:            orEmpty(m.Images),
		Sizes:             orEmpty(m.Sizes),
		Colors:            orEmpty(m.Colors),
		IsFeatured:        m.IsFeatured,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Price = p.Price
	m.CompareAtPrice = p.CompareAtPrice
	m.Stock = p.Stock
	m.Category = p.Category
	m.Brand = p.Brand
	m.Images = orEmpty(p.Images)
	m.Sizes = orEmpty(p.Sizes)
	m.Colors = orEmpty(p.Colors)
	m.IsFeatured = p.IsFeatured
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
