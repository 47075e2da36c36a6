package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=5000"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Stock          int              `json:"stock" binding:"min=0"`
	Category       string           `json:"category" binding:"max=100"`
	Brand          string           `json:"brand" binding:"max=100"`
	Sizes          []string         `json:"sizes" binding:"max=50"`
	Colors         []string         `json:"colors" binding:"max=50"`
	Images         []string         `json:"images" binding:"max=10"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       *bool            `json:"is_active"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description         *string          `json:"description" binding:"omitempty,max=5000"`
	Price               *decimal.Decimal `json:"price"`
	CompareAtPrice      *decimal.Decimal `json:"compare_at_price"`
	ClearCompareAtPrice bool             `json:"clear_compare_at_price"`
	Category            *string          `json:"category" binding:"omitempty,max=100"`
	Brand               *string          `json:"brand" binding:"omitempty,max=100"`
	Sizes               []string         `json:"sizes" binding:"omitempty,max=50"`
	Colors              []string         `json:"colors" binding:"omitempty,max=50"`
	IsFeatured          *bool            `json:"is_featured"`
	IsActive            *bool            `json:"is_active"`
}

// SetFlagRequest toggles a boolean product flag
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// StockRequest either sets stock absolutely or adjusts it by a delta
type StockRequest struct {
	Stock *int `json:"stock" binding:"omitempty,min=0"`
	Delta *int `json:"delta"`
}

// ImageRequest references an uploaded image
type ImageRequest struct {
	Ref string `json:"ref" binding:"required,max=1024"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	OnSale         bool             `json:"on_sale"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	Category       string           `json:"category"`
	Brand          string           `json:"brand"`
	Images         []string         `json:"images"`
	ImageRefs      []string         `json:"image_refs,omitempty"`
	Sizes          []string         `json:"sizes"`
	Colors         []string         `json:"colors"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// ProductListResponse is the list projection of a product
type ProductListResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Stock          int              `json:"stock"`
	Category       string           `json:"category"`
	Brand          string           `json:"brand"`
	Image          string           `json:"image"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string   `form:"search" binding:"max=100"`
	Category string   `form:"category"`
	Brand    string   `form:"brand"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,min=0"`
	Featured *bool    `form:"featured"`
	InStock  *bool    `form:"in_stock"`
	Active   *bool    `form:"active"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	PageSize int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string   `form:"order_by" binding:"omitempty,oneof=name price created_at stock"`
	OrderDir string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// URLResolver turns stored image references into URLs
type URLResolver interface {
	ResolveURL(ref string) string
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product, urls URLResolver, includeRefs bool) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		OnSale:         p.IsOnSale(),
		Stock:          p.Stock,
		InStock:        p.InStock(),
		Category:       p.Category,
		Brand:          p.Brand,
		Images:         resolveAll(p.Images, urls),
		Sizes:          nonNil(p.Sizes),
		Colors:         nonNil(p.Colors),
		IsFeatured:     p.IsFeatured,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
	if includeRefs {
		resp.ImageRefs = nonNil(p.Images)
	}
	return resp
}

// ToProductListResponses converts domain Products to list responses
func ToProductListResponses(products []catalog.Product, urls URLResolver) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i := range products {
		p := &products[i]
		responses[i] = ProductListResponse{
			ID:             p.ID,
			Name:           p.Name,
			Slug:           p.Slug,
			Price:          p.Price,
			CompareAtPrice: p.CompareAtPrice,
			Stock:          p.Stock,
			Category:       p.Category,
			Brand:          p.Brand,
			Image:          urls.ResolveURL(p.PrimaryImage()),
			IsFeatured:     p.IsFeatured,
			IsActive:       p.IsActive,
			CreatedAt:      p.CreatedAt,
		}
	}
	return responses
}

func resolveAll(refs []string, urls URLResolver) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = urls.ResolveURL(r)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
