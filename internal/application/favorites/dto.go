package favorites

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/favorites"
)

// FavoriteResponse is a favorite with product display fields
type FavoriteResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	InStock   bool            `json:"in_stock"`
	AddedAt   time.Time       `json:"added_at"`
}

// ToggleResponse reports the favorite state after a toggle
type ToggleResponse struct {
	ProductID  uuid.UUID `json:"product_id"`
	IsFavorite bool      `json:"is_favorite"`
	Count      int       `json:"count"`
}

// StateResponse reports whether a product is a favorite
type StateResponse struct {
	ProductID  uuid.UUID `json:"product_id"`
	IsFavorite bool      `json:"is_favorite"`
}

// SyncResponse reports the result of merging a local list into the table
type SyncResponse struct {
	Added int64 `json:"added"`
	Total int   `json:"total"`
}

// ToLocalResponses converts a local list to responses
func ToLocalResponses(l *favorites.List) []FavoriteResponse {
	out := make([]FavoriteResponse, len(l.Items))
	for i, it := range l.Items {
		out[i] = FavoriteResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			AddedAt:   it.AddedAt,
		}
	}
	return out
}
