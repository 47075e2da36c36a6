package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest adds a product variant to the cart. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=30"`
	Color     string    `json:"color" binding:"max=30"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateItemRequest sets the quantity of a line; zero or less removes it
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ItemResponse is a cart line in API responses
type ItemResponse struct {
	Key       string          `json:"key"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse is the cart with derived totals
type CartResponse struct {
	Items     []ItemResponse  `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
}

// MutationResponse is returned by operations that may clamp quantities
type MutationResponse struct {
	Cart    CartResponse `json:"cart"`
	Clamped bool         `json:"clamped"`
	Merged  bool         `json:"merged,omitempty"`
	Changed int          `json:"changed,omitempty"`
}

// ToCartResponse converts a domain cart to its response
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]ItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = ItemResponse{
			Key:       string(it.Key()),
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
			Stock:     it.Stock,
			LineTotal: it.LineTotal(),
		}
	}
	return CartResponse{
		Items:     items,
		Subtotal:  c.Subtotal(),
		ItemCount: c.ItemCount(),
		LineCount: c.LineCount(),
	}
}
