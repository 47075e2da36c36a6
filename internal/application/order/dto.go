package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/address"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// CheckoutRequest places an order from the server cart. Exactly one of
// AddressID and Address is required.
type CheckoutRequest struct {
	AddressID     *uuid.UUID              `json:"address_id"`
	Address       *address.AddressRequest `json:"address"`
	PaymentMethod string                  `json:"payment_method" binding:"required,oneof=cod card"`
	Notes         string                  `json:"notes" binding:"max=1000"`
}

// UpdateStatusRequest moves an order through the status machine
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// ListFilter is the order listing query
type ListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Search   string     `form:"search"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toFilter converts to a repository filter. To is inclusive of its whole day.
func (f ListFilter) toFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	filter.Filters = map[string]interface{}{}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.From != nil {
		filter.Filters["created_from"] = *f.From
	}
	if f.To != nil {
		filter.Filters["created_to"] = f.To.AddDate(0, 0, 1)
	}
	return filter
}

// ItemResponse is an order line
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse is an order with its lines
type OrderResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderNumber   string                `json:"order_number"`
	UserID        uuid.UUID             `json:"user_id"`
	Status        string                `json:"status"`
	Items         []ItemResponse        `json:"items"`
	ItemCount     int                   `json:"item_count"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	ShippingFee   decimal.Decimal       `json:"shipping_fee"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	Shipping      order.ShippingAddress `json:"shipping_address"`
	Notes         string                `json:"notes,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// ListResult is a page of orders
type ListResult struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

// ToOrderResponse converts a domain order; image references are resolved
func ToOrderResponse(o *order.Order, urls URLResolver) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		image := it.Image
		if urls != nil && image != "" {
			image = urls.ResolveURL(image)
		}
		items[i] = ItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Image:       image,
			Size:        it.Size,
			Color:       it.Color,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		}
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Items:         items,
		ItemCount:     o.ItemCount(),
		Subtotal:      o.Subtotal,
		ShippingFee:   o.ShippingFee,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		Shipping:      o.Shipping,
		Notes:         o.Notes,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Version:       o.Version,
	}
}
