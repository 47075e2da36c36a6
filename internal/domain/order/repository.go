package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists orders with their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindForUser loads an order owned by userID; other users' orders are NOT_FOUND
	FindForUser(ctx context.Context, userID, id uuid.UUID) (*Order, error)
	// FindAll lists orders with their items. Filter keys: user_id, status, created_from, created_to.
	// Search matches the order number.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Create inserts the order and its items
	Create(ctx context.Context, o *Order) error
	// UpdateStatus persists status, cancelled_at and version with an optimistic lock on version-1
	UpdateStatus(ctx context.Context, o *Order) error
	Stats(ctx context.Context, since time.Time) (*Stats, error)
}

// Stats aggregates order figures for the back-office dashboard
type Stats struct {
	OrderCount   int64
	ByStatus     map[Status]int64
	Revenue      decimal.Decimal
	SinceCount   int64
	SinceRevenue decimal.Decimal
}
