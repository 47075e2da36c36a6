package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds products matching the filter.
	// Recognised filter keys: category, brand, is_active, is_featured, in_stock, min_price, max_price.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// DistinctValues returns the distinct non-empty values of column among active products
	DistinctValues(ctx context.Context, column string) ([]string, error)

	// CountLowStock counts active products at or below the threshold
	CountLowStock(ctx context.Context, threshold int) (int64, error)

	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically removes qty units when enough stock remains.
	// It returns ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error

	// IncrementStock atomically returns qty units to stock
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}
