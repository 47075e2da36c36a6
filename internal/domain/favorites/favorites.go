package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Item is a locally kept favorite with denormalized display fields
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"added_at"`
}

// List is the favorites list for one owner, newest first
type List struct {
	Owner shared.OwnerKey `json:"owner"`
	Items []Item          `json:"items"`
}

// NewList returns an empty list for owner
func NewList(owner shared.OwnerKey) *List {
	return &List{Owner: owner, Items: make([]Item, 0)}
}

// Add inserts item at the front; it reports false when already present
func (l *List) Add(item Item) bool {
	if l.Contains(item.ProductID) {
		return false
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	l.Items = append([]Item{item}, l.Items...)
	return true
}

// Remove deletes the product; it reports whether it was present
func (l *List) Remove(productID uuid.UUID) bool {
	for i, it := range l.Items {
		if it.ProductID == productID {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle adds or removes item and returns the resulting favorite state
func (l *List) Toggle(item Item) bool {
	if l.Remove(item.ProductID) {
		return false
	}
	l.Add(item)
	return true
}

// Contains reports whether productID is in the list
func (l *List) Contains(productID uuid.UUID) bool {
	for _, it := range l.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Clear empties the list
func (l *List) Clear() {
	l.Items = make([]Item, 0)
}

// ProductIDs returns the product ids in list order
func (l *List) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(l.Items))
	for i, it := range l.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// ListStore persists local favorites lists by owner key
type ListStore interface {
	Load(ctx context.Context, owner shared.OwnerKey) (*List, error)
	Save(ctx context.Context, list *List) error
	Delete(ctx context.Context, owner shared.OwnerKey) error
}

// Favorite is a server-side favorite row for an authenticated user
type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}

// NewFavorite creates a favorite row
func NewFavorite(userID, productID uuid.UUID) *Favorite {
	return &Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
}

// Repository persists the favorites table
type Repository interface {
	// FindByUser returns the user's favorites, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	// Add inserts the row unless the (user, product) pair already exists
	Add(ctx context.Context, fav *Favorite) error
	// AddMany inserts a row per product, skipping existing pairs
	AddMany(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int64, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}
