// Package cart models the shopping cart as a small state machine over
// variant-keyed lines with stock-aware merge semantics.
package cart

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const keySeparator = "|"

// VariantKey identifies a cart line: product id plus size and color
type VariantKey string

// NewVariantKey builds the key for a product variant
func NewVariantKey(productID uuid.UUID, size, color string) VariantKey {
	return VariantKey(productID.String() + keySeparator + normalizeOption(size) + keySeparator + normalizeOption(color))
}

// ParseVariantKey splits a key into its product id, size and color
func ParseVariantKey(s string) (uuid.UUID, string, string, error) {
	parts := strings.Split(s, keySeparator)
	if len(parts) != 3 {
		return uuid.Nil, "", "", shared.NewInvalidInputError("Invalid cart item key")
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", "", shared.NewInvalidInputError("Invalid product id in cart item key")
	}
	return id, parts[1], parts[2], nil
}

func normalizeOption(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Item is a single cart line with a denormalized product snapshot
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	AddedAt   time.Time       `json:"added_at"`
}

// Key returns the line's variant key
func (i Item) Key() VariantKey {
	return NewVariantKey(i.ProductID, i.Size, i.Color)
}

// LineTotal returns price x quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot is the live product state used to refresh cart lines
type Snapshot struct {
	Name      string
	Image     string
	Price     decimal.Decimal
	Stock     int
	Available bool
}

// Cart holds the lines for one owner
type Cart struct {
	Owner     shared.OwnerKey `json:"owner"`
	Items     []Item          `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New returns an empty cart for owner
func New(owner shared.OwnerKey) *Cart {
	return &Cart{
		Owner: owner,
		Items: make([]Item, 0),
	}
}

// AddResult describes the outcome of Add
type AddResult struct {
	Item    Item
	Merged  bool
	Clamped bool
}

// Add inserts a line or merges it into an existing line with the same variant key.
// The snapshot fields of item refresh the existing line and the resulting
// quantity is clamped to the stock snapshot.
func (c *Cart) Add(item Item, qty int) (AddResult, error) {
	if qty < 1 {
		return AddResult{}, shared.NewInvalidInputError("Quantity must be at least 1")
	}
	if item.Stock <= 0 {
		return AddResult{}, shared.NewDomainError(shared.CodeInsufficientStock, item.Name+" is out of stock")
	}

	key := item.Key()
	if idx := c.indexOf(key); idx >= 0 {
		line := &c.Items[idx]
		line.Name = item.Name
		line.Image = item.Image
		line.Price = item.Price
		line.Stock = item.Stock

		want := line.Quantity + qty
		line.Quantity, _ = clamp(want, line.Stock)
		c.touch()
		return AddResult{Item: *line, Merged: true, Clamped: line.Quantity < want}, nil
	}

	item.Quantity, _ = clamp(qty, item.Stock)
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.Items = append(c.Items, item)
	c.touch()
	return AddResult{Item: item, Clamped: item.Quantity < qty}, nil
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line; quantities above the stock snapshot are clamped.
// It reports whether the quantity was clamped.
func (c *Cart) UpdateQuantity(key VariantKey, qty int) (bool, error) {
	idx := c.indexOf(key)
	if idx < 0 {
		return false, shared.NewNotFoundError("Cart item")
	}
	if qty <= 0 {
		c.removeAt(idx)
		return false, nil
	}

	line := &c.Items[idx]
	var clamped bool
	line.Quantity, clamped = clamp(qty, line.Stock)
	if line.Quantity == 0 {
		c.removeAt(idx)
	}
	c.touch()
	return clamped, nil
}

// Remove deletes the line with key; it reports whether a line was removed
func (c *Cart) Remove(key VariantKey) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.touch()
}

// Deduct subtracts purchased quantities from the matching lines. Lines that
// reach zero are removed; lines absent from purchased are left as they are.
func (c *Cart) Deduct(purchased []Item) {
	changed := false
	for _, p := range purchased {
		idx := c.indexOf(p.Key())
		if idx < 0 {
			continue
		}
		c.Items[idx].Quantity -= p.Quantity
		if c.Items[idx].Quantity <= 0 {
			c.removeAt(idx)
		}
		changed = true
	}
	if changed {
		c.touch()
	}
}

// Find returns the line for key
func (c *Cart) Find(key VariantKey) (Item, bool) {
	if idx := c.indexOf(key); idx >= 0 {
		return c.Items[idx], true
	}
	return Item{}, false
}

// ApplySnapshot refreshes every line of productID from live product data.
// Unavailable or sold-out products are dropped and quantities re-clamped.
// It returns the number of lines changed or removed.
func (c *Cart) ApplySnapshot(productID uuid.UUID, snap Snapshot) int {
	changed := 0
	kept := c.Items[:0]
	for _, line := range c.Items {
		if line.ProductID != productID {
			kept = append(kept, line)
			continue
		}
		if !snap.Available || snap.Stock <= 0 {
			changed++
			continue
		}

		before := line
		line.Name = snap.Name
		line.Image = snap.Image
		line.Price = snap.Price
		line.Stock = snap.Stock
		line.Quantity, _ = clamp(line.Quantity, snap.Stock)
		if line.Quantity != before.Quantity || !line.Price.Equal(before.Price) || line.Stock != before.Stock {
			changed++
		}
		kept = append(kept, line)
	}
	c.Items = kept
	if changed > 0 {
		c.touch()
	}
	return changed
}

// Merge adds every line of other into c using Add semantics.
// Lines that can no longer be added (sold out) are skipped.
func (c *Cart) Merge(other *Cart) int {
	merged := 0
	for _, line := range other.Items {
		if _, err := c.Add(line, line.Quantity); err == nil {
			merged++
		}
	}
	return merged
}

// ProductIDs returns the distinct product ids in the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c.Items))
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, line := range c.Items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// Subtotal returns the sum of price x quantity over all lines
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount returns the total quantity across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.Items {
		n += line.Quantity
	}
	return n
}

// LineCount returns the number of distinct lines
func (c *Cart) LineCount() int {
	return len(c.Items)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(key VariantKey) int {
	for i, line := range c.Items {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

// clamp bounds qty to [0, stock] and reports whether it was reduced
func clamp(qty, stock int) (int, bool) {
	if stock < 0 {
		stock = 0
	}
	if qty > stock {
		return stock, true
	}
	return qty, false
}

// Store persists carts by owner key
type Store interface {
	// Load returns the owner's cart, or an empty cart when none is stored
	Load(ctx context.Context, owner shared.OwnerKey) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, owner shared.OwnerKey) error
}
