package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// URLResolver turns stored image references into URLs
type URLResolver interface {
	ResolveURL(ref string) string
}

// Metrics records cart activity. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordCartItemAdded(ctx context.Context, quantity int)
}

// Service manages shopping carts keyed by owner
type Service struct {
	store       cart.Store
	productRepo catalog.ProductRepository
	urls        URLResolver
	metrics     Metrics
	logger      *zap.Logger
	locks       shared.OwnerLocks
}

// NewService creates a cart Service. metrics may be nil.
func NewService(store cart.Store, productRepo catalog.ProductRepository, urls URLResolver, metrics Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		productRepo: productRepo,
		urls:        urls,
		metrics:     metrics,
		logger:      logger,
	}
}

// Get returns the owner's cart
func (s *Service) Get(ctx context.Context, owner shared.OwnerKey) (*CartResponse, error) {
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Load returns the domain cart for owner
func (s *Service) Load(ctx context.Context, owner shared.OwnerKey) (*cart.Cart, error) {
	return s.store.Load(ctx, owner)
}

// AddItem adds a product variant using the live product as snapshot
func (s *Service) AddItem(ctx context.Context, owner shared.OwnerKey, req AddItemRequest) (*MutationResponse, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewNotFoundError("Product")
	}
	if !product.AcceptsVariant(req.Size, req.Color) {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Selected size or color is not available for this product")
	}

	item := cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     s.urls.ResolveURL(product.PrimaryImage()),
		Price:     product.Price,
		Size:      canonicalOption(product.Sizes, req.Size),
		Color:     canonicalOption(product.Colors, req.Color),
		Stock:     product.Stock,
	}
	var (
		result cart.AddResult
		added  int
	)
	c, err := s.withCart(ctx, owner, func(c *cart.Cart) error {
		prior := 0
		if line, ok := c.Find(item.Key()); ok {
			prior = line.Quantity
		}
		var addErr error
		result, addErr = c.Add(item, qty)
		added = result.Item.Quantity - prior
		return addErr
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && added > 0 {
		s.metrics.RecordCartItemAdded(ctx, added)
	}

	return &MutationResponse{Cart: ToCartResponse(c), Clamped: result.Clamped, Merged: result.Merged}, nil
}

// UpdateItem sets the quantity of a line
func (s *Service) UpdateItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey, qty int) (*MutationResponse, error) {
	var clamped bool
	c, err := s.withCart(ctx, owner, func(c *cart.Cart) error {
		var updErr error
		clamped, updErr = c.UpdateQuantity(key, qty)
		return updErr
	})
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Cart: ToCartResponse(c), Clamped: clamped}, nil
}

// RemoveItem deletes a line; removing an absent key is a no-op
func (s *Service) RemoveItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey) (*CartResponse, error) {
	c, err := s.withCart(ctx, owner, func(c *cart.Cart) error {
		c.Remove(key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Clear empties the owner's cart
func (s *Service) Clear(ctx context.Context, owner shared.OwnerKey) error {
	defer s.locks.Lock(owner)()
	return s.store.Delete(ctx, owner)
}

// RemovePurchased deducts checked-out lines from the owner's cart. Lines added
// or raised after the checkout read the cart stay behind.
func (s *Service) RemovePurchased(ctx context.Context, owner shared.OwnerKey, purchased []cart.Item) error {
	_, err := s.withCart(ctx, owner, func(c *cart.Cart) error {
		c.Deduct(purchased)
		return nil
	})
	return err
}

// MergeGuestCart folds the guest cart into the user cart and deletes the guest cart
func (s *Service) MergeGuestCart(ctx context.Context, guest, user shared.OwnerKey) (int, error) {
	if guest == user || !guest.IsGuest() {
		return 0, nil
	}

	guestCart, err := s.store.Load(ctx, guest)
	if err != nil {
		return 0, err
	}
	if guestCart.IsEmpty() {
		return 0, nil
	}

	var merged int
	if _, err := s.withCart(ctx, user, func(c *cart.Cart) error {
		merged = c.Merge(guestCart)
		return nil
	}); err != nil {
		return 0, err
	}

	if err := s.store.Delete(ctx, guest); err != nil {
		s.logger.Warn("Failed to delete merged guest cart", zap.String("owner", guest.String()), zap.Error(err))
	}

	s.logger.Debug("Guest cart merged",
		zap.String("guest", guest.String()),
		zap.String("user", user.String()),
		zap.Int("lines", merged),
	)
	return merged, nil
}

// Refresh re-reads live price and stock for every line. Lines whose product is
// gone or inactive are dropped; quantities are re-clamped.
func (s *Service) Refresh(ctx context.Context, owner shared.OwnerKey) (*MutationResponse, error) {
	changed := 0
	c, err := s.withCart(ctx, owner, func(c *cart.Cart) error {
		if c.IsEmpty() {
			return nil
		}
		ids := c.ProductIDs()
		products, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				changed += c.ApplySnapshot(id, cart.Snapshot{Available: false})
				continue
			}
			changed += c.ApplySnapshot(id, cart.Snapshot{
				Name:      p.Name,
				Image:     s.urls.ResolveURL(p.PrimaryImage()),
				Price:     p.Price,
				Stock:     p.Stock,
				Available: p.IsActive,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Cart: ToCartResponse(c), Changed: changed}, nil
}

// withCart loads, mutates and saves the owner's cart under the owner lock
func (s *Service) withCart(ctx context.Context, owner shared.OwnerKey, fn func(*cart.Cart) error) (*cart.Cart, error) {
	defer s.locks.Lock(owner)()

	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// canonicalOption returns the product's own spelling of value
func canonicalOption(options []string, value string) string {
	for _, o := range options {
		if strings.EqualFold(o, strings.TrimSpace(value)) {
			return o
		}
	}
	return value
}
