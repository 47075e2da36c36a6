package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/favorites"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	cartKeyPrefix      = "cart:"
	favoritesKeyPrefix = "favorites:"
)

// CartStore keeps carts in a TTLCache keyed by owner.
// Every save slides the expiry forward by ttl.
type CartStore struct {
	cache TTLCache
	ttl   time.Duration
}

// NewCartStore creates a cart store
func NewCartStore(cache TTLCache, ttl time.Duration) *CartStore {
	return &CartStore{cache: cache, ttl: ttl}
}

// Load implements cart.Store
func (s *CartStore) Load(ctx context.Context, owner shared.OwnerKey) (*cart.Cart, error) {
	c := cart.New(owner)
	found, err := s.cache.Get(ctx, cartKeyPrefix+owner.String(), c)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return cart.New(owner), nil
	}
	c.Owner = owner
	if c.Items == nil {
		c.Items = make([]cart.Item, 0)
	}
	return c, nil
}

// Save implements cart.Store. Empty carts are deleted rather than stored.
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, c.Owner)
	}
	if err := s.cache.Set(ctx, cartKeyPrefix+c.Owner.String(), c, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete implements cart.Store
func (s *CartStore) Delete(ctx context.Context, owner shared.OwnerKey) error {
	return s.cache.Delete(ctx, cartKeyPrefix+owner.String())
}

var _ cart.Store = (*CartStore)(nil)

// FavoritesStore keeps local favorites lists in a TTLCache keyed by owner
type FavoritesStore struct {
	cache TTLCache
	ttl   time.Duration
}

// NewFavoritesStore creates a local favorites store
func NewFavoritesStore(cache TTLCache, ttl time.Duration) *FavoritesStore {
	return &FavoritesStore{cache: cache, ttl: ttl}
}

// Load implements favorites.ListStore
func (s *FavoritesStore) Load(ctx context.Context, owner shared.OwnerKey) (*favorites.List, error) {
	list := favorites.NewList(owner)
	found, err := s.cache.Get(ctx, favoritesKeyPrefix+owner.String(), list)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if !found {
		return favorites.NewList(owner), nil
	}
	list.Owner = owner
	if list.Items == nil {
		list.Items = make([]favorites.Item, 0)
	}
	return list, nil
}

// Save implements favorites.ListStore
func (s *FavoritesStore) Save(ctx context.Context, list *favorites.List) error {
	if len(list.Items) == 0 {
		return s.Delete(ctx, list.Owner)
	}
	if err := s.cache.Set(ctx, favoritesKeyPrefix+list.Owner.String(), list, s.ttl); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// Delete implements favorites.ListStore
func (s *FavoritesStore) Delete(ctx context.Context, owner shared.OwnerKey) error {
	return s.cache.Delete(ctx, favoritesKeyPrefix+owner.String())
}

var _ favorites.ListStore = (*FavoritesStore)(nil)
