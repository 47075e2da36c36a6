package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	carts map[shared.OwnerKey]cart.Cart
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[shared.OwnerKey]cart.Cart)}
}

func (m *memStore) Load(_ context.Context, owner shared.OwnerKey) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[owner]
	if !ok {
		return cart.New(owner), nil
	}
	c.Items = append([]cart.Item(nil), c.Items...)
	return &c, nil
}

func (m *memStore) Save(_ context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	m.carts[c.Owner] = cp
	return nil
}

func (m *memStore) Delete(_ context.Context, owner shared.OwnerKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
	return nil
}

type passthroughURLs struct{}

func (passthroughURLs) ResolveURL(ref string) string { return ref }

type countingMetrics struct {
	mu    sync.Mutex
	added int
}

func (c *countingMetrics) RecordCartItemAdded(_ context.Context, qty int) {
	c.mu.Lock()
	c.added += qty
	c.mu.Unlock()
}

func newProduct(t *testing.T, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct("Trail Runner", decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	require.NoError(t, p.SetVariants([]string{"41", "42"}, []string{"Black"}))
	return p
}

func setup() (*Service, *memStore, *testutil.MockProductRepository, *countingMetrics) {
	store := newMemStore()
	repo := new(testutil.MockProductRepository)
	metrics := &countingMetrics{}
	return NewService(store, repo, passthroughURLs{}, metrics, nil), store, repo, metrics
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()
	owner := shared.UserOwner(uuid.New())

	t.Run("adds and merges same variant", func(t *testing.T) {
		svc, _, repo, metrics := setup()
		p := newProduct(t, "25.00", 10)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "42", Color: "black", Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Cart.ItemCount)
		assert.True(t, decimal.RequireFromString("50").Equal(resp.Cart.Subtotal))
		assert.Equal(t, "Black", resp.Cart.Items[0].Color)

		resp, err = svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "42", Color: "BLACK"})
		require.NoError(t, err)
		assert.True(t, resp.Merged)
		assert.Equal(t, 1, resp.Cart.LineCount)
		assert.Equal(t, 3, resp.Cart.ItemCount)
		assert.Equal(t, 3, metrics.added)
	})

	t.Run("clamps to stock", func(t *testing.T) {
		svc, _, repo, metrics := setup()
		p := newProduct(t, "10", 3)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black", Quantity: 5})
		require.NoError(t, err)
		assert.True(t, resp.Clamped)
		assert.Equal(t, 3, resp.Cart.ItemCount)
		assert.Equal(t, 3, metrics.added)

		resp, err = svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black", Quantity: 2})
		require.NoError(t, err)
		assert.True(t, resp.Clamped)
		assert.Equal(t, 3, metrics.added, "nothing was added past stock")
	})

	t.Run("padded variant values match", func(t *testing.T) {
		svc, _, repo, _ := setup()
		p := newProduct(t, "10", 3)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.AddItem(ctx, shared.GuestOwnerFor("pad"), AddItemRequest{ProductID: p.ID, Size: " 41", Color: "black "})
		require.NoError(t, err)
		assert.Equal(t, "41", resp.Cart.Items[0].Size)
		assert.Equal(t, "Black", resp.Cart.Items[0].Color)
	})

	t.Run("out of stock", func(t *testing.T) {
		svc, _, repo, _ := setup()
		p := newProduct(t, "10", 0)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black"})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("inactive product is not found", func(t *testing.T) {
		svc, _, repo, _ := setup()
		p := newProduct(t, "10", 5)
		p.SetActive(false)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown variant is rejected", func(t *testing.T) {
		svc, _, repo, _ := setup()
		p := newProduct(t, "10", 5)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "50", Color: "Black"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})
}

func TestService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	owner := shared.GuestOwnerFor("abc")
	svc, _, repo, _ := setup()
	p := newProduct(t, "10", 4)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)

	resp, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black"})
	require.NoError(t, err)
	key := cart.VariantKey(resp.Cart.Items[0].Key)

	upd, err := svc.UpdateItem(ctx, owner, key, 9)
	require.NoError(t, err)
	assert.True(t, upd.Clamped)
	assert.Equal(t, 4, upd.Cart.ItemCount)

	upd, err = svc.UpdateItem(ctx, owner, key, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, upd.Cart.LineCount)

	_, err = svc.UpdateItem(ctx, owner, key, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	removed, err := svc.RemoveItem(ctx, owner, key)
	require.NoError(t, err)
	assert.Equal(t, 0, removed.LineCount)
}

func TestService_MergeGuestCart(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := setup()
	guest := shared.GuestOwnerFor("device-1")
	user := shared.UserOwner(uuid.New())

	p := newProduct(t, "10", 5)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := svc.AddItem(ctx, guest, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black", Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black", Quantity: 4})
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(ctx, guest, user)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)

	userCart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, userCart.LineCount)
	assert.Equal(t, 5, userCart.ItemCount)

	_, ok := store.carts[guest]
	assert.False(t, ok)

	n, err := svc.MergeGuestCart(ctx, user, user)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, _, repo, _ := setup()
	owner := shared.UserOwner(uuid.New())

	kept := newProduct(t, "10", 5)
	gone := newProduct(t, "20", 5)
	repo.On("FindByID", ctx, kept.ID).Return(kept, nil)
	repo.On("FindByID", ctx, gone.ID).Return(gone, nil)

	_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: kept.ID, Size: "41", Color: "Black", Quantity: 4})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, AddItemRequest{ProductID: gone.ID, Size: "41", Color: "Black", Quantity: 1})
	require.NoError(t, err)

	live := *kept
	live.Price = decimal.RequireFromString("12")
	live.Stock = 2
	repo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{live}, nil)

	resp, err := svc.Refresh(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Changed)
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 2, resp.Cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("24").Equal(resp.Cart.Subtotal))
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := setup()
	owner := shared.UserOwner(uuid.New())
	p := newProduct(t, "10", 5)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, owner))
	assert.Empty(t, store.carts)
}

func TestService_RemovePurchased(t *testing.T) {
	ctx := context.Background()
	svc, _, repo, _ := setup()
	owner := shared.UserOwner(uuid.New())
	p := newProduct(t, "10", 5)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black", Quantity: 2})
	require.NoError(t, err)
	purchased, err := svc.Load(ctx, owner)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, owner, AddItemRequest{ProductID: p.ID, Size: "41", Color: "Black"})
	require.NoError(t, err)
	require.NoError(t, svc.RemovePurchased(ctx, owner, purchased.Items))

	c, err := svc.Load(ctx, owner)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}
