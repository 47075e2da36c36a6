package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, userID uuid.UUID, price string, qty int) *order.Order {
	t.Helper()
	o, err := order.New(userID, order.PaymentCashOnDelivery, order.ShippingAddress{
		Recipient:  "Ada",
		Line1:      "1 Main St",
		City:       "Paris",
		PostalCode: "75001",
		Country:    "FR",
	}, "leave at door")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), "Scarf", "product-images/s.jpg", "", "red", decimal.RequireFromString(price), qty))
	o.ApplyShipping(decimal.NewFromInt(5), decimal.NewFromInt(100))
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))
	userID := uuid.New()

	o := newTestOrder(t, userID, "20.00", 2)
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindForUser(ctx, userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, found.OrderNumber)
	assert.Equal(t, order.StatusPending, found.Status)
	assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(40)))
	assert.True(t, found.ShippingFee.Equal(decimal.NewFromInt(5)))
	assert.True(t, found.Total.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, "Paris", found.Shipping.City)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Scarf", found.Items[0].ProductName)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromInt(40)))

	_, err = repo.FindForUser(ctx, uuid.New(), o.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormOrderRepository_UpdateStatusOptimisticLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))
	o := newTestOrder(t, uuid.New(), "10", 1)
	require.NoError(t, repo.Create(ctx, o))

	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, o.TransitionTo(order.StatusProcessing))
	require.NoError(t, repo.UpdateStatus(ctx, o))

	require.NoError(t, stale.TransitionTo(order.StatusCancelled))
	err = repo.UpdateStatus(ctx, stale)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, found.Status)
	assert.Nil(t, found.CancelledAt)
	assert.Equal(t, o.Version, found.Version)
}

func TestGormOrderRepository_FindAllAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newTestDB(t))
	alice, bob := uuid.New(), uuid.New()

	a1 := newTestOrder(t, alice, "10", 1) // 15 with shipping
	a2 := newTestOrder(t, alice, "60", 2) // 120, free shipping
	b1 := newTestOrder(t, bob, "30", 1)   // 35
	b1.CreatedAt = time.Now().Add(-48 * time.Hour)
	for _, o := range []*order.Order{a1, a2, b1} {
		require.NoError(t, repo.Create(ctx, o))
	}
	require.NoError(t, a1.CancelByCustomer())
	require.NoError(t, repo.UpdateStatus(ctx, a1))

	t.Run("filter by user", func(t *testing.T) {
		f := shared.Filter{Filters: map[string]any{"user_id": alice}}
		list, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		for _, o := range list {
			assert.NotEmpty(t, o.Items)
		}
		n, err := repo.Count(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("filter by status and number", func(t *testing.T) {
		list, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"status": order.StatusCancelled}})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a1.ID, list[0].ID)

		list, err = repo.FindAll(ctx, shared.Filter{Search: b1.OrderNumber[len(b1.OrderNumber)-6:]})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b1.ID, list[0].ID)
	})

	t.Run("filter by date range", func(t *testing.T) {
		list, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"created_from": time.Now().Add(-24 * time.Hour)}})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("stats exclude cancelled revenue", func(t *testing.T) {
		stats, err := repo.Stats(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.OrderCount)
		assert.Equal(t, int64(2), stats.ByStatus[order.StatusPending])
		assert.Equal(t, int64(1), stats.ByStatus[order.StatusCancelled])
		assert.Equal(t, int64(0), stats.ByStatus[order.StatusShipped])
		assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(155)), stats.Revenue.String())
		assert.Equal(t, int64(2), stats.SinceCount)
		assert.True(t, stats.SinceRevenue.Equal(decimal.NewFromInt(120)), stats.SinceRevenue.String())
	})
}
