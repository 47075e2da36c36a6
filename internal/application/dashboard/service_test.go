package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_Stats(t *testing.T) {
	products := new(testutil.MockProductRepository)
	orders := new(testutil.MockOrderRepository)
	profiles := new(testutil.MockProfileRepository)
	memCache := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = memCache.Close() })

	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	isActive := mock.MatchedBy(func(f shared.Filter) bool { return f.Filters["is_active"] == true })
	all := mock.MatchedBy(func(f shared.Filter) bool { return len(f.Filters) == 0 && f.PageSize == 0 })
	products.On("Count", mock.Anything, isActive).Return(int64(8), nil)
	products.On("Count", mock.Anything, all).Return(int64(10), nil)
	products.On("CountLowStock", mock.Anything, 5).Return(int64(2), nil)
	profiles.On("CountByRole", mock.Anything, identity.RoleCustomer).Return(int64(42), nil)
	orders.On("Stats", mock.Anything, midnight).Return(&order.Stats{
		OrderCount:   7,
		ByStatus:     map[order.Status]int64{order.StatusPending: 3, order.StatusCancelled: 4},
		Revenue:      decimal.RequireFromString("150.50"),
		SinceCount:   2,
		SinceRevenue: decimal.RequireFromString("40.00"),
	}, nil)

	o, err := order.New(uuid.New(), order.PaymentCard, order.ShippingAddress{Recipient: "Jane"}, "")
	require.NoError(t, err)
	orders.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.PageSize == 5 && f.OrderDir == "desc"
	})).Return([]order.Order{*o}, nil)

	svc := NewService(products, orders, profiles, memCache, 30*time.Second, 5, nil, nil)

	stats, err := svc.Stats(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.ProductCount)
	assert.Equal(t, int64(8), stats.ActiveProductCount)
	assert.Equal(t, int64(2), stats.LowStockCount)
	assert.Equal(t, int64(42), stats.CustomerCount)
	assert.Equal(t, int64(3), stats.OrdersByStatus["pending"])
	assert.True(t, decimal.RequireFromString("150.50").Equal(stats.Revenue))
	assert.Equal(t, int64(2), stats.TodayOrders)
	require.Len(t, stats.RecentOrders, 1)
	assert.Equal(t, o.OrderNumber, stats.RecentOrders[0].OrderNumber)

	// second call is served from the cache
	again, err := svc.Stats(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, stats.OrderCount, again.OrderCount)
	orders.AssertNumberOfCalls(t, "Stats", 1)
	products.AssertNumberOfCalls(t, "CountLowStock", 1)
}
