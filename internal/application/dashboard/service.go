// Package dashboard aggregates back-office figures.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	statsCacheKey = "dashboard:stats"
	recentOrders  = 5
)

// Cache is the TTL cache shared with session resolution
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Stats is the dashboard payload
type Stats struct {
	ProductCount       int64                    `json:"product_count"`
	ActiveProductCount int64                    `json:"active_product_count"`
	LowStockCount      int64                    `json:"low_stock_count"`
	LowStockThreshold  int                      `json:"low_stock_threshold"`
	OrderCount         int64                    `json:"order_count"`
	OrdersByStatus     map[string]int64         `json:"orders_by_status"`
	Revenue            decimal.Decimal          `json:"revenue"`
	CustomerCount      int64                    `json:"customer_count"`
	RecentOrders       []apporder.OrderResponse `json:"recent_orders"`
	TodayOrders        int64                    `json:"today_orders"`
	TodayRevenue       decimal.Decimal          `json:"today_revenue"`
	GeneratedAt        time.Time                `json:"generated_at"`
}

// Service computes dashboard stats, caching them for a short TTL
type Service struct {
	products          catalog.ProductRepository
	orders            order.Repository
	profiles          identity.ProfileRepository
	cache             Cache
	ttl               time.Duration
	lowStockThreshold int
	urls              apporder.URLResolver
	logger            *zap.Logger
}

// NewService creates a dashboard Service. A zero ttl defaults to 30 seconds.
func NewService(
	products catalog.ProductRepository,
	orders order.Repository,
	profiles identity.ProfileRepository,
	cache Cache,
	ttl time.Duration,
	lowStockThreshold int,
	urls apporder.URLResolver,
	logger *zap.Logger,
) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:          products,
		orders:            orders,
		profiles:          profiles,
		cache:             cache,
		ttl:               ttl,
		lowStockThreshold: lowStockThreshold,
		urls:              urls,
		logger:            logger,
	}
}

// Stats returns the dashboard figures as of now
func (s *Service) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	var cached Stats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	stats, err := s.compute(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context, now time.Time) (*Stats, error) {
	productCount, err := s.products.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	activeCount, err := s.products.Count(ctx, shared.Filter{Filters: map[string]interface{}{"is_active": true}})
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	customers, err := s.profiles.CountByRole(ctx, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	orderStats, err := s.orders.Stats(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	recent, err := s.orders.FindAll(ctx, shared.Filter{
		Page:     1,
		PageSize: recentOrders,
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}
	recentResp := make([]apporder.OrderResponse, len(recent))
	for i := range recent {
		recentResp[i] = apporder.ToOrderResponse(&recent[i], s.urls)
	}

	byStatus := make(map[string]int64, len(orderStats.ByStatus))
	for status, n := range orderStats.ByStatus {
		byStatus[string(status)] = n
	}

	return &Stats{
		ProductCount:       productCount,
		ActiveProductCount: activeCount,
		LowStockCount:      lowStock,
		LowStockThreshold:  s.lowStockThreshold,
		OrderCount:         orderStats.OrderCount,
		OrdersByStatus:     byStatus,
		Revenue:            orderStats.Revenue,
		CustomerCount:      customers,
		RecentOrders:       recentResp,
		TodayOrders:        orderStats.SinceCount,
		TodayRevenue:       orderStats.SinceRevenue,
		GeneratedAt:        now,
	}, nil
}
