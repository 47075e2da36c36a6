package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LowStockCounter reports how many active products sit at or below a threshold
type LowStockCounter interface {
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// BusinessMetrics records storefront counters. The zero value is not usable;
// build it with NewBusinessMetrics. A nil *BusinessMetrics is a valid no-op.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersCreated  metric.Int64Counter
	orderAmount    metric.Float64Counter
	cartItemsAdded metric.Int64Counter
	logins         metric.Int64Counter
	lowStock       metric.Int64ObservableGauge
	registration   metric.Registration
}

// BusinessMetricsConfig holds the inputs of NewBusinessMetrics
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	Products          LowStockCounter // optional
	LowStockThreshold int
}

// NewBusinessMetrics registers the storefront instruments on the meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.ordersCreated, err = cfg.Meter.Int64Counter("orders_created_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("{orders}"),
	); err != nil {
		return nil, fmt.Errorf("orders_created_total: %w", err)
	}
	if bm.orderAmount, err = cfg.Meter.Float64Counter("order_amount_total",
		metric.WithDescription("Sum of placed order totals"),
		metric.WithUnit("{currency}"),
	); err != nil {
		return nil, fmt.Errorf("order_amount_total: %w", err)
	}
	if bm.cartItemsAdded, err = cfg.Meter.Int64Counter("cart_items_added_total",
		metric.WithDescription("Units added to carts"),
		metric.WithUnit("{units}"),
	); err != nil {
		return nil, fmt.Errorf("cart_items_added_total: %w", err)
	}
	if bm.logins, err = cfg.Meter.Int64Counter("auth_logins_total",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{attempts}"),
	); err != nil {
		return nil, fmt.Errorf("auth_logins_total: %w", err)
	}

	if cfg.Products != nil {
		if bm.lowStock, err = cfg.Meter.Int64ObservableGauge("catalog_low_stock_products",
			metric.WithDescription("Active products at or below the low stock threshold"),
			metric.WithUnit("{products}"),
		); err != nil {
			return nil, fmt.Errorf("catalog_low_stock_products: %w", err)
		}
		products, threshold := cfg.Products, cfg.LowStockThreshold
		bm.registration, err = cfg.Meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			n, err := products.CountLowStock(ctx, threshold)
			if err != nil {
				logger.Warn("Failed to collect low stock count", zap.Error(err))
				return nil
			}
			o.ObserveInt64(bm.lowStock, n)
			return nil
		}, bm.lowStock)
		if err != nil {
			return nil, fmt.Errorf("register low stock callback: %w", err)
		}
	}

	return bm, nil
}

// RecordOrderCreated counts a placed order and adds its total
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("payment_method", paymentMethod))
	bm.ordersCreated.Add(ctx, 1, attrs)
	bm.orderAmount.Add(ctx, total.InexactFloat64(), attrs)
}

// RecordCartItemAdded counts units added to any cart
func (bm *BusinessMetrics) RecordCartItemAdded(ctx context.Context, quantity int) {
	if bm == nil || quantity <= 0 {
		return
	}
	bm.cartItemsAdded.Add(ctx, int64(quantity))
}

// RecordLogin counts a login attempt; outcome is "success" or "failure"
func (bm *BusinessMetrics) RecordLogin(ctx context.Context, outcome string) {
	if bm == nil {
		return
	}
	bm.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Stop unregisters the observable callbacks
func (bm *BusinessMetrics) Stop() {
	if bm == nil || bm.registration == nil {
		return
	}
	if err := bm.registration.Unregister(); err != nil {
		bm.logger.Warn("Failed to unregister metrics callback", zap.Error(err))
	}
}
