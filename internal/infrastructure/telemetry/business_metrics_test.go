package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type stubLowStock struct {
	count int64
	err   error
	seen  int
}

func (s *stubLowStock) CountLowStock(_ context.Context, threshold int) (int64, error) {
	s.seen = threshold
	return s.count, s.err
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func newTestMetrics(t *testing.T, products LowStockCounter) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(BusinessMetricsConfig{
		Meter:             mp.Meter("test"),
		Products:          products,
		LowStockThreshold: 5,
	})
	require.NoError(t, err)
	return bm, reader
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := NewBusinessMetrics(BusinessMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBusinessMetrics_Counters(t *testing.T) {
	bm, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	bm.RecordOrderCreated(ctx, "cod", decimal.RequireFromString("120.50"))
	bm.RecordOrderCreated(ctx, "card", decimal.RequireFromString("30"))
	bm.RecordCartItemAdded(ctx, 2)
	bm.RecordCartItemAdded(ctx, 0)
	bm.RecordLogin(ctx, "success")

	data := collect(t, reader)

	orders := data["orders_created_total"].(metricdata.Sum[int64])
	var total int64
	for _, dp := range orders.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	amount := data["order_amount_total"].(metricdata.Sum[float64])
	var sum float64
	for _, dp := range amount.DataPoints {
		sum += dp.Value
	}
	assert.InDelta(t, 150.5, sum, 0.001)

	items := data["cart_items_added_total"].(metricdata.Sum[int64])
	require.Len(t, items.DataPoints, 1)
	assert.Equal(t, int64(2), items.DataPoints[0].Value)

	assert.Contains(t, data, "auth_logins_total")
}

func TestBusinessMetrics_LowStockGauge(t *testing.T) {
	products := &stubLowStock{count: 7}
	bm, reader := newTestMetrics(t, products)
	defer bm.Stop()

	data := collect(t, reader)
	gauge := data["catalog_low_stock_products"].(metricdata.Gauge[int64])
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
	assert.Equal(t, 5, products.seen)
}

func TestBusinessMetrics_LowStockErrorSkipsObservation(t *testing.T) {
	bm, reader := newTestMetrics(t, &stubLowStock{err: errors.New("db down")})
	defer bm.Stop()

	data := collect(t, reader)
	if g, ok := data["catalog_low_stock_products"]; ok {
		assert.Empty(t, g.(metricdata.Gauge[int64]).DataPoints)
	}
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *BusinessMetrics
	ctx := context.Background()
	bm.RecordOrderCreated(ctx, "cod", decimal.NewFromInt(1))
	bm.RecordCartItemAdded(ctx, 1)
	bm.RecordLogin(ctx, "failure")
	bm.Stop()
}
