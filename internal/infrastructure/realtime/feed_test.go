package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	msgs []Message
	err  error
}

func (p *capturePublisher) Publish(_ context.Context, msg Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestOrderFeed_ForwardsOrderEvents(t *testing.T) {
	pub := &capturePublisher{}
	feed := NewOrderFeed(pub, zap.NewNop())
	assert.ElementsMatch(t, []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}, feed.EventTypes())

	ev := &order.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, uuid.New()),
		OrderNumber:     "ORD-20261019-ABC123",
		Total:           decimal.RequireFromString("99.90"),
	}
	require.NoError(t, feed.Handle(context.Background(), ev))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, order.EventTypeOrderPlaced, pub.msgs[0].Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.msgs[0].Data, &body))
	assert.Equal(t, "ORD-20261019-ABC123", body["order_number"])
	assert.Equal(t, "99.9", body["total"])
}

func TestOrderFeed_PropagatesPublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("down")}
	feed := NewOrderFeed(pub, zap.NewNop())
	ev := &order.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, uuid.New()),
	}
	assert.Error(t, feed.Handle(context.Background(), ev))
}
