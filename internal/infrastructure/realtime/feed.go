package realtime

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderFeed forwards order domain events to admin dashboards
type OrderFeed struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewOrderFeed creates the order event handler
func NewOrderFeed(publisher Publisher, logger *zap.Logger) *OrderFeed {
	return &OrderFeed{publisher: publisher, logger: logger}
}

// EventTypes implements shared.EventHandler
func (f *OrderFeed) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle implements shared.EventHandler
func (f *OrderFeed) Handle(ctx context.Context, ev shared.DomainEvent) error {
	msg, err := NewMessage(ev.EventType(), ev)
	if err != nil {
		return err
	}
	return f.publisher.Publish(ctx, msg)
}

var _ shared.EventHandler = (*OrderFeed)(nil)
