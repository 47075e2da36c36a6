package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel carrying dashboard messages
const DefaultChannel = "shop:realtime:orders"

// RedisRelay publishes messages through Redis so every instance's hub
// receives them. Run must be active on each instance for delivery.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	local   Publisher
	logger  *zap.Logger
}

// NewRedisRelay creates a relay delivering received messages to local
func NewRedisRelay(client redis.UniversalClient, channel string, local Publisher, logger *zap.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel, local: local, logger: logger.Named("realtime.relay")}
}

// Publish sends msg to the shared channel
func (r *RedisRelay) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the channel and forwards messages to the local hub
// until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("subscribed to realtime channel", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				r.logger.Warn("realtime channel closed")
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.logger.Error("invalid realtime payload", zap.Error(err))
				continue
			}
			if err := r.local.Publish(ctx, msg); err != nil {
				r.logger.Error("local delivery failed", zap.Error(err))
			}
		}
	}
}

var _ Publisher = (*RedisRelay)(nil)
