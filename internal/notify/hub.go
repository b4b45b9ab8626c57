package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("change notifications unavailable")

// Hub announces "something of this owner changed" over Redis pub/sub so that
// every instance can push fresh snapshots to its subscribers.
type Hub struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewHub(client *redis.Client, prefix string, logger *zap.Logger) *Hub {
	return &Hub{client: client, prefix: prefix, logger: logger}
}

func (h *Hub) channel(ownerID string) string {
	return h.prefix + ":" + ownerID
}

// Publish announces a change. Without Redis it does nothing.
func (h *Hub) Publish(ctx context.Context, ownerID string) error {
	if h == nil || h.client == nil {
		return nil
	}
	if err := h.client.Publish(ctx, h.channel(ownerID), ownerID).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe returns a channel that receives a value after every Publish for
// ownerID. The subscription is confirmed before Subscribe returns and ends
// when ctx is done, at which point the channel is closed. Bursts of changes
// may be coalesced into one signal.
func (h *Hub) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, error) {
	if h == nil || h.client == nil {
		return nil, ErrUnavailable
	}

	sub := h.client.Subscribe(ctx, h.channel(ownerID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					h.logger.Warn("pubsub channel closed", zap.String("owner", ownerID))
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
