package notify

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHub(t *testing.T) *Hub {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHub(client, "notes", zap.NewNop())
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := hub.Subscribe(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, "u1"))
	select {
	case _, ok := <-ch:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal received")
	}
}

func TestHub_OwnersAreIsolated(t *testing.T) {
	hub := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := hub.Subscribe(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, "u2"))
	select {
	case <-ch:
		t.Fatal("received another owner's change")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := hub.Subscribe(ctx, "u1")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestHub_WithoutRedis(t *testing.T) {
	hub := NewHub(nil, "notes", zap.NewNop())

	assert.NoError(t, hub.Publish(context.Background(), "u1"))
	_, err := hub.Subscribe(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrUnavailable)

	var nilHub *Hub
	assert.NoError(t, nilHub.Publish(context.Background(), "u1"))
}
