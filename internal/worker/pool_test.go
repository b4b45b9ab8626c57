package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_Submit(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("delivers job result", func(t *testing.T) {
		pool := NewPool(logger, 2)
		pool.Start(ctx)
		defer pool.Stop()

		boom := errors.New("boom")
		assert.NoError(t, <-pool.Submit(ctx, func(context.Context) error { return nil }))
		assert.ErrorIs(t, <-pool.Submit(ctx, func(context.Context) error { return boom }), boom)
	})

	t.Run("runs every job once", func(t *testing.T) {
		pool := NewPool(logger, 4)
		pool.Start(ctx)
		defer pool.Stop()

		var ran atomic.Int32
		results := make([]<-chan error, 0, 20)
		for i := 0; i < 20; i++ {
			results = append(results, pool.Submit(ctx, func(context.Context) error {
				ran.Add(1)
				return nil
			}))
		}
		for _, ch := range results {
			require.NoError(t, <-ch)
		}
		assert.Equal(t, int32(20), ran.Load())
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		pool := NewPool(logger, 1)
		// Not started: the queue fills and Submit has to give up.
		block := make(chan struct{})
		defer close(block)
		pool.Submit(ctx, func(context.Context) error { <-block; return nil })

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := <-pool.Submit(cctx, func(context.Context) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPool_Stop(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("submit after stop", func(t *testing.T) {
		pool := NewPool(logger, 1)
		pool.Start(ctx)
		pool.Stop()

		err := <-pool.Submit(ctx, func(context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrStopped)
	})

	t.Run("queued jobs are released", func(t *testing.T) {
		pool := NewPool(logger, 1)
		// Never started, so the queued job can only be drained by Stop.
		ch := pool.Submit(ctx, func(context.Context) error { return nil })
		pool.Stop()

		select {
		case err := <-ch:
			assert.ErrorIs(t, err, ErrStopped)
		case <-time.After(time.Second):
			t.Fatal("queued job was not released")
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		pool := NewPool(logger, 2)
		pool.Start(ctx)

		done := make(chan struct{})
		go func() {
			pool.Stop()
			pool.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("worker pool did not stop gracefully within 5 seconds")
		}
	})
}
