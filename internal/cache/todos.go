package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
)

// Todos wraps a TodoRepository with a Redis read-through cache of
// FetchByOwner. Every write evicts the owner's entry and bumps the owner's
// generation; a fill only lands if the generation it started under is still
// current. Redis failures never fail a call; the base repository answers
// instead.
type Todos struct {
	repo.TodoRepository
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTodos(base repo.TodoRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Todos {
	if base == nil {
		panic("cache.NewTodos: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Todos{
		TodoRepository: base,
		redis:          client,
		ttl:            ttl,
		logger:         logger,
	}
}

func (c *Todos) FetchByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	if todos, ok := c.load(ctx, ownerID); ok {
		return todos, nil
	}

	gen, genOK := c.generation(ctx, ownerID)
	todos, err := c.TodoRepository.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if genOK {
		c.store(ctx, ownerID, gen, todos)
	}
	return todos, nil
}

func (c *Todos) Create(ctx context.Context, t model.Todo) error {
	if err := c.TodoRepository.Create(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, t.OwnerID)
	return nil
}

func (c *Todos) UpdateField(ctx context.Context, ownerID, id string, field model.TodoField, value any) error {
	if err := c.TodoRepository.UpdateField(ctx, ownerID, id, field, value); err != nil {
		return err
	}
	c.evict(ctx, ownerID)
	return nil
}

func (c *Todos) load(ctx context.Context, ownerID string) ([]model.Todo, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, todosKey(ownerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("todo cache read failed", zap.String("owner", ownerID), zap.Error(err))
			_ = c.redis.Del(ctx, todosKey(ownerID)).Err()
		}
		return nil, false
	}
	var todos []model.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		_ = c.redis.Del(ctx, todosKey(ownerID)).Err()
		return nil, false
	}
	return todos, true
}

var errStaleFill = errors.New("todo cache: evicted during fetch")

// generation reads the owner's eviction counter. A missing counter is
// generation zero.
func (c *Todos) generation(ctx context.Context, ownerID string) (int64, bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, genKey(ownerID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("todo cache generation read failed", zap.String("owner", ownerID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// store caches todos unless the owner was evicted after gen was read.
func (c *Todos) store(ctx context.Context, ownerID string, gen int64, todos []model.Todo) {
	data, err := json.Marshal(todos)
	if err != nil {
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(ownerID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, todosKey(ownerID), data, c.ttl)
			return nil
		})
		return err
	}, genKey(ownerID))

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("todo cache fill skipped", zap.String("owner", ownerID))
	default:
		c.logger.Warn("todo cache write failed", zap.String("owner", ownerID), zap.Error(err))
	}
}

func (c *Todos) evict(ctx context.Context, ownerID string) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(ownerID))
		pipe.Del(ctx, todosKey(ownerID))
		return nil
	})
	if err != nil {
		c.logger.Warn("todo cache evict failed", zap.String("owner", ownerID), zap.Error(err))
	}
}

func todosKey(ownerID string) string {
	return "todos:" + ownerID
}

func genKey(ownerID string) string {
	return "todos-gen:" + ownerID
}
