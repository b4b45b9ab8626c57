package todolist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/worker"
)

// Store is the part of the task store a session talks to.
type Store interface {
	FetchByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	UpdateField(ctx context.Context, ownerID, id string, field model.TodoField, value any) error
}

// Executor runs a store call asynchronously and reports its outcome on the
// returned channel.
type Executor interface {
	Submit(ctx context.Context, job worker.Job) <-chan error
}

// Session is the in-memory todo collection of one owner, refreshed wholesale
// by Reload and patched in place by Toggle. Store calls run outside the lock,
// so two overlapping calls land in whatever order they complete.
type Session struct {
	ownerID string
	store   Store
	exec    Executor
	logger  *zap.Logger

	mu       sync.Mutex
	todos    []model.Todo
	lastUsed time.Time
}

func NewSession(ownerID string, store Store, exec Executor, logger *zap.Logger) *Session {
	return &Session{
		ownerID:  ownerID,
		store:    store,
		exec:     exec,
		logger:   logger.With(zap.String("owner", ownerID)),
		lastUsed: time.Now(),
	}
}

func (s *Session) OwnerID() string {
	return s.ownerID
}

// Reload fetches the owner's todos and merges them into the held collection.
// On failure the held collection stays as it was.
func (s *Session) Reload(ctx context.Context) error {
	fresh, err := s.store.FetchByOwner(ctx, s.ownerID)
	if err != nil {
		s.logger.Warn("reload todos failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.todos = Merge(s.todos, fresh)
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return nil
}

// Toggle writes isDone to the store and, once the write is confirmed,
// replaces the held copy at its position. Nothing changes locally on failure.
func (s *Session) Toggle(ctx context.Context, id string, done bool) error {
	if err := s.store.UpdateField(ctx, s.ownerID, id, model.FieldIsDone, done); err != nil {
		s.logger.Warn("update todo status failed", zap.String("todo_id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	for i := range s.todos {
		if s.todos[i].ID == id {
			updated := s.todos[i]
			updated.IsDone = done
			s.todos[i] = updated
			break
		}
	}
	return nil
}

// ReloadAsync and ToggleAsync hand the call to the executor. Once submitted
// the call runs to completion even if ctx is cancelled; only the caller's
// wait on the returned channel is bound to ctx.
func (s *Session) ReloadAsync(ctx context.Context) <-chan error {
	return s.exec.Submit(context.WithoutCancel(ctx), s.Reload)
}

func (s *Session) ToggleAsync(ctx context.Context, id string, done bool) <-chan error {
	return s.exec.Submit(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.Toggle(ctx, id, done)
	})
}

// View applies f to the held collection.
func (s *Session) View(f Filter) Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return FilterAndPartition(s.todos, f)
}

func (s *Session) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos...)
}

func (s *Session) Find(id string) (model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
