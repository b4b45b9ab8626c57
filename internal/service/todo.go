package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
	"github.com/BuzzLyutic/todo-notes-api/internal/todolist"
)

type TodoService struct {
	repo     repo.TodoRepository
	sessions *todolist.Registry
	logger   *zap.Logger
	newID    func() string
}

func NewTodoService(repo repo.TodoRepository, sessions *todolist.Registry, logger *zap.Logger) *TodoService {
	return &TodoService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Create stores a new todo under a freshly generated id. With a non-empty
// idempotency key a repeated request returns the todo created first.
func (s *TodoService) Create(ctx context.Context, ownerID string, t model.Todo, idempKey string) (model.Todo, error) {
	t = withDefaults(t)
	if err := s.validate(t); err != nil {
		return t, err
	}

	if idempKey != "" {
		if existingID, err := s.repo.GetIdempotencyKey(ctx, ownerID, idempKey); err == nil {
			return s.findOwned(ctx, ownerID, existingID)
		}
	}

	t.ID = s.newID()
	t.OwnerID = ownerID
	t.IsDone = false
	if err := s.repo.Create(ctx, t); err != nil {
		return t, err
	}

	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, ownerID, idempKey, t.ID); err != nil {
			s.logger.Warn("save idempotency key failed", zap.String("key", idempKey), zap.Error(err))
		}
	}
	return t, nil
}

// List reloads the owner's session and returns the filtered partition. A
// failed reload is logged and the previously held todos are used.
func (s *TodoService) List(ctx context.Context, ownerID string, f todolist.Filter) (todolist.Partition, error) {
	if err := ctx.Err(); err != nil {
		return todolist.Partition{}, err
	}
	session := s.sessions.Get(ownerID)
	if err := await(ctx, session.ReloadAsync(ctx)); err != nil {
		if ctx.Err() != nil {
			return todolist.Partition{}, ctx.Err()
		}
		s.logger.Warn("serving todos from last load", zap.String("owner", ownerID), zap.Error(err))
	}
	return session.View(f), nil
}

// SetStatus writes the completion flag and patches the owner's session once
// the store confirms.
func (s *TodoService) SetStatus(ctx context.Context, ownerID, id string, done bool) (model.Todo, error) {
	session := s.sessions.Get(ownerID)
	if err := await(ctx, session.ToggleAsync(ctx, id, done)); err != nil {
		return model.Todo{}, err
	}

	if t, ok := session.Find(id); ok {
		return t, nil
	}
	// Toggled before the session ever loaded it.
	return model.Todo{ID: id, OwnerID: ownerID, IsDone: done}, nil
}

// EndSession forgets the owner's in-memory todos.
func (s *TodoService) EndSession(ownerID string) {
	s.sessions.Drop(ownerID)
}

func (s *TodoService) findOwned(ctx context.Context, ownerID, id string) (model.Todo, error) {
	todos, err := s.repo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return model.Todo{}, err
	}
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Todo{}, repo.ErrorNotFound
}

func withDefaults(t model.Todo) model.Todo {
	if t.Category == "" {
		t.Category = model.CategoryPersonal
	}
	if t.DueBucket == "" {
		t.DueBucket = model.DueToday
	}
	if t.Priority == "" {
		t.Priority = model.PriorityLow
	}
	return t
}

func (s *TodoService) validate(t model.Todo) error {
	if strings.TrimSpace(t.Title) == "" {
		return validationError("title is required")
	}
	if !t.Category.Valid() {
		return validationError("unknown category %q", t.Category)
	}
	if !t.DueBucket.Valid() {
		return validationError("unknown due bucket %q", t.DueBucket)
	}
	if !t.Priority.Valid() {
		return validationError("unknown priority %q", t.Priority)
	}
	return nil
}
