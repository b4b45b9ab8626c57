package service

import (
	"context"
	"strings"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
)

type ProfileService struct {
	users repo.UserRepository
	todos repo.TodoRepository
	notes repo.NoteRepository
}

func NewProfileService(users repo.UserRepository, todos repo.TodoRepository, notes repo.NoteRepository) *ProfileService {
	return &ProfileService{users: users, todos: todos, notes: notes}
}

func (s *ProfileService) Get(ctx context.Context, ownerID string) (model.Profile, error) {
	u, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return model.Profile{}, err
	}
	noteCount, err := s.notes.CountByOwner(ctx, ownerID)
	if err != nil {
		return model.Profile{}, err
	}
	todoCount, err := s.todos.CountByOwner(ctx, ownerID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{User: u, NoteCount: noteCount, TodoCount: todoCount}, nil
}

func (s *ProfileService) Save(ctx context.Context, ownerID string, u model.User) (model.User, error) {
	u.ID = ownerID
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Name == "" {
		return u, validationError("name is required")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return u, validationError("invalid email")
	}
	return s.users.Upsert(ctx, u)
}

func (s *ProfileService) Rename(ctx context.Context, ownerID, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, validationError("name is required")
	}
	return s.users.UpdateName(ctx, ownerID, name)
}
