package repo

import (
	"context"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

// TodoRepository is the task store. Todos are written with their final id
// and only ever change one field at a time.
type TodoRepository interface {
	Create(ctx context.Context, t model.Todo) error
	FetchByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	UpdateField(ctx context.Context, ownerID, id string, field model.TodoField, value any) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	SaveIdempotencyKey(ctx context.Context, ownerID, key, resourceID string) error
	GetIdempotencyKey(ctx context.Context, ownerID, key string) (string, error)
}

// NoteRepository stores notes.
type NoteRepository interface {
	Create(ctx context.Context, n model.Note) error
	Get(ctx context.Context, ownerID, id string) (model.Note, error)
	FetchByOwner(ctx context.Context, ownerID string) ([]model.Note, error)
	Update(ctx context.Context, ownerID, id string, u model.NoteUpdate) (model.Note, error)
	SetPinned(ctx context.Context, ownerID, id string, pinned bool) error
	Delete(ctx context.Context, ownerID, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// UserRepository stores user profiles.
type UserRepository interface {
	Get(ctx context.Context, id string) (model.User, error)
	Upsert(ctx context.Context, u model.User) (model.User, error)
	UpdateName(ctx context.Context, id, name string) (model.User, error)
}
