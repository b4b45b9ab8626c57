package repo

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

var (
	_ TodoRepository = (*MemoryTodos)(nil)
	_ NoteRepository = (*MemoryNotes)(nil)
	_ UserRepository = (*MemoryUsers)(nil)
)

// Memory keeps todos, notes and users in process, served through the
// Todos, Notes and Users views. Records come back in insertion order.
type Memory struct {
	mu     sync.RWMutex
	todos  []model.Todo
	notes  []model.Note
	users  map[string]model.User
	idempo map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]model.User),
		idempo: make(map[string]string),
	}
}

func (m *Memory) Todos() *MemoryTodos { return &MemoryTodos{m} }

func (m *Memory) Notes() *MemoryNotes { return &MemoryNotes{m} }

func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m} }

type MemoryTodos struct{ m *Memory }

func (r *MemoryTodos) Create(_ context.Context, t model.Todo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.todos {
		if existing.ID == t.ID {
			return ErrorConflict
		}
	}
	r.m.todos = append(r.m.todos, t)
	return nil
}

func (r *MemoryTodos) FetchByOwner(_ context.Context, ownerID string) ([]model.Todo, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.Todo, 0)
	for _, t := range r.m.todos {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryTodos) UpdateField(_ context.Context, ownerID, id string, field model.TodoField, value any) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.todos {
		t := &r.m.todos[i]
		if t.ID == id && t.OwnerID == ownerID {
			return applyField(t, field, value)
		}
	}
	if _, _, err := columnValue(field, value); err != nil {
		return err
	}
	return ErrorNotFound
}

func (r *MemoryTodos) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	todos, err := r.FetchByOwner(ctx, ownerID)
	return len(todos), err
}

func (r *MemoryTodos) SaveIdempotencyKey(_ context.Context, ownerID, key, resourceID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.idempo[ownerID+"/"+key]; !ok {
		r.m.idempo[ownerID+"/"+key] = resourceID
	}
	return nil
}

func (r *MemoryTodos) GetIdempotencyKey(_ context.Context, ownerID, key string) (string, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.idempo[ownerID+"/"+key]
	if !ok {
		return "", ErrorNotFound
	}
	return id, nil
}

type MemoryNotes struct{ m *Memory }

func (r *MemoryNotes) Create(_ context.Context, n model.Note) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.notes {
		if existing.ID == n.ID {
			return ErrorConflict
		}
	}
	r.m.notes = append(r.m.notes, n)
	return nil
}

func (r *MemoryNotes) Get(_ context.Context, ownerID, id string) (model.Note, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if i := r.index(ownerID, id); i >= 0 {
		return r.m.notes[i], nil
	}
	return model.Note{}, ErrorNotFound
}

func (r *MemoryNotes) FetchByOwner(_ context.Context, ownerID string) ([]model.Note, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.Note, 0)
	for _, n := range r.m.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *MemoryNotes) Update(_ context.Context, ownerID, id string, u model.NoteUpdate) (model.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := r.index(ownerID, id)
	if i < 0 {
		return model.Note{}, ErrorNotFound
	}
	n := &r.m.notes[i]
	n.Title = u.Title
	n.Description = u.Description
	n.Category = u.Category
	if u.Date != nil {
		n.Date = *u.Date
	}
	return *n, nil
}

func (r *MemoryNotes) SetPinned(_ context.Context, ownerID, id string, pinned bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := r.index(ownerID, id)
	if i < 0 {
		return ErrorNotFound
	}
	r.m.notes[i].IsPinned = pinned
	return nil
}

func (r *MemoryNotes) Delete(_ context.Context, ownerID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := r.index(ownerID, id)
	if i < 0 {
		return ErrorNotFound
	}
	r.m.notes = append(r.m.notes[:i], r.m.notes[i+1:]...)
	return nil
}

func (r *MemoryNotes) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	notes, err := r.FetchByOwner(ctx, ownerID)
	return len(notes), err
}

// index must be called with the lock held.
func (r *MemoryNotes) index(ownerID, id string) int {
	for i, n := range r.m.notes {
		if n.ID == id && n.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Get(_ context.Context, id string) (model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return model.User{}, ErrorNotFound
	}
	return u, nil
}

func (r *MemoryUsers) Upsert(_ context.Context, u model.User) (model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[u.ID] = u
	return u, nil
}

func (r *MemoryUsers) UpdateName(_ context.Context, id, name string) (model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return model.User{}, ErrorNotFound
	}
	u.Name = name
	r.m.users[id] = u
	return u, nil
}
