package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

type TodoRepo struct {
	pool *pgxpool.Pool
}

func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo {
	return &TodoRepo{
		pool: pool,
	}
}

func (r *TodoRepo) Create(ctx context.Context, t model.Todo) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO todos (id, owner_id, title, is_done, category, due_bucket, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.OwnerID, t.Title, t.IsDone, string(t.Category), string(t.DueBucket), string(t.Priority))
	return mapError(err)
}

// FetchByOwner returns the owner's todos in creation order.
func (r *TodoRepo) FetchByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, title, is_done, category, due_bucket, priority
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at, seq
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		var category, due, prio string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.IsDone, &category, &due, &prio); err != nil {
			return nil, err
		}
		t.Category = model.Category(category)
		t.DueBucket = model.DueBucket(due)
		t.Priority = model.Priority(prio)
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *TodoRepo) UpdateField(ctx context.Context, ownerID, id string, field model.TodoField, value any) error {
	col, v, err := columnValue(field, value)
	if err != nil {
		return err
	}

	// col comes from todoColumns, never from the caller.
	cmd, err := r.pool.Exec(ctx,
		"UPDATE todos SET "+col+" = $3, updated_at = now() WHERE id = $1 AND owner_id = $2",
		id, ownerID, v)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TodoRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM todos WHERE owner_id = $1", ownerID).Scan(&n)
	return n, err
}

func (r *TodoRepo) SaveIdempotencyKey(ctx context.Context, ownerID, key, resourceID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (owner_id, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, key) DO NOTHING
	`, ownerID, key, resourceID)
	return err
}

func (r *TodoRepo) GetIdempotencyKey(ctx context.Context, ownerID, key string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE owner_id = $1 AND key = $2
	`, ownerID, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrorNotFound
	}
	return id, err
}

var (
	_ TodoRepository = (*TodoRepo)(nil)
	_ NoteRepository = (*NoteRepo)(nil)
	_ UserRepository = (*UserRepo)(nil)
)
