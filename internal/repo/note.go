package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

const noteColumns = "id, owner_id, title, description, date, is_pinned, category"

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) Create(ctx context.Context, n model.Note) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notes (id, owner_id, title, description, date, is_pinned, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.OwnerID, n.Title, n.Description, n.Date, n.IsPinned, string(n.Category))
	return mapError(err)
}

func (r *NoteRepo) Get(ctx context.Context, ownerID, id string) (model.Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = $1 AND owner_id = $2", id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return n, ErrorNotFound
	}
	return n, err
}

func (r *NoteRepo) FetchByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE owner_id = $1 ORDER BY created_at, seq", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update rewrites title, description and category, and the date only when
// u.Date is set.
func (r *NoteRepo) Update(ctx context.Context, ownerID, id string, u model.NoteUpdate) (model.Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $3, description = $4, category = $5, date = COALESCE($6, date), updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+noteColumns,
		id, ownerID, u.Title, u.Description, string(u.Category), u.Date))
	if errors.Is(err, pgx.ErrNoRows) {
		return n, ErrorNotFound
	}
	return n, err
}

func (r *NoteRepo) SetPinned(ctx context.Context, ownerID, id string, pinned bool) error {
	cmd, err := r.pool.Exec(ctx,
		"UPDATE notes SET is_pinned = $3, updated_at = now() WHERE id = $1 AND owner_id = $2",
		id, ownerID, pinned)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *NoteRepo) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *NoteRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notes WHERE owner_id = $1", ownerID).Scan(&n)
	return n, err
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	var category string
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Description, &n.Date, &n.IsPinned, &category)
	n.Category = model.NoteCategory(category)
	return n, err
}
