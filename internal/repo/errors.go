package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

var (
	ErrorNotFound     = errors.New("not found")
	ErrorConflict     = errors.New("conflict")
	ErrorUnknownField = errors.New("unknown field")
)

// todoColumns maps updatable todo fields to their columns.
var todoColumns = map[model.TodoField]string{
	model.FieldTitle:     "title",
	model.FieldIsDone:    "is_done",
	model.FieldCategory:  "category",
	model.FieldDueBucket: "due_bucket",
	model.FieldPriority:  "priority",
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
