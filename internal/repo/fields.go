package repo

import (
	"fmt"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

// applyField sets field on t, checking that value has the field's type.
func applyField(t *model.Todo, field model.TodoField, value any) error {
	switch field {
	case model.FieldTitle:
		v, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		t.Title = v
	case model.FieldIsDone:
		v, ok := value.(bool)
		if !ok {
			return fieldTypeError(field, value)
		}
		t.IsDone = v
	case model.FieldCategory:
		v, ok := value.(model.Category)
		if !ok {
			return fieldTypeError(field, value)
		}
		t.Category = v
	case model.FieldDueBucket:
		v, ok := value.(model.DueBucket)
		if !ok {
			return fieldTypeError(field, value)
		}
		t.DueBucket = v
	case model.FieldPriority:
		v, ok := value.(model.Priority)
		if !ok {
			return fieldTypeError(field, value)
		}
		t.Priority = v
	default:
		return fmt.Errorf("%w: %q", ErrorUnknownField, field)
	}
	return nil
}

// columnValue returns the column and the driver value for a field update.
func columnValue(field model.TodoField, value any) (string, any, error) {
	var scratch model.Todo
	if err := applyField(&scratch, field, value); err != nil {
		return "", nil, err
	}
	col := todoColumns[field]
	switch field {
	case model.FieldCategory:
		return col, string(scratch.Category), nil
	case model.FieldDueBucket:
		return col, string(scratch.DueBucket), nil
	case model.FieldPriority:
		return col, string(scratch.Priority), nil
	}
	return col, value, nil
}

func fieldTypeError(field model.TodoField, value any) error {
	return fmt.Errorf("%w: %q does not accept %T", ErrorUnknownField, field, value)
}
