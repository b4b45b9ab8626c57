package todolist

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

// Filter holds the optional constraints of a todo list view. A nil axis
// matches everything; an empty Search matches every title.
type Filter struct {
	Category  *model.Category
	DueBucket *model.DueBucket
	Priority  *model.Priority
	Search    string
}

type Partition struct {
	Incomplete []model.Todo `json:"incomplete"`
	Complete   []model.Todo `json:"complete"`
}

func (f Filter) Match(t model.Todo) bool {
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.DueBucket != nil && t.DueBucket != *f.DueBucket {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Search != "" && !containsFold(t.Title, f.Search) {
		return false
	}
	return true
}

// FilterAndPartition keeps the todos matching f and splits them by IsDone,
// preserving input order inside each group.
func FilterAndPartition(todos []model.Todo, f Filter) Partition {
	p := Partition{
		Incomplete: make([]model.Todo, 0),
		Complete:   make([]model.Todo, 0),
	}
	for _, t := range todos {
		if !f.Match(t) {
			continue
		}
		if t.IsDone {
			p.Complete = append(p.Complete, t)
		} else {
			p.Incomplete = append(p.Incomplete, t)
		}
	}
	return p
}

// containsFold reports whether substr is within s under Unicode case
// folding, so "ΟΔΟΣ" contains "οδος".
func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
