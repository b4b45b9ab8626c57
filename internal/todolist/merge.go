package todolist

import "github.com/BuzzLyutic/todo-notes-api/internal/model"

// Merge builds the collection that replaces prev after a reload returned
// fresh. Order and fields come from fresh, except IsDone: a todo already
// held in prev keeps the local flag, since a toggle confirmed a moment ago
// may not be visible in the fetched snapshot yet. Todos missing from fresh
// are dropped.
func Merge(prev, fresh []model.Todo) []model.Todo {
	held := make(map[string]bool, len(prev))
	for _, t := range prev {
		held[t.ID] = t.IsDone
	}

	merged := make([]model.Todo, 0, len(fresh))
	for _, t := range fresh {
		if done, ok := held[t.ID]; ok {
			t.IsDone = done
		}
		merged = append(merged, t)
	}
	return merged
}
