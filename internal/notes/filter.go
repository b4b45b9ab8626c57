package notes

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
)

// Filter selects notes by category and a case-insensitive title search.
// A nil Category means every category.
type Filter struct {
	Category *model.NoteCategory
	Search   string
}

func (f Filter) Match(n model.Note) bool {
	if f.Category != nil && n.Category != *f.Category {
		return false
	}
	if f.Search != "" && !containsFold(n.Title, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

// Apply returns the notes matching f, pinned notes first, otherwise in
// input order.
func Apply(all []model.Note, f Filter) []model.Note {
	out := make([]model.Note, 0, len(all))
	for _, n := range all {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPinned && !out[j].IsPinned
	})
	return out
}

// OnDate returns the notes whose date falls on day (YYYY-MM-DD).
func OnDate(all []model.Note, day string) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range all {
		if n.Day() == day {
			out = append(out, n)
		}
	}
	return out
}

// Days returns the set of days that have at least one note.
func Days(all []model.Note) map[string]bool {
	days := make(map[string]bool, len(all))
	for _, n := range all {
		days[n.Day()] = true
	}
	return days
}
