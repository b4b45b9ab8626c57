package model

import "fmt"

type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryTeam     Category = "Team"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryTeam:
		return true
	}
	return false
}

type DueBucket string

const (
	DueToday    DueBucket = "Today"
	DueTomorrow DueBucket = "Tomorrow"
)

func (d DueBucket) Valid() bool {
	switch d {
	case DueToday, DueTomorrow:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func ParseDueBucket(s string) (DueBucket, error) {
	d := DueBucket(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown due bucket %q", s)
	}
	return d, nil
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Todo is a user-owned unit of work. ID is assigned by the service before
// the record is written.
type Todo struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"isDone"`
	Category  Category  `json:"category"`
	DueBucket DueBucket `json:"dueBucket"`
	Priority  Priority  `json:"priority"`
}

// TodoField names a single updatable field of a Todo.
type TodoField string

const (
	FieldTitle     TodoField = "title"
	FieldIsDone    TodoField = "isDone"
	FieldCategory  TodoField = "category"
	FieldDueBucket TodoField = "dueBucket"
	FieldPriority  TodoField = "priority"
)
