package model

import "fmt"

type NoteCategory string

const (
	NoteCategoryNone    NoteCategory = ""
	NoteCategoryWork    NoteCategory = "Work"
	NoteCategoryHome    NoteCategory = "Home"
	NoteCategoryHealthy NoteCategory = "Healthy"
)

func (c NoteCategory) Valid() bool {
	switch c {
	case NoteCategoryNone, NoteCategoryWork, NoteCategoryHome, NoteCategoryHealthy:
		return true
	}
	return false
}

func ParseNoteCategory(s string) (NoteCategory, error) {
	c := NoteCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown note category %q", s)
	}
	return c, nil
}

// Note.Date starts with a YYYY-MM-DD day; anything after the first ten
// characters is kept but ignored for calendar lookups.
type Note struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"ownerId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	IsPinned    bool         `json:"isPinned"`
	Category    NoteCategory `json:"category"`
}

// Day returns the YYYY-MM-DD prefix of the note date.
func (n Note) Day() string {
	if len(n.Date) < 10 {
		return n.Date
	}
	return n.Date[:10]
}

type NoteUpdate struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    NoteCategory `json:"category"`
	Date        *string      `json:"date,omitempty"`
}
