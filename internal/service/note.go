package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/notes"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
)

// Notifier announces that an owner's notes changed and lets callers wait
// for such announcements.
type Notifier interface {
	Publish(ctx context.Context, ownerID string) error
	Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, error)
}

type NoteService struct {
	repo   repo.NoteRepository
	notify Notifier
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

func NewNoteService(repo repo.NoteRepository, notify Notifier, logger *zap.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		notify: notify,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (s *NoteService) Create(ctx context.Context, ownerID string, n model.Note) (model.Note, error) {
	if n.Date == "" {
		n.Date = s.now().Format(notes.DayLayout)
	}
	if err := validateNote(n.Title, n.Category, &n.Date); err != nil {
		return n, err
	}

	n.ID = s.newID()
	n.OwnerID = ownerID
	if err := s.repo.Create(ctx, n); err != nil {
		return n, err
	}
	s.changed(ctx, ownerID)
	return n, nil
}

func (s *NoteService) Get(ctx context.Context, ownerID, id string) (model.Note, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *NoteService) List(ctx context.Context, ownerID string, f notes.Filter) ([]model.Note, error) {
	all, err := s.repo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return notes.Apply(all, f), nil
}

func (s *NoteService) Update(ctx context.Context, ownerID, id string, u model.NoteUpdate) (model.Note, error) {
	if err := validateNote(u.Title, u.Category, u.Date); err != nil {
		return model.Note{}, err
	}
	n, err := s.repo.Update(ctx, ownerID, id, u)
	if err != nil {
		return n, err
	}
	s.changed(ctx, ownerID)
	return n, nil
}

func (s *NoteService) SetPinned(ctx context.Context, ownerID, id string, pinned bool) error {
	if err := s.repo.SetPinned(ctx, ownerID, id, pinned); err != nil {
		return err
	}
	s.changed(ctx, ownerID)
	return nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.changed(ctx, ownerID)
	return nil
}

func (s *NoteService) OnDate(ctx context.Context, ownerID, day string) ([]model.Note, error) {
	if _, err := time.Parse(notes.DayLayout, day); err != nil {
		return nil, validationError("date must look like 2006-01-02")
	}
	all, err := s.repo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return notes.OnDate(all, day), nil
}

// Calendar lays out month ("YYYY-MM", or the current month when empty) with
// the days holding notes marked.
func (s *NoteService) Calendar(ctx context.Context, ownerID, month string) (notes.Month, error) {
	now := s.now()
	year, mon := now.Year(), now.Month()
	if month != "" {
		var err error
		if year, mon, err = notes.ParseMonth(month); err != nil {
			return notes.Month{}, validationError("%v", err)
		}
	}

	all, err := s.repo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return notes.Month{}, err
	}
	return notes.BuildMonth(year, mon, notes.Days(all), now), nil
}

// Watch streams the owner's notes: the current list first, then a fresh list
// after every change, until ctx is done. Fetch failures skip one snapshot.
func (s *NoteService) Watch(ctx context.Context, ownerID string) (<-chan []model.Note, error) {
	changes, err := s.notify.Subscribe(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	initial, err := s.repo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make(chan []model.Note, 1)
	out <- initial
	go func() {
		defer close(out)
		for range changes {
			snapshot, err := s.repo.FetchByOwner(ctx, ownerID)
			if err != nil {
				s.logger.Warn("note snapshot failed", zap.String("owner", ownerID), zap.Error(err))
				continue
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *NoteService) changed(ctx context.Context, ownerID string) {
	if err := s.notify.Publish(ctx, ownerID); err != nil {
		s.logger.Warn("note change not announced", zap.String("owner", ownerID), zap.Error(err))
	}
}

func validateNote(title string, category model.NoteCategory, date *string) error {
	if strings.TrimSpace(title) == "" {
		return validationError("title is required")
	}
	if !category.Valid() {
		return validationError("unknown category %q", category)
	}
	if date != nil {
		if len(*date) < len(notes.DayLayout) {
			return validationError("date must start with 2006-01-02")
		}
		if _, err := time.Parse(notes.DayLayout, (*date)[:len(notes.DayLayout)]); err != nil {
			return validationError("date must start with 2006-01-02")
		}
	}
	return nil
}
