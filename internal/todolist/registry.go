package todolist

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry keeps one Session per owner for as long as the owner is active.
type Registry struct {
	store  Store
	exec   Executor
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store Store, exec Executor, logger *zap.Logger) *Registry {
	return &Registry{
		store:    store,
		exec:     exec,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Get returns the owner's session, creating an empty one on first use.
func (r *Registry) Get(ownerID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[ownerID]
	if !ok {
		s = NewSession(ownerID, r.store, r.exec, r.logger)
		r.sessions[ownerID] = s
	}
	return s
}

func (r *Registry) Drop(ownerID string) {
	r.mu.Lock()
	delete(r.sessions, ownerID)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions unused for longer than idle and reports how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for owner, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			r.logger.Debug("dropping idle session", zap.String("owner", s.OwnerID()))
			delete(r.sessions, owner)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("swept idle sessions", zap.Int("removed", removed))
	}
	return removed
}
