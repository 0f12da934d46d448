package search

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/kahuna/internal/metrics"
	"github.com/JaimeStill/kahuna/pkg/lifecycle"
	"github.com/google/uuid"
)

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry holds the live sessions of the server, keyed by id.
type Registry struct {
	engine System
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

// NewRegistry creates an empty registry whose sessions share engine.
func NewRegistry(engine System, logger *slog.Logger) *Registry {
	return &Registry{
		engine:   engine,
		logger:   logger.With("system", "search-sessions"),
		now:      time.Now,
		sessions: map[uuid.UUID]*entry{},
	}
}

// Create registers a new idle session.
func (r *Registry) Create() (uuid.UUID, *Session) {
	id := uuid.New()
	s := NewSession(r.engine, r.logger.With("session", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &entry{session: s, lastUsed: r.now()}
	metrics.SetSearchSessions(len(r.sessions))
	return id, s
}

// Get returns the session for id and marks it used.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastUsed = r.now()
	return e.session, nil
}

// Remove drops the session for id.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	metrics.SetSearchSessions(len(r.sessions))
}

// Sweep removes sessions idle for longer than maxIdle and returns how many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}

	metrics.SetSearchSessions(len(r.sessions))
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Start sweeps idle sessions every interval until the coordinator shuts down.
func (r *Registry) Start(lc *lifecycle.Coordinator, ttl, interval time.Duration) {
	lc.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				if n := r.Sweep(ttl); n > 0 {
					r.logger.Info("swept idle sessions", "removed", n, "live", r.Len())
				}
			}
		}
	})
}
