package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/google/uuid"
)

// State is a snapshot of a Session. Results is never modified after a
// snapshot is published; later pages produce a new slice.
type State struct {
	Context   Context
	Results   []images.Image
	Exhausted bool
	Loading   bool
	Err       error
}

// Session owns one search: its result set, the single in-flight flag, and
// the generation that guards against stale responses.
type Session struct {
	engine System
	logger *slog.Logger

	mu          sync.Mutex
	generation  uuid.UUID
	state       State
	subscribers map[int]chan State
	nextSub     int
}

// NewSession creates an idle session over engine.
func NewSession(engine System, logger *slog.Logger) *Session {
	return &Session{
		engine:      engine,
		logger:      logger,
		subscribers: map[int]chan State{},
	}
}

// Start replaces the session's search with sc and loads its first page.
// A response arriving after a newer Start is discarded.
func (s *Session) Start(ctx context.Context, sc Context) error {
	s.mu.Lock()
	gen := uuid.New()
	s.generation = gen
	s.state = State{Context: sc, Loading: true}
	s.publish()
	s.mu.Unlock()

	res, err := s.engine.Start(ctx, sc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("discarding stale start", "query", sc.Query)
		return nil
	}

	s.state.Loading = false
	s.state.Err = err
	if err == nil {
		s.state.Results = res.Images
		s.state.Exhausted = res.Exhausted
	}
	s.publish()
	return err
}

// More loads the next page. It is a no-op while a load is in flight or
// once the search is exhausted. A response for a superseded search is discarded.
func (s *Session) More(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Loading || s.state.Exhausted {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	sc := s.state.Context
	current := s.state.Results
	s.state.Loading = true
	s.publish()
	s.mu.Unlock()

	res, err := s.engine.FetchMore(ctx, sc, current)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("discarding stale page", "query", sc.Query)
		return nil
	}

	s.state.Loading = false
	s.state.Err = err
	if err == nil {
		s.state.Results = res.Images
		s.state.Exhausted = res.Exhausted
	}
	s.publish()
	return err
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that always holds the latest snapshot.
// Intermediate snapshots may be skipped by slow readers. The returned
// func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan State, 1)
	ch <- s.state
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// publish must be called with s.mu held.
func (s *Session) publish() {
	snap := s.state
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
