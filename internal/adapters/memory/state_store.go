// Package memory provides an in-process console state store.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/domain/userlist"
)

// DefaultTTL is used when NewStateStore is given a non-positive ttl.
const DefaultTTL = 12 * time.Hour

// StateStore keeps session state in a map. Entries expire ttl after their last save.
type StateStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
}

type entry struct {
	state     userlist.State
	expiresAt time.Time
}

var _ core.StateStore = (*StateStore)(nil)

// NewStateStore creates an empty store.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StateStore{ttl: ttl, now: time.Now, sessions: make(map[string]entry)}
}

// WithClock swaps the clock; for tests.
func (s *StateStore) WithClock(now func() time.Time) *StateStore {
	s.now = now
	return s
}

// Load returns the state for session, or a fresh state if none is stored.
func (s *StateStore) Load(_ context.Context, session string) (userlist.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[session]
	if !ok {
		return userlist.New(), nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, session)
		return userlist.New(), nil
	}
	return e.state.Clone(), nil
}

// Save stores a copy of st and refreshes the session's expiry.
func (s *StateStore) Save(_ context.Context, session string, st userlist.State) error {
	if strings.TrimSpace(session) == "" {
		return errors.New("session id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	s.sessions[session] = entry{state: st.Clone(), expiresAt: now.Add(s.ttl)}
	return nil
}

// Delete forgets session. Unknown sessions are not an error.
func (s *StateStore) Delete(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
	return nil
}

// List returns live sessions ordered by id.
func (s *StateStore) List(_ context.Context) ([]core.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())
	out := make([]core.SessionInfo, 0, len(s.sessions))
	for id, e := range s.sessions {
		out = append(out, core.SessionInfo{
			ID:        id,
			Users:     e.state.Count(),
			Editing:   e.state.Form.Editing(),
			ExpiresAt: e.expiresAt,
		})
	}
	slices.SortFunc(out, func(a, b core.SessionInfo) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *StateStore) sweepLocked(now time.Time) {
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
