package store

import (
	"context"
	"sync"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

// MemoryStore is an in-memory implementation of the session and state stores.
// It is primarily intended for tests and for hosts without durable storage.
type MemoryStore struct {
	mu       sync.RWMutex
	session  core.Session
	hasSess  bool
	state    core.CorrelationState
	hasState bool
}

var (
	_ ports.SessionStore = (*MemoryStore)(nil)
	_ ports.StateStore   = (*MemoryStore)(nil)
)

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveSession stores the session record.
func (s *MemoryStore) SaveSession(ctx context.Context, session core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.hasSess = true
	return nil
}

// LoadSession returns the stored session record, if any.
func (s *MemoryStore) LoadSession(ctx context.Context) (core.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSess {
		return core.Session{}, false, nil
	}
	return s.session, true, nil
}

// ClearSession removes the session record. Clearing an empty store is a no-op.
func (s *MemoryStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = core.Session{}
	s.hasSess = false
	return nil
}

// SaveState stores the correlation state for the in-flight attempt.
func (s *MemoryStore) SaveState(ctx context.Context, state core.CorrelationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.hasState = true
	return nil
}

// LoadState returns the stored correlation state, if any.
func (s *MemoryStore) LoadState(ctx context.Context) (core.CorrelationState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasState {
		return core.CorrelationState{}, false, nil
	}
	return s.state, true, nil
}

// ClearState removes the correlation state.
func (s *MemoryStore) ClearState(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = core.CorrelationState{}
	s.hasState = false
	return nil
}
