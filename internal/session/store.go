// Package session owns the lifetime of tracked positions. The store guards
// all sessions with one mutex; the evaluation tick finishes well under the
// tick interval because no network call ever happens under the lock.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
	"github.com/yohannesjx/sniperterminal-sub001/pkg/safe"
	"github.com/yohannesjx/sniperterminal-sub001/pkg/symbols"
)

// Store is the concurrent registry of trade sessions. External callers may
// only create, destroy and snapshot; all content mutation goes through the
// evaluator via Apply.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.TradeSession
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*domain.TradeSession)}
}

// Start creates a session for a position and returns its identifier.
// The symbol is normalized before storage. Fails only on malformed input.
func (s *Store) Start(owner, symbol string, side domain.Side, entryPrice float64) (string, error) {
	sym := symbols.Normalize(symbol)
	if sym == "" {
		return "", fmt.Errorf("%w: empty symbol", domain.ErrInvalidInput)
	}
	if !side.Valid() {
		return "", fmt.Errorf("%w: side must be LONG or SHORT, got %q", domain.ErrInvalidInput, side)
	}
	if !safe.Positive(entryPrice) {
		return "", fmt.Errorf("%w: entry price must be positive, got %v", domain.ErrInvalidInput, entryPrice)
	}

	sess := &domain.TradeSession{
		ID:         uuid.NewString(),
		Owner:      owner,
		Symbol:     sym,
		Side:       side,
		EntryPrice: entryPrice,
		CreatedAt:  time.Now(),
		Advice:     domain.AdviceHold,
		Reason:     "initializing",
		Pressure:   domain.PressureQuiet,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	infra.MtxSessions.Set(float64(n))
	return sess.ID, nil
}

// Stop removes a session. Idempotent: stopping an unknown id is a no-op.
func (s *Store) Stop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	infra.MtxSessions.Set(float64(n))
}

// Snapshot returns a consistent copy of a session for external consumers.
func (s *Store) Snapshot(id string) (domain.TradeSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.TradeSession{}, false
	}
	return *sess, true
}

// List returns copies of all active sessions, in no particular order.
// The evaluator works from these copies and writes results back via Apply.
func (s *Store) List() []domain.TradeSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TradeSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out
}

// Apply runs fn on the live session under the store lock so the written
// advice/reason/PnL/pressure fields are visible atomically. Returns false
// when the session was stopped in the meantime.
func (s *Store) Apply(id string, fn func(*domain.TradeSession)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
