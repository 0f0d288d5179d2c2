// Package copilot is the façade the presentation layer talks to. It exposes
// exactly the session-control surface: start, stop, snapshot, plan, wall
// advice and advice history. Everything else stays internal.
package copilot

import (
	"context"
	"fmt"

	"github.com/yohannesjx/sniperterminal-sub001/internal/advisor"
	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/session"
	"github.com/yohannesjx/sniperterminal-sub001/internal/storage"
)

// Service bundles the core operations for external consumers.
type Service struct {
	store   *session.Store
	planner *advisor.Planner
	journal *storage.AdviceJournal
}

// NewService creates the façade. The journal may be nil (history disabled).
func NewService(store *session.Store, planner *advisor.Planner, journal *storage.AdviceJournal) *Service {
	return &Service{store: store, planner: planner, journal: journal}
}

// StartSession begins tracking a position and returns the session id.
func (s *Service) StartSession(owner, symbol string, side domain.Side, entryPrice float64) (string, error) {
	return s.store.Start(owner, symbol, side, entryPrice)
}

// StopSession stops tracking. Unknown ids are a no-op.
func (s *Service) StopSession(id string) {
	s.store.Stop(id)
}

// GetSnapshot returns a consistent read-only copy of a session.
func (s *Service) GetSnapshot(id string) (domain.TradeSession, error) {
	snap, ok := s.store.Snapshot(id)
	if !ok {
		return domain.TradeSession{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return snap, nil
}

// PlanEntry computes an entry plan for a prospective position.
func (s *Service) PlanEntry(ctx context.Context, symbol string, side domain.Side) (domain.EntryPlan, error) {
	return s.planner.Plan(ctx, symbol, side)
}

// WallAdvice reports nearby order-book walls for a candidate entry.
func (s *Service) WallAdvice(ctx context.Context, symbol string, side domain.Side, candidateEntry float64) (string, error) {
	return s.planner.WallAdvice(ctx, symbol, side, candidateEntry)
}

// History returns the most recent advice transitions for a session.
func (s *Service) History(ctx context.Context, id string, limit int) ([]domain.AdviceEvent, error) {
	if s.journal == nil {
		return nil, nil
	}
	if _, ok := s.store.Snapshot(id); !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.journal.Recent(ctx, id, limit)
}
