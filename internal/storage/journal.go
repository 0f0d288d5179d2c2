// Package storage keeps the in-memory advice journal: every advice change
// the evaluator emits, queryable for session history. Nothing here outlives
// the process.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
)

// AdviceJournal records advice transitions in an in-memory SQLite database.
type AdviceJournal struct {
	db *sql.DB
}

// NewAdviceJournal opens the in-memory journal.
func NewAdviceJournal() (*AdviceJournal, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Every pooled connection would get its own :memory: database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS advice_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			advice TEXT NOT NULL,
			reason TEXT NOT NULL,
			pnl_pct REAL NOT NULL,
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_advice_session ON advice_events(session_id, id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create advice table: %w", err)
	}

	return &AdviceJournal{db: db}, nil
}

// Record appends one advice event.
func (j *AdviceJournal) Record(ctx context.Context, ev domain.AdviceEvent) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO advice_events (session_id, symbol, side, advice, reason, pnl_pct, at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ev.SessionID, ev.Symbol, string(ev.Side), string(ev.Advice), ev.Reason, ev.PnLPct, ev.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert advice event: %w", err)
	}
	return nil
}

// Recent returns up to limit advice events for a session, newest first.
func (j *AdviceJournal) Recent(ctx context.Context, sessionID string, limit int) ([]domain.AdviceEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT session_id, symbol, side, advice, reason, pnl_pct, at FROM advice_events WHERE session_id = ? ORDER BY id DESC LIMIT ?",
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query advice events: %w", err)
	}
	defer rows.Close()

	var events []domain.AdviceEvent
	for rows.Next() {
		var ev domain.AdviceEvent
		var side, advice string
		var atMillis int64
		if err := rows.Scan(&ev.SessionID, &ev.Symbol, &side, &advice, &ev.Reason, &ev.PnLPct, &atMillis); err != nil {
			return nil, fmt.Errorf("failed to scan advice event: %w", err)
		}
		ev.Side = domain.Side(side)
		ev.Advice = domain.AdviceLabel(advice)
		ev.At = time.UnixMilli(atMillis)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return events, nil
}

// Close closes the journal database.
func (j *AdviceJournal) Close() error {
	return j.db.Close()
}
