package domain

import "time"

// AdviceLabel is the evaluator's current recommendation for a session.
type AdviceLabel string

const (
	AdviceHold AdviceLabel = "HOLD"
	AdviceWarn AdviceLabel = "WARN"
	AdviceTrim AdviceLabel = "TRIM"
	AdviceExit AdviceLabel = "EXIT"
)

// Trend is the directional label produced by the trend oracle.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// AdviceEvent is emitted whenever a session's advice label changes.
// Delivery layers (journal, push relay) subscribe to these instead of polling.
type AdviceEvent struct {
	SessionID string      `json:"session_id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Advice    AdviceLabel `json:"advice"`
	Reason    string      `json:"reason"`
	PnLPct    float64     `json:"pnl_pct"`
	At        time.Time   `json:"at"`
}
