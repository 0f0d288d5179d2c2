package domain

import "time"

// Side is the direction of a tracked position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// PressureState is the whale-pressure hysteresis state of a session.
// A single large opposing print moves the session to building; only
// sustained pressure confirms an exit.
type PressureState int

const (
	PressureQuiet PressureState = iota
	PressureBuilding
	PressureConfirmed
)

func (p PressureState) String() string {
	switch p {
	case PressureQuiet:
		return "QUIET"
	case PressureBuilding:
		return "BUILDING"
	case PressureConfirmed:
		return "CONFIRMED"
	default:
		return "UNKNOWN"
	}
}

// TradeSession is one tracked position. The session store owns all instances;
// the evaluator mutates advice/reason/PnL/pressure under the store lock,
// everything else is fixed at creation.
type TradeSession struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	CreatedAt  time.Time `json:"created_at"`

	Advice AdviceLabel `json:"advice"`
	Reason string      `json:"reason"`
	PnLPct float64     `json:"pnl_pct"`

	Pressure      PressureState `json:"pressure"`
	PressureStart time.Time     `json:"pressure_start,omitempty"` // zero while quiet
}

// Age returns how long the session has been open.
func (s *TradeSession) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
