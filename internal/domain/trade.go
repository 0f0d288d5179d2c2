package domain

import "time"

// QualifyingTrade is a market print large enough to be signal, not noise.
// Only trades whose notional clears the large-trade threshold reach the feed cache.
type QualifyingTrade struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`     // Quantity in base asset
	Notional  float64 `json:"notional"` // USD value (Price × Size)
	Side      string  `json:"side"`     // "buy" or "sell"
	Exchange  string  `json:"exchange"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
}

// Time returns the trade timestamp as time.Time.
func (t *QualifyingTrade) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// Age returns how long ago the trade printed.
func (t *QualifyingTrade) Age(now time.Time) time.Duration {
	return now.Sub(t.Time())
}

// Opposes reports whether the trade side threatens the given position side.
// Sell pressure threatens a LONG, buy pressure threatens a SHORT.
func (t *QualifyingTrade) Opposes(side Side) bool {
	switch side {
	case SideLong:
		return t.Side == "sell"
	case SideShort:
		return t.Side == "buy"
	default:
		return false
	}
}
