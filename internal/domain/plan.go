package domain

// EntryPlan is the output of the entry planner: a maker-style entry with
// protective stop and target. Immutable value, one per planning call.
type EntryPlan struct {
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`

	// WallAdjusted is set when the stop was re-anchored beyond an
	// order-book wall instead of the percentage baseline.
	WallAdjusted bool    `json:"wall_adjusted"`
	WallPrice    float64 `json:"wall_price,omitempty"`
}
