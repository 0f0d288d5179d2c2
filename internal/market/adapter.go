// Package market declares the contracts the co-pilot core consumes from
// exchange collaborators. Implementations live in infra; the evaluator and
// planner only ever see these interfaces so tests can inject fakes.
package market

import (
	"context"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
)

// QuoteAdapter resolves the latest traded price for a symbol.
// Failures wrap domain.ErrUnavailable.
type QuoteAdapter interface {
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// DepthAdapter fetches a fresh order-book snapshot with up to the given
// number of ranked levels per side. Failures wrap domain.ErrUnavailable.
type DepthAdapter interface {
	Depth(ctx context.Context, symbol string, levels int) (domain.DepthSnapshot, error)
}

// TrendOracle classifies the short-term trend of a symbol. An oracle that
// cannot decide returns TrendNeutral rather than an error where possible.
type TrendOracle interface {
	ShortTermTrend(ctx context.Context, symbol string) (domain.Trend, error)
}
