package advisor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
	"github.com/yohannesjx/sniperterminal-sub001/internal/market"
	"github.com/yohannesjx/sniperterminal-sub001/pkg/symbols"
)

var oneHundred = decimal.NewFromInt(100)

// PlannerOptions are the entry planner tunables, in percent units.
type PlannerOptions struct {
	EntryOffsetPct float64 // maker-style offset inside the quote
	StopLossPct    float64 // baseline adverse stop
	TakeProfitPct  float64 // baseline favorable target
	WallNotional   float64 // single-level notional that counts as a wall
	WallRangePct   float64 // wall must sit within this range of the entry
	WallStopBuffer float64 // price units placed beyond the wall
	WallAdvicePct  float64 // WallAdvice proximity window
}

// PlannerOptionsFromConfig maps the planner config section.
func PlannerOptionsFromConfig(cfg *infra.Config) PlannerOptions {
	return PlannerOptions{
		EntryOffsetPct: cfg.Planner.EntryOffsetPct,
		StopLossPct:    cfg.Planner.StopLossPct,
		TakeProfitPct:  cfg.Planner.TakeProfitPct,
		WallNotional:   cfg.Planner.WallNotionalUSD,
		WallRangePct:   cfg.Planner.WallRangePct,
		WallStopBuffer: cfg.Planner.WallStopBuffer,
		WallAdvicePct:  cfg.Planner.WallAdvicePct,
	}
}

// Planner produces one-shot entry plans for prospective positions.
// Level arithmetic runs on decimals; float dust on a stop level is not
// acceptable output for a screen a human will act on.
type Planner struct {
	opts   PlannerOptions
	quotes market.QuoteAdapter
	depth  market.DepthAdapter
	levels int // depth levels scanned for walls
}

// NewPlanner creates a planner over the given adapters.
func NewPlanner(opts PlannerOptions, quotes market.QuoteAdapter, depth market.DepthAdapter, depthLevels int) *Planner {
	return &Planner{opts: opts, quotes: quotes, depth: depth, levels: depthLevels}
}

// Plan computes entry, stop-loss and take-profit for a prospective position.
// A depth failure degrades to the percentage-only baseline; only a missing
// quote fails the call.
func (p *Planner) Plan(ctx context.Context, symbol string, side domain.Side) (domain.EntryPlan, error) {
	sym := symbols.Normalize(symbol)
	if sym == "" {
		return domain.EntryPlan{}, fmt.Errorf("%w: empty symbol", domain.ErrInvalidInput)
	}
	if !side.Valid() {
		return domain.EntryPlan{}, fmt.Errorf("%w: side must be LONG or SHORT", domain.ErrInvalidInput)
	}

	price, err := p.quotes.LatestPrice(ctx, sym)
	if err != nil {
		infra.MtxAdapterErrors.WithLabelValues("quote").Inc()
		return domain.EntryPlan{}, fmt.Errorf("%w: no price for %s: %v", domain.ErrUnavailable, sym, err)
	}
	if price <= 0 {
		return domain.EntryPlan{}, fmt.Errorf("%w: non-positive price for %s", domain.ErrUnavailable, sym)
	}

	quote := decimal.NewFromFloat(price)

	// Baseline: entry sits inside the quote, stop and target are fixed
	// percentages from the entry.
	var entry, stop, target decimal.Decimal
	if side == domain.SideLong {
		entry = applyPct(quote, -p.opts.EntryOffsetPct)
		stop = applyPct(entry, -p.opts.StopLossPct)
		target = applyPct(entry, p.opts.TakeProfitPct)
	} else {
		entry = applyPct(quote, p.opts.EntryOffsetPct)
		stop = applyPct(entry, p.opts.StopLossPct)
		target = applyPct(entry, -p.opts.TakeProfitPct)
	}

	plan := domain.EntryPlan{
		Symbol:     sym,
		Side:       side,
		Entry:      entry.InexactFloat64(),
		StopLoss:   stop.InexactFloat64(),
		TakeProfit: target.InexactFloat64(),
	}

	snap, err := p.depth.Depth(ctx, sym, p.levels)
	if err != nil {
		// Depth is an enhancement here, never a requirement.
		infra.MtxAdapterErrors.WithLabelValues("depth").Inc()
		return plan, nil
	}

	if wall, ok := p.findWall(&snap, side, plan.Entry, p.opts.WallRangePct); ok {
		// A real support/resistance wall anchors the stop better than a
		// fixed percentage: place it just beyond the wall.
		buffer := decimal.NewFromFloat(p.opts.WallStopBuffer)
		wallPx := decimal.NewFromFloat(wall.Price)
		if side == domain.SideLong {
			plan.StopLoss = wallPx.Sub(buffer).InexactFloat64()
		} else {
			plan.StopLoss = wallPx.Add(buffer).InexactFloat64()
		}
		plan.WallAdjusted = true
		plan.WallPrice = wall.Price
	}

	return plan, nil
}

// WallAdvice reports whether a large wall sits within the advice window of
// a candidate entry price. Informational only, no state.
func (p *Planner) WallAdvice(ctx context.Context, symbol string, side domain.Side, candidateEntry float64) (string, error) {
	sym := symbols.Normalize(symbol)
	if sym == "" || !side.Valid() || candidateEntry <= 0 {
		return "", fmt.Errorf("%w: bad wall advice request", domain.ErrInvalidInput)
	}

	snap, err := p.depth.Depth(ctx, sym, p.levels)
	if err != nil {
		infra.MtxAdapterErrors.WithLabelValues("depth").Inc()
		return "", fmt.Errorf("%w: no depth for %s: %v", domain.ErrUnavailable, sym, err)
	}

	wall, ok := p.findWall(&snap, side, candidateEntry, p.opts.WallAdvicePct)
	if !ok {
		return fmt.Sprintf("%s: no significant wall within %.2f%% of %.4f",
			sym, p.opts.WallAdvicePct, candidateEntry), nil
	}

	kind := "support"
	if side == domain.SideShort {
		kind = "resistance"
	}
	return fmt.Sprintf("%s: %s wall of $%.0f at %.4f within %.2f%% of %.4f",
		sym, kind, wall.Notional(), wall.Price, p.opts.WallAdvicePct, candidateEntry), nil
}

// findWall scans the protective side of the book for the first ranked level
// whose notional clears the wall threshold within rangePct of the reference
// price: below it for a LONG (support), above it for a SHORT (resistance).
// Levels are ranked best-first, so the first hit is the nearest wall.
func (p *Planner) findWall(snap *domain.DepthSnapshot, side domain.Side, ref float64, rangePct float64) (domain.BookLevel, bool) {
	band := ref * rangePct / 100

	if side == domain.SideLong {
		for _, l := range snap.Bids {
			if l.Price >= ref {
				continue // at or above entry, not protective
			}
			if ref-l.Price > band {
				break // bids are descending, everything further is out of range
			}
			if l.Notional() > p.opts.WallNotional {
				return l, true
			}
		}
		return domain.BookLevel{}, false
	}

	for _, l := range snap.Asks {
		if l.Price <= ref {
			continue
		}
		if l.Price-ref > band {
			break // asks are ascending
		}
		if l.Notional() > p.opts.WallNotional {
			return l, true
		}
	}
	return domain.BookLevel{}, false
}

// applyPct returns v shifted by pct percent (pct may be negative).
func applyPct(v decimal.Decimal, pct float64) decimal.Decimal {
	factor := decimal.NewFromFloat(1).Add(decimal.NewFromFloat(pct).Div(oneHundred))
	return v.Mul(factor)
}
