// Package advisor contains the advisory decision engine: the per-tick
// session evaluator with whale-pressure hysteresis, and the entry planner.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/feed"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
	"github.com/yohannesjx/sniperterminal-sub001/internal/market"
	"github.com/yohannesjx/sniperterminal-sub001/internal/session"
	"github.com/yohannesjx/sniperterminal-sub001/pkg/safe"
)

// Options are the evaluator thresholds. All percentages are in percent
// units: 0.5 means 0.5%.
type Options struct {
	Interval        time.Duration
	WhaleNotional   float64
	WhaleMaxAge     time.Duration
	PressureConfirm time.Duration

	HardStopPct    float64
	HardTargetPct  float64
	ProfitLockPct  float64
	FeeSaverPct    float64
	FeeSaverMaxAge time.Duration

	LiquidityBelowPct float64
	DepthLevels       int
}

// OptionsFromConfig maps the advisor config section to evaluator options.
func OptionsFromConfig(cfg *infra.Config) Options {
	return Options{
		Interval:          cfg.TickInterval(),
		WhaleNotional:     cfg.Advisor.WhaleNotionalUSD,
		WhaleMaxAge:       time.Duration(cfg.Advisor.WhaleMaxAgeSec) * time.Second,
		PressureConfirm:   time.Duration(cfg.Advisor.PressureConfirmSec) * time.Second,
		HardStopPct:       cfg.Advisor.HardStopPct,
		HardTargetPct:     cfg.Advisor.HardTargetPct,
		ProfitLockPct:     cfg.Advisor.ProfitLockPct,
		FeeSaverPct:       cfg.Advisor.FeeSaverPct,
		FeeSaverMaxAge:    time.Duration(cfg.Advisor.FeeSaverMaxAgeSec) * time.Second,
		LiquidityBelowPct: cfg.Advisor.LiquidityBelowPct,
		DepthLevels:       cfg.Advisor.DepthLevels,
	}
}

// Evaluator re-derives advice for every active session on a fixed period.
// All market fetches happen before the store lock is taken; results are
// written back atomically per session.
type Evaluator struct {
	opts   Options
	store  *session.Store
	cache  *feed.Cache
	quotes market.QuoteAdapter
	depth  market.DepthAdapter
	trend  market.TrendOracle

	// onAdvice fires when a session's advice label changes. May be nil.
	onAdvice func(domain.AdviceEvent)

	// Now is the evaluator clock, replaceable in tests.
	Now func() time.Time
}

// NewEvaluator wires the evaluator to its collaborators.
func NewEvaluator(opts Options, store *session.Store, cache *feed.Cache,
	quotes market.QuoteAdapter, depth market.DepthAdapter, trend market.TrendOracle,
	onAdvice func(domain.AdviceEvent)) *Evaluator {
	return &Evaluator{
		opts:     opts,
		store:    store,
		cache:    cache,
		quotes:   quotes,
		depth:    depth,
		trend:    trend,
		onAdvice: onAdvice,
		Now:      time.Now,
	}
}

// Run drives the periodic evaluation until the context is cancelled.
// No tick leaves a session half-updated: cancellation is only observed
// between sessions, and each write-back is atomic.
func (e *Evaluator) Run(ctx context.Context) {
	slog.Info("Advisory evaluator started", slog.Duration("interval", e.opts.Interval))

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Advisory evaluator stopping")
			return
		case <-ticker.C:
			e.EvaluateAll(ctx)
		}
	}
}

// EvaluateAll runs one evaluation pass over every active session.
// A panic or failure in one session never takes down the pass.
func (e *Evaluator) EvaluateAll(ctx context.Context) {
	defer infra.MtxEvalTicks.Inc()

	for _, sess := range e.store.List() {
		if ctx.Err() != nil {
			return
		}
		e.evaluateOne(ctx, sess)
	}
}

func (e *Evaluator) evaluateOne(ctx context.Context, sess domain.TradeSession) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("EVAL_PANIC_RECOVERED",
				slog.String("session", sess.ID),
				slog.Any("panic", r))
		}
	}()

	v, ok := e.evaluate(ctx, &sess)
	if !ok {
		infra.MtxSessionSkips.Inc()
		slog.Debug("EVAL_TICK_SKIPPED", slog.String("session", sess.ID), slog.String("symbol", sess.Symbol))
		return
	}

	var changed bool
	var ev domain.AdviceEvent
	applied := e.store.Apply(sess.ID, func(live *domain.TradeSession) {
		changed = live.Advice != v.advice
		live.Advice = v.advice
		live.Reason = v.reason
		live.PnLPct = v.pnl
		live.Pressure = v.pressure
		live.PressureStart = v.pressureStart
		if changed {
			ev = domain.AdviceEvent{
				SessionID: live.ID,
				Symbol:    live.Symbol,
				Side:      live.Side,
				Advice:    live.Advice,
				Reason:    live.Reason,
				PnLPct:    live.PnLPct,
				At:        e.Now(),
			}
		}
	})

	if applied && changed {
		infra.MtxAdvice.WithLabelValues(string(v.advice)).Inc()
		if e.onAdvice != nil {
			e.onAdvice(ev)
		}
	}
}

// verdict is the outcome of evaluating one session for one tick.
type verdict struct {
	advice        domain.AdviceLabel
	reason        string
	pnl           float64
	pressure      domain.PressureState
	pressureStart time.Time
}

// evaluate computes the verdict for a session. Returns ok=false when no
// price could be resolved; the session keeps its previous advice.
// All network fetches happen here, never under the store lock.
func (e *Evaluator) evaluate(ctx context.Context, sess *domain.TradeSession) (verdict, bool) {
	now := e.Now()

	whale, hasWhale := e.cache.Lookup(sess.Symbol)

	// Step 1: price resolution. The cached whale print is used when it is
	// fresher than the session itself; otherwise fall back to a live quote.
	var price float64
	if hasWhale && whale.Time().After(sess.CreatedAt) && safe.Positive(whale.Price) {
		price = whale.Price
	} else {
		p, err := e.quotes.LatestPrice(ctx, sess.Symbol)
		if err != nil || !safe.Positive(p) {
			return verdict{}, false
		}
		price = p
	}

	// Step 2: PnL, always relative to the entry price.
	var pnl float64
	if sess.Side == domain.SideLong {
		pnl = safe.Pct(price, sess.EntryPrice)
	} else {
		pnl = -safe.Pct(price, sess.EntryPrice)
	}

	// Step 3: whale-pressure state machine. Transitions are bookkept every
	// tick even when a higher-priority rule produces this tick's advice.
	opposing := hasWhale &&
		whale.Opposes(sess.Side) &&
		whale.Notional > e.opts.WhaleNotional &&
		whale.Age(now) <= e.opts.WhaleMaxAge

	pressure := sess.Pressure
	pressureStart := sess.PressureStart
	if opposing {
		switch sess.Pressure {
		case domain.PressureQuiet:
			pressure = domain.PressureBuilding
			pressureStart = now
		case domain.PressureBuilding, domain.PressureConfirmed:
			if now.Sub(sess.PressureStart) > e.opts.PressureConfirm {
				pressure = domain.PressureConfirmed
			}
		}
	} else {
		// Aged out or no longer opposite: a stale print must not pin the
		// session in alarm. The next opposing trade restarts the window.
		pressure = domain.PressureQuiet
		pressureStart = time.Time{}
	}

	v := verdict{pnl: pnl, pressure: pressure, pressureStart: pressureStart}

	// Priority ladder: first match wins.
	switch {
	case pressure == domain.PressureConfirmed:
		v.advice = domain.AdviceExit
		v.reason = fmt.Sprintf("opposing %s whale $%.0f sustained for over %ds, exit immediately",
			whale.Side, whale.Notional, int(e.opts.PressureConfirm.Seconds()))

	case pnl < -e.opts.HardStopPct:
		v.advice = domain.AdviceExit
		v.reason = fmt.Sprintf("stop hit: %.2f%% below entry", -pnl)

	case pnl > e.opts.HardTargetPct:
		v.advice = domain.AdviceExit
		v.reason = fmt.Sprintf("take profit: +%.2f%% reached", pnl)

	case pnl < -e.opts.LiquidityBelowPct && e.liquidityThin(ctx, sess):
		v.advice = domain.AdviceWarn
		v.reason = "high risk: order book support is thin on your side"

	case e.trendAgainst(ctx, sess):
		v.advice = domain.AdviceWarn
		v.reason = fmt.Sprintf("momentum loss: short-term trend turned against %s", sess.Side)

	case pnl > e.opts.ProfitLockPct:
		v.advice = domain.AdviceTrim
		v.reason = fmt.Sprintf("+%.2f%%: trim or move stop to break-even to lock profit", pnl)

	case sess.Age(now) < e.opts.FeeSaverMaxAge && pnl > e.opts.FeeSaverPct:
		v.advice = domain.AdviceWarn
		v.reason = "early gain: move resting order closer to market to save fees"

	case pressure == domain.PressureBuilding:
		remaining := e.opts.PressureConfirm - now.Sub(pressureStart)
		if remaining < 0 {
			remaining = 0
		}
		v.advice = domain.AdviceWarn
		v.reason = fmt.Sprintf("measuring opposing whale pressure: exit confirm in %ds",
			int(remaining.Seconds()+0.999))

	default:
		v.advice = domain.AdviceHold
		v.reason = "ranging"
	}

	return v, true
}

// liquidityThin fetches fresh depth and reports whether the protective side
// of the book holds less than half the opposing volume. A depth failure
// degrades to "not thin" rather than failing the tick.
func (e *Evaluator) liquidityThin(ctx context.Context, sess *domain.TradeSession) bool {
	snap, err := e.depth.Depth(ctx, sess.Symbol, e.opts.DepthLevels)
	if err != nil {
		infra.MtxAdapterErrors.WithLabelValues("depth").Inc()
		return false
	}

	bidVol := snap.BidVolume()
	askVol := snap.AskVolume()
	if sess.Side == domain.SideLong {
		return bidVol < askVol/2
	}
	return askVol < bidVol/2
}

// trendAgainst reports whether the short-term trend opposes the session.
// An oracle failure degrades to "no signal".
func (e *Evaluator) trendAgainst(ctx context.Context, sess *domain.TradeSession) bool {
	trend, err := e.trend.ShortTermTrend(ctx, sess.Symbol)
	if err != nil {
		infra.MtxAdapterErrors.WithLabelValues("trend").Inc()
		return false
	}
	return (sess.Side == domain.SideLong && trend == domain.TrendBearish) ||
		(sess.Side == domain.SideShort && trend == domain.TrendBullish)
}
