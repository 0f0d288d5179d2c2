package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/yohannesjx/sniperterminal-sub001/internal/advisor"
	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/feed"
	"github.com/yohannesjx/sniperterminal-sub001/internal/session"
)

// --- fakes ---

type fakeQuote struct {
	price     float64
	err       error
	panicking bool
}

func (f *fakeQuote) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if f.panicking {
		panic("quote adapter blew up")
	}
	return f.price, f.err
}

type fakeDepth struct {
	snap  domain.DepthSnapshot
	err   error
	calls int
}

func (f *fakeDepth) Depth(ctx context.Context, symbol string, levels int) (domain.DepthSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

type fakeTrend struct {
	trend domain.Trend
	err   error
}

func (f *fakeTrend) ShortTermTrend(ctx context.Context, symbol string) (domain.Trend, error) {
	return f.trend, f.err
}

// --- fixture ---

type fixture struct {
	store  *session.Store
	cache  *feed.Cache
	quote  *fakeQuote
	depth  *fakeDepth
	trend  *fakeTrend
	eval   *advisor.Evaluator
	now    time.Time
	events []domain.AdviceEvent
}

func defaultOptions() advisor.Options {
	return advisor.Options{
		Interval:          time.Second,
		WhaleNotional:     500_000,
		WhaleMaxAge:       60 * time.Second,
		PressureConfirm:   10 * time.Second,
		HardStopPct:       0.5,
		HardTargetPct:     0.5,
		ProfitLockPct:     0.2,
		FeeSaverPct:       0.1,
		FeeSaverMaxAge:    60 * time.Second,
		LiquidityBelowPct: 0.3,
		DepthLevels:       20,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: session.NewStore(),
		cache: feed.NewCache(500_000),
		quote: &fakeQuote{price: 100},
		depth: &fakeDepth{snap: domain.DepthSnapshot{
			Bids: []domain.BookLevel{{Price: 99.9, Qty: 10}},
			Asks: []domain.BookLevel{{Price: 100.1, Qty: 10}},
		}},
		trend: &fakeTrend{trend: domain.TrendNeutral},
		now:   time.Now(),
	}

	f.eval = advisor.NewEvaluator(defaultOptions(), f.store, f.cache,
		f.quote, f.depth, f.trend,
		func(ev domain.AdviceEvent) { f.events = append(f.events, ev) })
	f.eval.Now = func() time.Time { return f.now }
	return f
}

func (f *fixture) startLong(t *testing.T, entry float64) string {
	t.Helper()
	id, err := f.store.Start("user-1", "BTCUSDT", domain.SideLong, entry)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return id
}

func (f *fixture) tick() {
	f.eval.EvaluateAll(context.Background())
}

func (f *fixture) snap(t *testing.T, id string) domain.TradeSession {
	t.Helper()
	s, ok := f.store.Snapshot(id)
	if !ok {
		t.Fatalf("session %s vanished", id)
	}
	return s
}

// opposingWhale caches a sell print against a LONG at the given offset from
// the fixture clock.
func (f *fixture) opposingWhale(price, notional float64, at time.Time) {
	f.cache.Ingest(domain.QualifyingTrade{
		Symbol:    "BTCUSDT",
		Price:     price,
		Size:      notional / price,
		Notional:  notional,
		Side:      "sell",
		Exchange:  "BINANCE",
		Timestamp: at.UnixMilli(),
	})
}

// --- tests ---

func TestPnLSignMatchesSideAndDirection(t *testing.T) {
	f := newFixture(t)

	long := f.startLong(t, 100)
	short, err := f.store.Start("user-1", "ETHUSDT", domain.SideShort, 100)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	f.quote.price = 105
	f.tick()

	if got := f.snap(t, long).PnLPct; math.Abs(got-5) > 1e-9 {
		t.Errorf("LONG PnL = %v, want +5", got)
	}
	if got := f.snap(t, short).PnLPct; math.Abs(got-(-5)) > 1e-9 {
		t.Errorf("SHORT PnL = %v, want -5", got)
	}
}

func TestSkipWhenNoPriceResolves(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.err = errors.New("rest down")
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceHold || s.Reason != "initializing" {
		t.Errorf("advice must stay unchanged on a skipped tick, got %s/%s", s.Advice, s.Reason)
	}
	if len(f.events) != 0 {
		t.Errorf("no events expected, got %d", len(f.events))
	}
}

func TestWhalePrintResolvesPrice(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	// Same-side (buy) whale: fresher than the session, used as price,
	// never opposing a LONG.
	f.now = f.now.Add(2 * time.Second)
	f.cache.Ingest(domain.QualifyingTrade{
		Symbol: "BTCUSDT", Price: 100.05, Size: 6000, Notional: 600_300,
		Side: "buy", Timestamp: f.now.UnixMilli(),
	})
	f.quote.err = errors.New("rest down") // cache must be enough

	f.tick()

	s := f.snap(t, id)
	if math.Abs(s.PnLPct-0.05) > 1e-9 {
		t.Errorf("PnL = %v, want 0.05 (priced from the cached print)", s.PnLPct)
	}
	if s.Pressure != domain.PressureQuiet {
		t.Errorf("same-side whale must not build pressure, got %s", s.Pressure)
	}
}

func TestHysteresisBuildsThenConfirms(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	start := f.now.Add(2 * time.Second)
	f.now = start
	f.opposingWhale(100, 600_000, start.Add(-time.Second))
	f.quote.price = 100

	// T0: first sight of opposing pressure. Warn, do not exit.
	f.tick()
	s := f.snap(t, id)
	if s.Pressure != domain.PressureBuilding {
		t.Fatalf("Pressure = %s, want BUILDING", s.Pressure)
	}
	if s.Advice != domain.AdviceWarn {
		t.Fatalf("Advice = %s, want WARN while measuring", s.Advice)
	}
	if !s.PressureStart.Equal(start) {
		t.Errorf("PressureStart = %v, want %v", s.PressureStart, start)
	}

	// T+5s: still inside the confirm window.
	f.now = start.Add(5 * time.Second)
	f.tick()
	s = f.snap(t, id)
	if s.Advice != domain.AdviceWarn || s.Pressure != domain.PressureBuilding {
		t.Fatalf("at +5s: %s/%s, want WARN/BUILDING", s.Advice, s.Pressure)
	}

	// T+9.5s: never confirmed before 10 seconds have elapsed.
	f.now = start.Add(9500 * time.Millisecond)
	f.tick()
	if s = f.snap(t, id); s.Pressure == domain.PressureConfirmed {
		t.Fatal("confirmed before the 10s window elapsed")
	}

	// T+11s: sustained pressure confirms the exit.
	f.now = start.Add(11 * time.Second)
	f.tick()
	s = f.snap(t, id)
	if s.Advice != domain.AdviceExit || s.Pressure != domain.PressureConfirmed {
		t.Fatalf("at +11s: %s/%s, want EXIT/CONFIRMED", s.Advice, s.Pressure)
	}
	if !strings.Contains(s.Reason, "600000") {
		t.Errorf("exit reason should embed the whale notional, got %q", s.Reason)
	}
}

func TestHysteresisResetsWhenConditionClears(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	start := f.now.Add(2 * time.Second)
	f.now = start
	f.opposingWhale(100, 600_000, start.Add(-time.Second))

	f.tick()
	if s := f.snap(t, id); s.Pressure != domain.PressureBuilding {
		t.Fatalf("Pressure = %s, want BUILDING", s.Pressure)
	}

	// The print ages past 60s before the window closes: back to quiet.
	f.now = start.Add(65 * time.Second)
	f.tick()
	s := f.snap(t, id)
	if s.Pressure != domain.PressureQuiet {
		t.Fatalf("Pressure = %s, want QUIET after age-out", s.Pressure)
	}
	if !s.PressureStart.IsZero() {
		t.Error("PressureStart must be cleared on reset")
	}

	// A later opposing trade restarts the 10s window from scratch.
	restart := start.Add(70 * time.Second)
	f.now = restart
	f.opposingWhale(100, 800_000, restart.Add(-time.Second))
	f.tick()

	f.now = restart.Add(8 * time.Second)
	f.tick()
	if s := f.snap(t, id); s.Advice == domain.AdviceExit {
		t.Fatal("a restarted window must not resume the old timer")
	}

	f.now = restart.Add(11 * time.Second)
	f.tick()
	if s := f.snap(t, id); s.Advice != domain.AdviceExit {
		t.Fatalf("Advice = %s, want EXIT after the restarted window elapses", s.Advice)
	}
}

func TestWhaleExitOutranksProfitLock(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	start := f.now.Add(2 * time.Second)
	f.now = start
	// Opposing whale printing above entry: PnL +0.3% qualifies profit-lock
	// at the same time the whale machine is running.
	f.opposingWhale(100.3, 700_000, start.Add(-time.Second))

	f.tick()
	s := f.snap(t, id)
	if s.Advice != domain.AdviceTrim {
		t.Fatalf("while building, profit-lock should produce this tick's advice, got %s", s.Advice)
	}
	if s.Pressure != domain.PressureBuilding {
		t.Fatal("pressure bookkeeping must continue under higher-priority advice")
	}

	f.now = start.Add(11 * time.Second)
	f.tick()
	s = f.snap(t, id)
	if s.Advice != domain.AdviceExit || !strings.Contains(s.Reason, "700000") {
		t.Fatalf("confirmed whale exit must beat profit-lock, got %s %q", s.Advice, s.Reason)
	}
}

func TestHardStop(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 99.4 // -0.6%
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceExit || !strings.Contains(s.Reason, "stop") {
		t.Errorf("got %s %q, want EXIT stop-hit", s.Advice, s.Reason)
	}
}

func TestShortHardStopAnchorsOnEntry(t *testing.T) {
	f := newFixture(t)
	short, err := f.store.Start("user-1", "BTCUSDT", domain.SideShort, 100)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// (100 - 100.502) / 100 * 100 = -0.502%: just past the hard stop.
	// Dividing by the current price instead would land at -0.4995% and
	// miss the threshold.
	f.quote.price = 100.502
	f.tick()

	s := f.snap(t, short)
	if math.Abs(s.PnLPct-(-0.502)) > 1e-9 {
		t.Errorf("SHORT PnL = %v, want -0.502", s.PnLPct)
	}
	if s.Advice != domain.AdviceExit || !strings.Contains(s.Reason, "stop") {
		t.Errorf("got %s %q, want EXIT stop-hit", s.Advice, s.Reason)
	}
}

func TestHardTakeProfit(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 100.6 // +0.6%
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceExit || !strings.Contains(s.Reason, "take profit") {
		t.Errorf("got %s %q, want EXIT take-profit", s.Advice, s.Reason)
	}
}

func TestLiquidityThinWarning(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 99.6 // -0.4%: between the liquidity trigger and the hard stop
	f.depth.snap = domain.DepthSnapshot{
		Bids: []domain.BookLevel{{Price: 99.5, Qty: 4}},
		Asks: []domain.BookLevel{{Price: 99.7, Qty: 10}},
	}

	f.tick()
	s := f.snap(t, id)
	if s.Advice != domain.AdviceWarn || !strings.Contains(s.Reason, "thin") {
		t.Errorf("got %s %q, want WARN thin-liquidity", s.Advice, s.Reason)
	}
}

func TestDepthNotConsultedAboveTrigger(t *testing.T) {
	f := newFixture(t)
	f.startLong(t, 100)

	f.quote.price = 99.9 // -0.1%: above the -0.3% trigger
	f.tick()

	if f.depth.calls != 0 {
		t.Errorf("depth fetched %d times, want 0", f.depth.calls)
	}
}

func TestDepthFailureDegrades(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 99.6
	f.depth.err = fmt.Errorf("%w: depth down", domain.ErrUnavailable)

	f.tick()
	s := f.snap(t, id)
	if s.Advice == domain.AdviceExit {
		t.Errorf("depth failure must not escalate, got %s", s.Advice)
	}
	if math.Abs(s.PnLPct-(-0.4)) > 1e-9 {
		t.Errorf("PnL must still update, got %v", s.PnLPct)
	}
}

func TestTrendFlipWarning(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 99.9
	f.trend.trend = domain.TrendBearish

	f.tick()
	s := f.snap(t, id)
	if s.Advice != domain.AdviceWarn || !strings.Contains(s.Reason, "momentum") {
		t.Errorf("got %s %q, want WARN momentum-loss", s.Advice, s.Reason)
	}
}

func TestProfitLock(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 100.3
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceTrim {
		t.Errorf("Advice = %s, want TRIM at +0.3%%", s.Advice)
	}
}

func TestFeeSaverOnYoungSession(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 100.15 // +0.15%: above fee-saver, below profit-lock
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceWarn || !strings.Contains(s.Reason, "fees") {
		t.Errorf("got %s %q, want WARN fee-saver", s.Advice, s.Reason)
	}

	// An old session with the same PnL just ranges.
	f.now = f.now.Add(2 * time.Minute)
	f.tick()
	s = f.snap(t, id)
	if s.Advice != domain.AdviceHold {
		t.Errorf("fee-saver must not fire after %v, got %s", s.Age(f.now), s.Advice)
	}
}

func TestNeutralDefault(t *testing.T) {
	f := newFixture(t)
	id := f.startLong(t, 100)

	f.quote.price = 100.05
	f.tick()

	s := f.snap(t, id)
	if s.Advice != domain.AdviceHold || s.Reason != "ranging" {
		t.Errorf("got %s %q, want HOLD ranging", s.Advice, s.Reason)
	}
	if math.Abs(s.PnLPct-0.05) > 1e-9 {
		t.Errorf("PnL must update on a neutral tick, got %v", s.PnLPct)
	}
}

func TestAdviceEventsOnLabelChangeOnly(t *testing.T) {
	f := newFixture(t)
	f.startLong(t, 100)

	// HOLD(initializing) -> HOLD(ranging): label unchanged, no event.
	f.quote.price = 100.01
	f.tick()
	if len(f.events) != 0 {
		t.Fatalf("no event expected for a HOLD->HOLD tick, got %d", len(f.events))
	}

	// HOLD -> TRIM: one event.
	f.quote.price = 100.3
	f.tick()
	if len(f.events) != 1 || f.events[0].Advice != domain.AdviceTrim {
		t.Fatalf("expected one TRIM event, got %+v", f.events)
	}

	// TRIM -> TRIM: still one.
	f.tick()
	if len(f.events) != 1 {
		t.Errorf("repeated advice must not re-emit, got %d events", len(f.events))
	}
}

func TestPanicInOneSessionDoesNotKillTheTick(t *testing.T) {
	f := newFixture(t)

	// Session priced off the cache survives even when the quote adapter
	// panics for the session that needs it.
	f.startLong(t, 100)

	id2, _ := f.store.Start("user-2", "ETHUSDT", domain.SideLong, 100)
	f.now = f.now.Add(2 * time.Second)
	f.cache.Ingest(domain.QualifyingTrade{
		Symbol: "ETHUSDT", Price: 100.05, Size: 6000, Notional: 600_300,
		Side: "buy", Timestamp: f.now.UnixMilli(),
	})

	f.quote.panicking = true
	f.tick() // must not panic out

	if s := f.snap(t, id2); math.Abs(s.PnLPct-0.05) > 1e-9 {
		t.Errorf("healthy session must still be evaluated, PnL = %v", s.PnLPct)
	}
}
