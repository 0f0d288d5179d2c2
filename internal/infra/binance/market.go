// Package binance implements the market-data collaborators against Binance
// futures: REST quote/depth/kline access and the aggTrade ingestion stream.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gobinance "github.com/adshao/go-binance/v2"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
)

// MarketAdapter is the REST-backed quote, depth and trend source. Calls go
// through a token bucket (request-weight bans are real) and a circuit
// breaker so a dead endpoint degrades ticks instead of stalling them.
type MarketAdapter struct {
	client  *gobinance.Client
	limiter *infra.RateLimiter
	breaker *infra.CircuitBreaker
}

// NewMarketAdapter builds the adapter from config. Keys may be empty; all
// consumed endpoints are public.
func NewMarketAdapter(cfg *infra.Config) *MarketAdapter {
	return &MarketAdapter{
		client:  gobinance.NewClient(cfg.API.Binance.AccessKey, cfg.API.Binance.SecretKey),
		limiter: infra.NewRateLimiter(20, 10),
		breaker: infra.NewCircuitBreaker("binance-rest", 5, 30*time.Second),
	}
}

// LatestPrice returns the last traded price for the symbol.
func (m *MarketAdapter) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if !m.breaker.Allow() {
		return 0, fmt.Errorf("%w: binance rest circuit open", domain.ErrUnavailable)
	}
	m.limiter.Wait()

	prices, err := m.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		m.breaker.RecordFailure()
		return 0, fmt.Errorf("%w: price fetch %s: %v", domain.ErrUnavailable, symbol, err)
	}
	if len(prices) == 0 {
		m.breaker.RecordFailure()
		return 0, fmt.Errorf("%w: no price returned for %s", domain.ErrUnavailable, symbol)
	}

	p, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		m.breaker.RecordFailure()
		return 0, fmt.Errorf("%w: bad price %q for %s", domain.ErrUnavailable, prices[0].Price, symbol)
	}

	m.breaker.RecordSuccess()
	return p, nil
}

// Depth returns a fresh order-book snapshot with up to levels per side.
func (m *MarketAdapter) Depth(ctx context.Context, symbol string, levels int) (domain.DepthSnapshot, error) {
	if !m.breaker.Allow() {
		return domain.DepthSnapshot{}, fmt.Errorf("%w: binance rest circuit open", domain.ErrUnavailable)
	}
	m.limiter.Wait()

	res, err := m.client.NewDepthService().Symbol(symbol).Limit(levels).Do(ctx)
	if err != nil {
		m.breaker.RecordFailure()
		return domain.DepthSnapshot{}, fmt.Errorf("%w: depth fetch %s: %v", domain.ErrUnavailable, symbol, err)
	}

	snap := domain.DepthSnapshot{
		Bids: make([]domain.BookLevel, 0, len(res.Bids)),
		Asks: make([]domain.BookLevel, 0, len(res.Asks)),
	}
	for _, b := range res.Bids {
		price, qty, err := b.Parse()
		if err != nil {
			continue
		}
		snap.Bids = append(snap.Bids, domain.BookLevel{Price: price, Qty: qty})
	}
	for _, a := range res.Asks {
		price, qty, err := a.Parse()
		if err != nil {
			continue
		}
		snap.Asks = append(snap.Asks, domain.BookLevel{Price: price, Qty: qty})
	}

	m.breaker.RecordSuccess()
	return snap, nil
}

// ShortTermTrend classifies the 1m trend by comparing EMA(9) against
// EMA(21) over recent closes. A small dead band keeps a flat tape neutral.
func (m *MarketAdapter) ShortTermTrend(ctx context.Context, symbol string) (domain.Trend, error) {
	if !m.breaker.Allow() {
		return domain.TrendNeutral, fmt.Errorf("%w: binance rest circuit open", domain.ErrUnavailable)
	}
	m.limiter.Wait()

	klines, err := m.client.NewKlinesService().Symbol(symbol).Interval("1m").Limit(30).Do(ctx)
	if err != nil {
		m.breaker.RecordFailure()
		return domain.TrendNeutral, fmt.Errorf("%w: kline fetch %s: %v", domain.ErrUnavailable, symbol, err)
	}
	m.breaker.RecordSuccess()

	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		c, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			continue
		}
		closes = append(closes, c)
	}

	return ClassifyTrend(closes), nil
}

// ClassifyTrend labels a close series by EMA(9) vs EMA(21) with a 0.02%
// dead band. Too few closes classify as neutral.
func ClassifyTrend(closes []float64) domain.Trend {
	if len(closes) < 21 {
		return domain.TrendNeutral
	}

	fast := ema(closes, 9)
	slow := ema(closes, 21)
	band := slow * 0.0002

	switch {
	case fast > slow+band:
		return domain.TrendBullish
	case fast < slow-band:
		return domain.TrendBearish
	default:
		return domain.TrendNeutral
	}
}

func ema(closes []float64, period int) float64 {
	k := 2.0 / float64(period+1)
	e := closes[0]
	for _, c := range closes[1:] {
		e = c*k + e*(1-k)
	}
	return e
}
