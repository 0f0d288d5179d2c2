package market

import (
	"context"
	"sync"
	"time"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
)

// MemoTrendOracle caches trend labels per symbol for a short TTL. The
// evaluator consults the oracle once per session per tick; without the memo
// every session on the same symbol would pay a kline fetch each second.
// Constructed once at process start and passed explicitly.
type MemoTrendOracle struct {
	inner TrendOracle
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]trendEntry
}

type trendEntry struct {
	trend domain.Trend
	at    time.Time
}

// NewMemoTrendOracle wraps an oracle with a TTL memo cache.
func NewMemoTrendOracle(inner TrendOracle, ttl time.Duration) *MemoTrendOracle {
	return &MemoTrendOracle{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]trendEntry),
	}
}

// ShortTermTrend returns the cached label when fresh, otherwise delegates.
// A delegate failure is not cached so the next call retries.
func (m *MemoTrendOracle) ShortTermTrend(ctx context.Context, symbol string) (domain.Trend, error) {
	m.mu.Lock()
	if e, ok := m.cache[symbol]; ok && time.Since(e.at) < m.ttl {
		m.mu.Unlock()
		return e.trend, nil
	}
	m.mu.Unlock()

	trend, err := m.inner.ShortTermTrend(ctx, symbol)
	if err != nil {
		return domain.TrendNeutral, err
	}

	m.mu.Lock()
	m.cache[symbol] = trendEntry{trend: trend, at: time.Now()}
	m.mu.Unlock()
	return trend, nil
}
