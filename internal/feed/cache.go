// Package feed holds the most recent qualifying large trade per instrument.
// Ingestion is the single writer; the advisory evaluator only reads.
package feed

import (
	"sync"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
)

// Cache keeps at most one qualifying trade per symbol: newer prints
// overwrite older ones, nothing is queued. Staleness is judged by the
// consumer from the trade timestamp; the cache itself never expires entries.
type Cache struct {
	threshold float64 // minimum notional to qualify

	mu     sync.RWMutex
	trades map[string]domain.QualifyingTrade
}

// NewCache creates a cache with the given notional threshold.
func NewCache(thresholdUSD float64) *Cache {
	return &Cache{
		threshold: thresholdUSD,
		trades:    make(map[string]domain.QualifyingTrade),
	}
}

// Ingest stores the trade if its notional clears the threshold, overwriting
// any previous entry for the symbol. Sub-threshold prints are dropped.
func (c *Cache) Ingest(trade domain.QualifyingTrade) {
	if trade.Notional <= c.threshold {
		return
	}

	c.mu.Lock()
	c.trades[trade.Symbol] = trade
	c.mu.Unlock()

	infra.MtxWhaleTrades.WithLabelValues(trade.Side).Inc()
}

// Lookup returns the cached qualifying trade for the symbol, if any.
func (c *Cache) Lookup(symbol string) (domain.QualifyingTrade, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.trades[symbol]
	return t, ok
}

// Threshold returns the configured notional threshold.
func (c *Cache) Threshold() float64 {
	return c.threshold
}
