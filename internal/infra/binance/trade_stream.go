package binance

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/feed"
)

// TradeSink receives parsed trades from the stream. The feed cache filters
// for notional; the handler does not.
type TradeSink interface {
	Ingest(trade domain.QualifyingTrade)
}

var _ TradeSink = (*feed.Cache)(nil)

// combinedMsg is the combined-stream envelope.
type combinedMsg struct {
	Stream string        `json:"stream"`
	Data   aggTradeEvent `json:"data"`
}

// aggTradeEvent is the payload of an <symbol>@aggTrade stream event.
type aggTradeEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
	// IsBuyerMaker: the buyer was the resting order, so the aggressor sold.
	IsBuyerMaker bool `json:"m"`
}

// TradeStreamHandler turns Binance futures aggTrade events into qualifying
// trade candidates for the feed cache.
type TradeStreamHandler struct {
	baseURL string
	symbols []string
	sink    TradeSink
}

// NewTradeStreamHandler creates a handler subscribing the given symbols.
func NewTradeStreamHandler(baseURL string, symbols []string, sink TradeSink) *TradeStreamHandler {
	return &TradeStreamHandler{baseURL: baseURL, symbols: symbols, sink: sink}
}

// URL builds the combined-stream URL: /stream?streams=btcusdt@aggTrade/...
func (h *TradeStreamHandler) URL() string {
	streams := make([]string, 0, len(h.symbols))
	for _, s := range h.symbols {
		streams = append(streams, strings.ToLower(s)+"@aggTrade")
	}
	return h.baseURL + "?streams=" + strings.Join(streams, "/")
}

// OnConnect is a no-op: subscriptions ride in the URL.
func (h *TradeStreamHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnMessage parses one combined-stream frame and feeds the sink.
func (h *TradeStreamHandler) OnMessage(ctx context.Context, msg []byte) {
	var m combinedMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Debug("AGGTRADE_PARSE_SKIPPED", slog.Any("err", err))
		return
	}
	if m.Data.EventType != "aggTrade" || m.Data.Symbol == "" {
		return
	}

	price, err := strconv.ParseFloat(m.Data.Price, 64)
	if err != nil || price <= 0 {
		return
	}
	qty, err := strconv.ParseFloat(m.Data.Quantity, 64)
	if err != nil || qty <= 0 {
		return
	}

	side := "buy"
	if m.Data.IsBuyerMaker {
		side = "sell"
	}

	h.sink.Ingest(domain.QualifyingTrade{
		Symbol:    m.Data.Symbol,
		Price:     price,
		Size:      qty,
		Notional:  price * qty,
		Side:      side,
		Exchange:  "BINANCE",
		Timestamp: m.Data.TradeTime,
	})
}

// ID identifies the worker in logs.
func (h *TradeStreamHandler) ID() string {
	return "binance-aggtrade"
}
