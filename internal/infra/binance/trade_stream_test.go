package binance

import (
	"context"
	"strings"
	"testing"

	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
)

type recordingSink struct {
	trades []domain.QualifyingTrade
}

func (r *recordingSink) Ingest(t domain.QualifyingTrade) {
	r.trades = append(r.trades, t)
}

func TestURLBuildsCombinedStream(t *testing.T) {
	h := NewTradeStreamHandler("wss://fstream.binance.com/stream",
		[]string{"BTCUSDT", "ethusdt"}, &recordingSink{})

	got := h.URL()
	want := "wss://fstream.binance.com/stream?streams=btcusdt@aggTrade/ethusdt@aggTrade"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestOnMessageParsesAggTrade(t *testing.T) {
	sink := &recordingSink{}
	h := NewTradeStreamHandler("wss://x", []string{"BTCUSDT"}, sink)

	frame := `{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","s":"BTCUSDT","p":"65000.50","q":"12.5","T":1717171717000,"m":false}}`
	h.OnMessage(context.Background(), []byte(frame))

	if len(sink.trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(sink.trades))
	}
	tr := sink.trades[0]
	if tr.Symbol != "BTCUSDT" || tr.Price != 65000.50 || tr.Size != 12.5 {
		t.Errorf("parsed fields wrong: %+v", tr)
	}
	if tr.Notional != 65000.50*12.5 {
		t.Errorf("Notional = %v, want %v", tr.Notional, 65000.50*12.5)
	}
	if tr.Side != "buy" {
		t.Errorf("aggressor side = %q, want buy when the buyer is the taker", tr.Side)
	}
	if tr.Exchange != "BINANCE" || tr.Timestamp != 1717171717000 {
		t.Errorf("exchange/timestamp wrong: %+v", tr)
	}
}

func TestOnMessageBuyerMakerMeansSell(t *testing.T) {
	sink := &recordingSink{}
	h := NewTradeStreamHandler("wss://x", []string{"BTCUSDT"}, sink)

	frame := `{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","s":"BTCUSDT","p":"65000","q":"1","T":1,"m":true}}`
	h.OnMessage(context.Background(), []byte(frame))

	if len(sink.trades) != 1 || sink.trades[0].Side != "sell" {
		t.Errorf("buyer-maker frame must ingest as a sell, got %+v", sink.trades)
	}
}

func TestOnMessageSkipsMalformedFrames(t *testing.T) {
	sink := &recordingSink{}
	h := NewTradeStreamHandler("wss://x", []string{"BTCUSDT"}, sink)

	frames := []string{
		`not json at all`,
		`{"stream":"x","data":{"e":"kline","s":"BTCUSDT","p":"1","q":"1"}}`,
		`{"stream":"x","data":{"e":"aggTrade","s":"","p":"1","q":"1"}}`,
		`{"stream":"x","data":{"e":"aggTrade","s":"BTCUSDT","p":"zero","q":"1"}}`,
		`{"stream":"x","data":{"e":"aggTrade","s":"BTCUSDT","p":"-5","q":"1"}}`,
		`{"stream":"x","data":{"e":"aggTrade","s":"BTCUSDT","p":"1","q":"0"}}`,
	}
	for _, f := range frames {
		h.OnMessage(context.Background(), []byte(f))
	}
	if len(sink.trades) != 0 {
		t.Errorf("malformed frames must be dropped, got %d trades", len(sink.trades))
	}
}

func TestClassifyTrend(t *testing.T) {
	rising := make([]float64, 30)
	falling := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 130 - float64(i)
		flat[i] = 100
	}

	if got := ClassifyTrend(rising); got != domain.TrendBullish {
		t.Errorf("rising closes = %v, want bullish", got)
	}
	if got := ClassifyTrend(falling); got != domain.TrendBearish {
		t.Errorf("falling closes = %v, want bearish", got)
	}
	if got := ClassifyTrend(flat); got != domain.TrendNeutral {
		t.Errorf("flat closes = %v, want neutral", got)
	}
	if got := ClassifyTrend(rising[:10]); got != domain.TrendNeutral {
		t.Errorf("short series = %v, want neutral", got)
	}
}

func TestHandlerID(t *testing.T) {
	h := NewTradeStreamHandler("wss://x", nil, &recordingSink{})
	if !strings.Contains(h.ID(), "binance") {
		t.Errorf("ID = %q", h.ID())
	}
}
