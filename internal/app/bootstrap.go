// Package app wires the co-pilot together: config, logging, the advice
// journal and every collaborator the evaluator needs, constructed once and
// passed explicitly so each piece stays testable with fakes.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/yohannesjx/sniperterminal-sub001/internal/advisor"
	"github.com/yohannesjx/sniperterminal-sub001/internal/api"
	"github.com/yohannesjx/sniperterminal-sub001/internal/copilot"
	"github.com/yohannesjx/sniperterminal-sub001/internal/domain"
	"github.com/yohannesjx/sniperterminal-sub001/internal/feed"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra/binance"
	"github.com/yohannesjx/sniperterminal-sub001/internal/market"
	"github.com/yohannesjx/sniperterminal-sub001/internal/session"
	"github.com/yohannesjx/sniperterminal-sub001/internal/storage"
)

// Bootstrap holds everything the process runs.
type Bootstrap struct {
	Config    *infra.Config
	Journal   *storage.AdviceJournal
	Store     *session.Store
	Cache     *feed.Cache
	Evaluator *advisor.Evaluator
	Ingestion *infra.StreamWorker
	Server    *api.Server
}

// NewBootstrap builds the full object graph from config.
func NewBootstrap() (*Bootstrap, error) {
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(infra.NewLogger(cfg))

	journal, err := storage.NewAdviceJournal()
	if err != nil {
		return nil, err
	}
	slog.Info("✅ Advice journal ready (in-memory)")

	store := session.NewStore()
	cache := feed.NewCache(cfg.Advisor.WhaleNotionalUSD)

	rest := binance.NewMarketAdapter(cfg)
	trend := market.NewMemoTrendOracle(rest, 15*time.Second)

	evaluator := advisor.NewEvaluator(
		advisor.OptionsFromConfig(cfg),
		store, cache, rest, rest, trend,
		journalRelay(journal),
	)

	planner := advisor.NewPlanner(advisor.PlannerOptionsFromConfig(cfg), rest, rest, cfg.Advisor.DepthLevels)
	svc := copilot.NewService(store, planner, journal)

	stream := binance.NewTradeStreamHandler(cfg.API.Binance.WSURL, cfg.API.Binance.Symbols, cache)
	ingestion := infra.NewStreamWorker(stream)

	return &Bootstrap{
		Config:    cfg,
		Journal:   journal,
		Store:     store,
		Cache:     cache,
		Evaluator: evaluator,
		Ingestion: ingestion,
		Server:    api.NewServer(cfg.Server.Addr, svc),
	}, nil
}

// journalRelay records advice changes and logs them. This is also where an
// external push-delivery mechanism would hook in.
func journalRelay(journal *storage.AdviceJournal) func(domain.AdviceEvent) {
	return func(ev domain.AdviceEvent) {
		slog.Info("ADVICE_CHANGED",
			slog.String("session", ev.SessionID),
			slog.String("symbol", ev.Symbol),
			slog.String("advice", string(ev.Advice)),
			slog.String("reason", ev.Reason),
			slog.Float64("pnl_pct", ev.PnLPct))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := journal.Record(ctx, ev); err != nil {
			slog.Warn("JOURNAL_WRITE_FAILED", slog.Any("error", err))
		}
	}
}
