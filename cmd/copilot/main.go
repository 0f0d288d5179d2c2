package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yohannesjx/sniperterminal-sub001/internal/app"
	"github.com/yohannesjx/sniperterminal-sub001/internal/infra"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	bootstrap, err := app.NewBootstrap()
	if err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Journal.Close()

	infra.PrintBanner(bootstrap.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ingestion path: push-driven market data into the trade feed cache.
	bootstrap.Ingestion.Start(ctx)
	defer bootstrap.Ingestion.Stop()
	slog.Info("✅ Trade ingestion started",
		slog.Int("symbols", len(bootstrap.Config.API.Binance.Symbols)))

	// Advisory path: the fixed-interval evaluation loop.
	go bootstrap.Evaluator.Run(ctx)

	// Control surface for the mobile client, plus /metrics.
	go func() {
		if err := bootstrap.Server.Start(); err != nil {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.Info("✨ Co-pilot operational. Press Ctrl+C to exit.")
	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bootstrap.Server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("API shutdown incomplete", slog.Any("error", err))
	}
}
