package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the co-pilot. Registered on the default registry
// and served from the API mux at /metrics.
var (
	MtxEvalTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "copilot_eval_ticks_total",
		Help: "Evaluation ticks completed",
	})

	MtxAdvice = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_advice_total",
		Help: "Advice transitions by label",
	}, []string{"label"})

	MtxSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "copilot_active_sessions",
		Help: "Currently tracked sessions",
	})

	MtxWhaleTrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_whale_trades_total",
		Help: "Qualifying large trades ingested, by side",
	}, []string{"side"})

	MtxAdapterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_adapter_errors_total",
		Help: "External adapter failures by adapter",
	}, []string{"adapter"})

	MtxSessionSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "copilot_session_skips_total",
		Help: "Sessions skipped for a tick because no price resolved",
	})
)
