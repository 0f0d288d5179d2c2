package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the co-pilot. Secrets can be overridden
// through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Advisor struct {
		TickIntervalMS     int     `yaml:"tick_interval_ms"`
		WhaleNotionalUSD   float64 `yaml:"whale_notional_usd"`
		WhaleMaxAgeSec     int     `yaml:"whale_max_age_sec"`
		PressureConfirmSec int     `yaml:"pressure_confirm_sec"`
		HardStopPct        float64 `yaml:"hard_stop_pct"`   // exit when PnL < -x
		HardTargetPct      float64 `yaml:"hard_target_pct"` // exit when PnL > +x
		ProfitLockPct      float64 `yaml:"profit_lock_pct"` // trim when PnL > +x
		FeeSaverPct        float64 `yaml:"fee_saver_pct"`   // nudge entry when PnL > +x
		FeeSaverMaxAgeSec  int     `yaml:"fee_saver_max_age_sec"`
		LiquidityBelowPct  float64 `yaml:"liquidity_below_pct"` // check depth when PnL < -x
		DepthLevels        int     `yaml:"depth_levels"`
	} `yaml:"advisor"`

	Planner struct {
		EntryOffsetPct  float64 `yaml:"entry_offset_pct"`
		StopLossPct     float64 `yaml:"stop_loss_pct"`
		TakeProfitPct   float64 `yaml:"take_profit_pct"`
		WallNotionalUSD float64 `yaml:"wall_notional_usd"`
		WallRangePct    float64 `yaml:"wall_range_pct"`
		WallStopBuffer  float64 `yaml:"wall_stop_buffer"` // price units beyond the wall
		WallAdvicePct   float64 `yaml:"wall_advice_pct"`
	} `yaml:"planner"`

	API struct {
		Binance struct {
			WSURL     string   `yaml:"ws_url"`
			AccessKey string   `yaml:"access_key"`
			SecretKey string   `yaml:"secret_key"`
			Symbols   []string `yaml:"symbols"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a config with every advisor and planner threshold
// set to its production default. A missing config file is usable as-is.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "sniper-copilot"
	cfg.App.Version = "dev"

	cfg.Advisor.TickIntervalMS = 1000
	cfg.Advisor.WhaleNotionalUSD = 500_000
	cfg.Advisor.WhaleMaxAgeSec = 60
	cfg.Advisor.PressureConfirmSec = 10
	cfg.Advisor.HardStopPct = 0.5
	cfg.Advisor.HardTargetPct = 0.5
	cfg.Advisor.ProfitLockPct = 0.2
	cfg.Advisor.FeeSaverPct = 0.1
	cfg.Advisor.FeeSaverMaxAgeSec = 60
	cfg.Advisor.LiquidityBelowPct = 0.3
	cfg.Advisor.DepthLevels = 20

	cfg.Planner.EntryOffsetPct = 0.01
	cfg.Planner.StopLossPct = 0.15
	cfg.Planner.TakeProfitPct = 0.3
	cfg.Planner.WallNotionalUSD = 500_000
	cfg.Planner.WallRangePct = 1.0
	cfg.Planner.WallStopBuffer = 5.0
	cfg.Planner.WallAdvicePct = 0.2

	cfg.API.Binance.WSURL = "wss://fstream.binance.com/stream"
	cfg.API.Binance.Symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}

	cfg.Server.Addr = "localhost:8087"
	cfg.Logging.Level = "info"
	return &cfg
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration sanity before anything starts.
func (c *Config) Validate() error {
	if c.Advisor.TickIntervalMS <= 0 {
		return fmt.Errorf("advisor tick interval must be positive")
	}
	if c.Advisor.WhaleNotionalUSD <= 0 {
		return fmt.Errorf("whale notional threshold must be positive")
	}
	if c.Advisor.PressureConfirmSec <= 0 || c.Advisor.WhaleMaxAgeSec <= 0 {
		return fmt.Errorf("pressure windows must be positive")
	}
	if c.Advisor.DepthLevels <= 0 {
		return fmt.Errorf("depth levels must be positive")
	}
	if c.Planner.StopLossPct <= 0 || c.Planner.TakeProfitPct <= 0 {
		return fmt.Errorf("planner percentages must be positive")
	}
	if len(c.API.Binance.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	return nil
}

// TickInterval returns the evaluation period as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Advisor.TickIntervalMS) * time.Millisecond
}

// overrideWithEnv applies environment variables over file values.
// Env wins over file so secrets never have to live on disk.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("COPILOT_BINANCE_KEY"); key != "" {
		cfg.API.Binance.AccessKey = key
	}
	if secret := os.Getenv("COPILOT_BINANCE_SECRET"); secret != "" {
		cfg.API.Binance.SecretKey = secret
	}
	if addr := os.Getenv("COPILOT_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
}

// ResolveConfigPath returns the config file location, honoring an explicit
// COPILOT_CONFIG override before falling back to the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv("COPILOT_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
