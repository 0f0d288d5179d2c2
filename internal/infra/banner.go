package infra

import "fmt"

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
)

// PrintBanner displays the startup banner.
func PrintBanner(cfg *Config) {
	fmt.Println()
	fmt.Printf("%s#########################################################%s\n", colorCyan, colorReset)
	fmt.Printf("%s#            🎯 Sniper Terminal - Co-Pilot              #%s\n", colorCyan, colorReset)
	fmt.Printf("%s#   VERSION: %-42s #%s\n", colorCyan, cfg.App.Version, colorReset)
	fmt.Printf("%s#   SYMBOLS: %-42d #%s\n", colorCyan, len(cfg.API.Binance.Symbols), colorReset)
	fmt.Printf("%s#   ADVISORY ONLY - NO ORDERS ARE EVER PLACED           #%s\n", colorCyan, colorReset)
	fmt.Printf("%s#########################################################%s\n", colorCyan, colorReset)
	fmt.Println()
}
