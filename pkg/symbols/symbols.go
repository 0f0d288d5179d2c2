// Package symbols normalizes instrument symbols from mobile clients and
// exchange streams into the canonical uppercase form used as cache keys.
package symbols

import "strings"

// suffixes stripped from exchange-decorated symbols ("BTCUSDT.P", "BTC-PERP").
var suffixes = []string{".P", "-PERP", "_PERP", "-SWAP"}

// Normalize converts a raw symbol to canonical form: trimmed, uppercased,
// separators removed, exchange suffix stripped. "btc-usdt" -> "BTCUSDT".
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Settlement-currency decoration ("BTC/USDT:USDT") ends at the colon.
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}

	for _, suf := range suffixes {
		s = strings.TrimSuffix(s, suf)
	}

	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
