package infra

import "time"

const (
	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// Backoff returns the exponential reconnect delay for a retry count:
// base * 2^retry, capped at backoffMax. Negative counts get the base delay.
func Backoff(retry int) time.Duration {
	if retry < 0 {
		return backoffBase
	}
	// 2^30 seconds already exceeds the cap.
	if retry > 30 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<retry)
	if d > backoffMax {
		return backoffMax
	}
	return d
}
