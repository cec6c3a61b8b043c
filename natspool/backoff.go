package natspool

import (
	rand "math/rand/v2"
	"time"
)

// reconnectDelay implements full-jitter exponential backoff with a cap,
// used as the custom reconnect delay for the underlying NATS connection.
// See: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
//
// Given the reconnect attempt number (1-based), computes:
//
//	next = base + rand(min(cap, base<<attempt) - base)
//
// Behavior:
//   - attempt <= 1 returns base
//   - base <= 0 falls back to 50ms
//   - cap <= base returns base
func reconnectDelay(attempt int, base, capDur time.Duration) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if capDur <= base || attempt <= 1 {
		return base
	}

	ceiling := base << uint(attempt-1) //nolint:gosec // attempt is a small reconnect counter
	if ceiling <= 0 || ceiling > capDur {
		ceiling = capDur
	}

	spread := ceiling - base
	if spread <= 0 {
		return base
	}

	return base + time.Duration(rand.Int64N(int64(spread))) //nolint:gosec // non-crypto backoff jitter
}
