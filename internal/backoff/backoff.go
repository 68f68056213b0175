// Package backoff computes retry delays with exponential growth and bounded
// uniform jitter.
package backoff

import (
	"math/rand"
	"time"
)

// DefaultJitterCap bounds the random component added to each delay so that
// concurrent callers do not retry in lockstep.
const DefaultJitterCap = 100 * time.Millisecond

// Expected returns the jitter-free delay before the attempt with the given
// zero-based index: base * 2^attempt. It is strictly increasing in attempt
// for any positive base.
func Expected(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Prevent overflow by limiting the exponent.
	if attempt > 30 {
		attempt = 30
	}
	d := base << uint(attempt)
	if d < 0 || (base > 0 && d < base) {
		return 1 << 62
	}
	return d
}

// Delay returns Expected plus a uniform random jitter in [0, jitterCap).
// A non-positive jitterCap disables the random component.
func Delay(attempt int, base, jitterCap time.Duration) time.Duration {
	d := Expected(attempt, base)
	if jitterCap > 0 {
		d += time.Duration(rand.Int63n(int64(jitterCap)))
	}
	return d
}
