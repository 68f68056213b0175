package panggil

import (
	"time"

	internalbackoff "github.com/adyatma-labs/panggil/internal/backoff"
)

// RetryPolicy decides, given a classified error and the attempt index,
// whether to wait and retry. Unauthorized errors are never governed by the
// policy; they belong exclusively to the refresh-and-replay path.
type RetryPolicy interface {
	// ShouldRetry returns the delay before the next attempt and whether a
	// retry should happen at all. attempt is zero-based, maxRetries is the
	// number of extra attempts allowed after the first, and baseDelay comes
	// from the call's Meta.
	ShouldRetry(err *AppError, attempt, maxRetries int, baseDelay time.Duration) (time.Duration, bool)
}

// BackoffRetryPolicy retries retryable kinds with exponential backoff plus
// bounded jitter: baseDelay * 2^attempt + jitter.
type BackoffRetryPolicy struct {
	jitterCap time.Duration
}

// NewBackoffRetryPolicy creates the default policy with a 100ms jitter cap.
func NewBackoffRetryPolicy() *BackoffRetryPolicy {
	return &BackoffRetryPolicy{jitterCap: internalbackoff.DefaultJitterCap}
}

// ShouldRetry implements the RetryPolicy interface.
func (p *BackoffRetryPolicy) ShouldRetry(err *AppError, attempt, maxRetries int, baseDelay time.Duration) (time.Duration, bool) {
	if err == nil || !err.Kind.Retryable() {
		return 0, false
	}
	if attempt >= maxRetries {
		return 0, false
	}
	return internalbackoff.Delay(attempt, baseDelay, p.jitterCap), true
}
