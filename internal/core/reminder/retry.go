package reminder

import "time"

// BackoffFunc returns the delay to wait after the given failed attempt (1-based).
type BackoffFunc func(attempt int) time.Duration

// RetryPolicy bounds delivery attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
}

// ExponentialBackoff waits base * 2^attempt: with a one second base the
// delays after attempts 1 and 2 are 2s and 4s.
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		return base * time.Duration(1<<uint(attempt))
	}
}

// DefaultRetryPolicy returns the delivery policy for maxAttempts tries.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     ExponentialBackoff(time.Second),
	}
}

// ShouldRetry reports whether another attempt follows the given one.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Delay returns the wait after attempt, or zero when no retry follows.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if !p.ShouldRetry(attempt) || p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}
