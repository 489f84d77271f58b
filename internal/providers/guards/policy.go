package guards

import "time"

// MaxAttempts is the per-call try budget for both payload kinds.
const MaxAttempts = 5

// BackoffFunc computes the delay before the next try from the attempt that just
// failed (1-based), the previous delay and the scaled cap. rnd returns a value
// in [0,n).
type BackoffFunc func(attempt int, prev, max time.Duration, rnd func(n int64) int64) time.Duration

// RetryPolicy parameterizes Execute per call kind.
type RetryPolicy struct {
	Name        string
	MaxAttempts int
	Backoff     BackoffFunc
	// SoftFail turns an exhausted call into a zero value with a nil error.
	SoftFail bool
}

// SummaryPolicy governs full summary fetches: quadratic backoff, hard failure.
func SummaryPolicy() RetryPolicy {
	return RetryPolicy{Name: "summary", MaxAttempts: MaxAttempts, Backoff: QuadraticBackoff}
}

// QuotePolicy governs light quote fetches: doubling backoff with noise, soft failure.
func QuotePolicy() RetryPolicy {
	return RetryPolicy{Name: "quote", MaxAttempts: MaxAttempts, Backoff: DoublingBackoff, SoftFail: true}
}

// QuadraticBackoff is min(max, attempt²·250ms).
func QuadraticBackoff(attempt int, _, max time.Duration, _ func(int64) int64) time.Duration {
	d := time.Duration(attempt*attempt) * 250 * time.Millisecond
	if d > max {
		return max
	}
	return d
}

// DoublingBackoff starts at 300ms and doubles, adding up to 150ms of noise
// before capping at max.
func DoublingBackoff(attempt int, prev, max time.Duration, rnd func(int64) int64) time.Duration {
	var base time.Duration
	switch {
	case attempt == 1:
		base = 300 * time.Millisecond
	case prev > 0:
		base = prev * 2
	default:
		base = 600 * time.Millisecond
	}
	d := base + time.Duration(rnd(150))*time.Millisecond
	if d > max {
		return max
	}
	return d
}
