package retry

import "time"

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff bounded by max.
func CappedBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt >= 30 {
		return max
	}
	if d := ExponentialBackoff(attempt, base); d < max {
		return d
	}
	return max
}
