package worker

import "time"

// RetryPolicy controls exponential backoff for failed dispatch tasks.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  30 * time.Second,
		MaxDelay:   30 * time.Minute,
	}
}

// NextDelay returns the backoff before attempt retryCount+1, doubling
// each time up to MaxDelay.
func (p RetryPolicy) NextDelay(retryCount int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether a task with retryCount past attempts gets
// another one.
func (p RetryPolicy) ShouldRetry(retryCount int) bool {
	return retryCount < p.MaxRetries
}
