// internal/retry/retry.go
package retry

import (
	"context"
	"time"
)

// Policy is a fixed-backoff retry schedule shared by every external-call
// wrapper, including the polling loops.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// AnalysisPolicy is the schedule for text-analysis and image-generation
// calls: 3 retries with a 2 second gap.
var AnalysisPolicy = Policy{MaxRetries: 3, Delay: 2 * time.Second}

// Do runs fn until it succeeds or the policy is exhausted, sleeping
// p.Delay between attempts. Context cancellation stops the schedule and
// returns the context error.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// Poll runs check every p.Delay for at most p.MaxRetries+1 attempts. check
// returns done=true to stop. If the budget runs out, Poll returns
// timedOut=true with a nil error.
func (p Policy) Poll(ctx context.Context, check func() (done bool, err error)) (timedOut bool, err error) {
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
		done, err := check()
		if err != nil {
			return false, err
		}
		if done {
			return false, nil
		}
	}
	return true, nil
}
