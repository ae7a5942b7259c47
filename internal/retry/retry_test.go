// internal/retry/retry_test.go
package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_AttemptCount(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		failFirst  int // calls that fail before one succeeds
		wantCalls  int
		wantErr    bool
	}{
		{name: "first attempt succeeds", maxRetries: 3, failFirst: 0, wantCalls: 1},
		{name: "succeeds on last retry", maxRetries: 3, failFirst: 3, wantCalls: 4},
		{name: "budget exhausted", maxRetries: 2, failFirst: 10, wantCalls: 3, wantErr: true},
		{name: "zero retries means one attempt", maxRetries: 0, failFirst: 1, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{MaxRetries: tt.maxRetries, Delay: 0}

			calls := 0
			err := p.Do(context.Background(), func() error {
				calls++
				if calls <= tt.failFirst {
					return errors.New("transient")
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("fn called %d times, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	p := Policy{MaxRetries: 1, Delay: 0}
	last := errors.New("second failure")

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errors.New("first failure")
		}
		return last
	})
	if !errors.Is(err, last) {
		t.Errorf("Do() error = %v, want the last failure", err)
	}
}

func TestDo_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxRetries: 5, Delay: 50 * time.Millisecond}

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times after cancel, want 1", calls)
	}
}

func TestPoll_DoneStopsEarly(t *testing.T) {
	p := Policy{MaxRetries: 10, Delay: 0}

	checks := 0
	timedOut, err := p.Poll(context.Background(), func() (bool, error) {
		checks++
		return checks == 3, nil
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if timedOut {
		t.Error("Poll() timedOut = true, want false")
	}
	if checks != 3 {
		t.Errorf("check called %d times, want 3", checks)
	}
}

func TestPoll_BudgetExhaustedTimesOut(t *testing.T) {
	p := Policy{MaxRetries: 4, Delay: 0}

	checks := 0
	timedOut, err := p.Poll(context.Background(), func() (bool, error) {
		checks++
		return false, nil
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !timedOut {
		t.Error("Poll() timedOut = false, want true")
	}
	if checks != 5 {
		t.Errorf("check called %d times, want 5", checks)
	}
}

func TestPoll_CheckErrorAborts(t *testing.T) {
	p := Policy{MaxRetries: 10, Delay: 0}
	boom := errors.New("status endpoint down")

	checks := 0
	timedOut, err := p.Poll(context.Background(), func() (bool, error) {
		checks++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Poll() error = %v, want the check error", err)
	}
	if timedOut {
		t.Error("Poll() timedOut = true on check error")
	}
	if checks != 1 {
		t.Errorf("check called %d times, want 1", checks)
	}
}
