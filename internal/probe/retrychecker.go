package probe

import (
	"context"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
)

// RetryChecker wraps another Checker and re-probes non-ok outcomes.
// Attempts <= 1 makes it a passthrough.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, svc domain.Service) Outcome {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last Outcome
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, svc)
		if last.Status == domain.StatusOK {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	// Timeout messages stay verbatim so downstream classification keys on them.
	if attempts > 1 && last.Status == domain.StatusError && last.ErrorMessage != "" {
		last.ErrorMessage = last.ErrorMessage + " (after retries)"
	}
	return last
}
