package service

import (
	"context"
	"errors"
	"time"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// retryPolicy retries an operation a bounded number of times when it fails with
// the retryable sentinel.
type retryPolicy struct {
	attempts  int
	backoff   time.Duration
	retryable error
}

// storeRetry gives store calls one extra attempt.
var storeRetry = retryPolicy{attempts: 2, backoff: 150 * time.Millisecond, retryable: domain.ErrStoreUnavailable}

func (p retryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, p.retryable) || attempt >= p.attempts {
			return err
		}

		wait := p.backoff * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
}
