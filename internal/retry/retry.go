// Package retry wraps avast/retry-go with the bounded exponential backoff
// used for transient GitLab API failures.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// Policy bounds a retried operation. Retries counts the calls made after the
// first one, so a zero Policy calls fn exactly once.
type Policy struct {
	Retries  int
	Delay    time.Duration
	MaxDelay time.Duration

	// RetryIf decides whether an error is worth another attempt. Nil retries everything
	// except context cancellation.
	RetryIf func(error) bool

	// OnRetry is called before sleeping for attempt n (1-based)
	OnRetry func(n int, err error)
}

// Do calls fn until it succeeds, returns an error RetryIf rejects, or the
// retries are spent. The returned error is the last one fn produced, or the
// context error if ctx ended while waiting.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.Retries > 100 {
		p.Retries = 100
	}

	logger := zerolog.Ctx(ctx)

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(p.Retries + 1)),
		retry.Delay(p.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if IsContextError(err) {
				return false
			}
			if p.RetryIf == nil {
				return true
			}
			return p.RetryIf(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug().Uint("attempt", n+1).Err(err).Msg("retrying after transient error")
			if p.OnRetry != nil {
				p.OnRetry(int(n)+1, err)
			}
		}),
	}

	if p.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(p.MaxDelay))
	}
	if jitter := p.Delay / 4; jitter > 0 {
		opts = append(opts,
			retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
			retry.MaxJitter(jitter),
		)
	} else {
		opts = append(opts, retry.DelayType(retry.BackOffDelay))
	}

	err := retry.Do(func() error {
		return fn(ctx)
	}, opts...)
	if err != nil && ctx.Err() != nil && !IsContextError(err) {
		// ctx ended during the backoff sleep; the last API error is stale
		return ctx.Err()
	}
	return err
}

// IsContextError reports whether err stems from context cancellation or deadline
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
