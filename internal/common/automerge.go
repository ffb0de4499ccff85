package common

import (
	"time"

	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/config"
)

// AutoMergeOptions converts the [automerge] config section. Non-zero
// interval and timeout override the configured values.
func AutoMergeOptions(cfg config.AutoMergeConfig, interval, timeout time.Duration) automerge.Options {
	opts := automerge.Options{
		PollInterval:    cfg.PollInterval.Duration,
		MaxDuration:     cfg.Timeout.Duration,
		MaxPollRetries:  cfg.MaxPollRetries,
		MaxMergeRetries: cfg.MaxMergeRetries,
		RetryDelay:      cfg.RetryDelay.Duration,
		MaxRetryDelay:   cfg.MaxRetryDelay.Duration,
	}
	if interval > 0 {
		opts.PollInterval = interval
	}
	if timeout > 0 {
		opts.MaxDuration = timeout
	}
	return opts
}
