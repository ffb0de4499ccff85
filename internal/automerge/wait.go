package automerge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/retry"
)

// ErrWaitTimedOut is returned by WaitPipeline when MaxDuration passes first
var ErrWaitTimedOut = errors.New("timed out waiting for pipeline")

// PipelineFunc fetches the current state of one pipeline
type PipelineFunc func(ctx context.Context) (gitlab.PipelineState, error)

// WaitPipeline polls until the pipeline reaches a finished state and returns
// it. It follows the same interval, retry and deadline rules as Run but never
// merges. Observer events report StatePolling throughout.
func WaitPipeline(ctx context.Context, fetch PipelineFunc, opts Options, observer Observer) (gitlab.PipelineState, error) {
	opts = opts.withDefaults()
	logger := zerolog.Ctx(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, opts.MaxDuration)
	defer cancel()

	o := &Orchestrator{opts: opts, observer: observer}
	r := &run{o: o, logger: logger, result: Result{State: StatePolling, Pipeline: gitlab.PipelineUnknown}}

	fail := func(err error) (gitlab.PipelineState, error) {
		switch {
		case ctx.Err() != nil:
			return r.result.Pipeline, ctx.Err()
		case waitCtx.Err() != nil:
			return r.result.Pipeline, fmt.Errorf("%w after %s", ErrWaitTimedOut, opts.MaxDuration)
		default:
			return r.result.Pipeline, err
		}
	}

	policy := o.retryPolicy(opts.MaxPollRetries, func(n int, err error) {
		r.emit(EventRetry, n, err)
	})

	for {
		var state gitlab.PipelineState
		err := retry.Do(waitCtx, policy, func(ctx context.Context) error {
			s, err := fetch(ctx)
			if err != nil {
				return err
			}
			state = s
			return nil
		})
		if err != nil {
			return fail(err)
		}

		r.result.Polls++
		r.result.Pipeline = state
		r.emit(EventPoll, 0, nil)
		logger.Debug().Str("pipeline", string(state)).Int("polls", r.result.Polls).Msg("pipeline polled")

		if state.Finished() {
			return state, nil
		}

		if err := sleep(waitCtx, opts.PollInterval); err != nil {
			return fail(err)
		}
	}
}
