// Package automerge drives a merge request from "pipeline running" to
// "merged": it polls the latest pipeline, merges once it succeeds and reports
// exactly one Outcome.
package automerge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/retry"
)

// API is the part of the GitLab client the orchestrator needs
type API interface {
	PipelineStatus(ctx context.Context, project string, iid int) (gitlab.PipelineState, error)
	MergeMergeRequest(ctx context.Context, project string, iid int, keepBranch bool) error
}

var _ API = (*gitlab.Client)(nil)

const (
	DefaultPollInterval    = 10 * time.Second
	DefaultMaxDuration     = time.Hour
	DefaultMaxPollRetries  = 5
	DefaultMaxMergeRetries = 5
	DefaultRetryDelay      = 2 * time.Second
	DefaultMaxRetryDelay   = 30 * time.Second
)

// Options tune a run. Zero fields take the defaults above; a negative retry
// count disables retries.
type Options struct {
	PollInterval time.Duration
	// MaxDuration bounds the polling phase only. A merge that has been issued
	// is allowed to finish.
	MaxDuration     time.Duration
	MaxPollRetries  int
	MaxMergeRetries int
	RetryDelay      time.Duration
	MaxRetryDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{
		PollInterval:    DefaultPollInterval,
		MaxDuration:     DefaultMaxDuration,
		MaxPollRetries:  DefaultMaxPollRetries,
		MaxMergeRetries: DefaultMaxMergeRetries,
		RetryDelay:      DefaultRetryDelay,
		MaxRetryDelay:   DefaultMaxRetryDelay,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = d.MaxDuration
	}
	if o.MaxPollRetries == 0 {
		o.MaxPollRetries = d.MaxPollRetries
	} else if o.MaxPollRetries < 0 {
		o.MaxPollRetries = 0
	}
	if o.MaxMergeRetries == 0 {
		o.MaxMergeRetries = d.MaxMergeRetries
	} else if o.MaxMergeRetries < 0 {
		o.MaxMergeRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.MaxRetryDelay <= 0 {
		o.MaxRetryDelay = d.MaxRetryDelay
	}
	return o
}

// Orchestrator runs auto-merges against one GitLab API
type Orchestrator struct {
	api      API
	opts     Options
	observer Observer
}

func New(api API, opts Options, observer Observer) *Orchestrator {
	return &Orchestrator{
		api:      api,
		opts:     opts.withDefaults(),
		observer: observer,
	}
}

// run holds the mutable state of a single Run call
type run struct {
	o      *Orchestrator
	target MergeTarget
	result Result
	logger *zerolog.Logger
}

func (r *run) emit(kind EventKind, attempt int, err error) {
	if r.o.observer == nil {
		return
	}
	r.o.observer(Event{
		Kind:     kind,
		State:    r.result.State,
		Pipeline: r.result.Pipeline,
		Polls:    r.result.Polls,
		Attempt:  attempt,
		Err:      err,
		Time:     time.Now(),
	})
}

func (r *run) transition(to State) {
	r.logger.Debug().
		Str("from", r.result.State.String()).
		Str("to", to.String()).
		Str("pipeline", string(r.result.Pipeline)).
		Msg("automerge transition")
	r.result.State = to
	r.emit(EventTransition, 0, nil)
}

func (r *run) finish(state State, outcome Outcome, err error) {
	r.result.Outcome = outcome
	r.result.Err = err
	r.transition(state)
}

// Run drives target to a terminal state. It never returns an error: every
// failure is folded into the Result's Outcome and Err.
func (o *Orchestrator) Run(ctx context.Context, target MergeTarget) Result {
	r := &run{
		o:      o,
		target: target,
		logger: zerolog.Ctx(ctx),
		result: Result{
			RunID:     uuid.NewString(),
			Target:    target,
			State:     StatePolling,
			Pipeline:  gitlab.PipelineUnknown,
			StartedAt: time.Now(),
		},
	}
	r.emit(EventTransition, 0, nil)

	pollCtx, cancel := context.WithTimeout(ctx, o.opts.MaxDuration)
	defer cancel()

	for !r.result.State.Terminal() {
		switch r.result.State {
		case StatePolling:
			r.poll(ctx, pollCtx)
		case StateMerging:
			r.merge(ctx)
		}
	}

	r.result.FinishedAt = time.Now()
	return r.result
}

// poll performs one tick of the Polling state: fetch the pipeline state
// (retrying transient failures), then either move on or sleep.
func (r *run) poll(ctx, pollCtx context.Context) {
	if ctx.Err() != nil {
		r.finish(StateCanceled, OutcomeCanceled, ctx.Err())
		return
	}

	var state gitlab.PipelineState
	policy := r.o.retryPolicy(r.o.opts.MaxPollRetries, func(n int, err error) {
		r.emit(EventRetry, n, err)
	})
	err := retry.Do(pollCtx, policy, func(ctx context.Context) error {
		s, err := r.o.api.PipelineStatus(ctx, r.target.Project, r.target.IID)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	if err != nil {
		r.pollFailed(ctx, pollCtx, err)
		return
	}

	r.result.Polls++
	r.result.Pipeline = state
	r.emit(EventPoll, 0, nil)

	switch state {
	case gitlab.PipelineSuccess:
		r.transition(StateMerging)
		return
	case gitlab.PipelineFailed, gitlab.PipelineCanceled:
		r.finish(StateFailed, OutcomePipelineFailed, fmt.Errorf("pipeline %s", state))
		return
	}

	if err := sleep(pollCtx, r.o.opts.PollInterval); err != nil {
		r.pollFailed(ctx, pollCtx, err)
	}
}

func (r *run) pollFailed(ctx, pollCtx context.Context, err error) {
	switch {
	case ctx.Err() != nil:
		r.finish(StateCanceled, OutcomeCanceled, ctx.Err())
	case pollCtx.Err() != nil:
		r.finish(StateTimedOut, OutcomeTimedOut,
			fmt.Errorf("pipeline did not finish within %s", r.o.opts.MaxDuration))
	case gitlab.IsUnauthorized(err):
		r.finish(StateErrored, OutcomeAuthError, err)
	case gitlab.IsTransient(err):
		r.finish(StateTimedOut, OutcomeTimedOut,
			fmt.Errorf("failed to poll pipeline after %d retries: %w", r.o.opts.MaxPollRetries, err))
	default:
		r.finish(StateErrored, OutcomeErrored, fmt.Errorf("failed to poll pipeline: %w", err))
	}
}

// merge issues the merge once, retrying only transient failures. The
// pipeline is not consulted again: the merge response decides the outcome.
func (r *run) merge(ctx context.Context) {
	if ctx.Err() != nil {
		r.finish(StateCanceled, OutcomeCanceled, ctx.Err())
		return
	}

	policy := r.o.retryPolicy(r.o.opts.MaxMergeRetries, func(n int, err error) {
		r.emit(EventRetry, n, err)
	})
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		r.result.MergeAttempts++
		return r.o.api.MergeMergeRequest(ctx, r.target.Project, r.target.IID, r.target.KeepBranch)
	})

	switch {
	case err == nil:
		r.finish(StateMerged, OutcomeMerged, nil)
	case ctx.Err() != nil:
		r.finish(StateCanceled, OutcomeCanceled, ctx.Err())
	case gitlab.IsUnauthorized(err):
		r.finish(StateErrored, OutcomeAuthError, err)
	default:
		r.finish(StateErrored, OutcomeErrored, fmt.Errorf("failed to merge merge request !%d: %w", r.target.IID, err))
	}
}

func (o *Orchestrator) retryPolicy(retries int, onRetry func(int, error)) retry.Policy {
	return retry.Policy{
		Retries:  retries,
		Delay:    o.opts.RetryDelay,
		MaxDelay: o.opts.MaxRetryDelay,
		RetryIf:  gitlab.IsTransient,
		OnRetry:  onRetry,
	}
}

// sleep waits for d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

