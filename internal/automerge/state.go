package automerge

import (
	"time"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

// State is a node of the orchestration state machine
type State int

const (
	StatePolling State = iota
	StateMerging
	StateMerged
	StateFailed
	StateTimedOut
	StateErrored
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateMerging:
		return "merging"
	case StateMerged:
		return "merged"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateErrored:
		return "errored"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has finished
func (s State) Terminal() bool {
	return s != StatePolling && s != StateMerging
}

// Outcome is the single result of a run
type Outcome int

const (
	OutcomeMerged Outcome = iota
	OutcomePipelineFailed
	OutcomeTimedOut
	OutcomeErrored
	OutcomeAuthError
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMerged:
		return "merged"
	case OutcomePipelineFailed:
		return "pipeline failed"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeErrored:
		return "errored"
	case OutcomeAuthError:
		return "auth error"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ExitCode is the process exit status for the outcome. 1 is left for generic
// CLI failures.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeMerged:
		return 0
	case OutcomePipelineFailed:
		return 2
	case OutcomeTimedOut:
		return 3
	case OutcomeErrored:
		return 4
	case OutcomeAuthError:
		return 5
	case OutcomeCanceled:
		return 130
	default:
		return 1
	}
}

// MergeTarget identifies the merge request a run acts on
type MergeTarget struct {
	Project    string
	IID        int
	KeepBranch bool
}

// EventKind says what an Event reports
type EventKind int

const (
	EventTransition EventKind = iota
	EventPoll
	EventRetry
)

func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventPoll:
		return "poll"
	case EventRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// Event is delivered to an Observer on every transition, poll and retry
type Event struct {
	Kind     EventKind
	State    State
	Pipeline gitlab.PipelineState
	Polls    int
	Attempt  int
	Err      error
	Time     time.Time
}

// Observer receives run progress. It is called synchronously from the
// orchestrator loop and must not block.
type Observer func(Event)

// Result describes a finished run
type Result struct {
	RunID         string
	Target        MergeTarget
	Outcome       Outcome
	State         State
	Pipeline      gitlab.PipelineState
	Polls         int
	MergeAttempts int
	Err           error
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
