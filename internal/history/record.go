package history

import (
	"github.com/bjulian5/gitlab-cli/internal/automerge"
)

// FromResult converts a finished automerge run on host into a record
func FromResult(host string, r automerge.Result) RunRecord {
	rec := RunRecord{
		ID:            r.RunID,
		Host:          host,
		Project:       r.Target.Project,
		IID:           r.Target.IID,
		KeepBranch:    r.Target.KeepBranch,
		Outcome:       r.Outcome.String(),
		FinalState:    r.State.String(),
		PipelineState: string(r.Pipeline),
		Polls:         r.Polls,
		MergeAttempts: r.MergeAttempts,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}
