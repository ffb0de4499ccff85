package gitlab

import (
	"time"
)

// PipelineState is the orchestrator's view of a GitLab pipeline status
type PipelineState string

const (
	PipelinePending  PipelineState = "pending"
	PipelineRunning  PipelineState = "running"
	PipelineSuccess  PipelineState = "success"
	PipelineFailed   PipelineState = "failed"
	PipelineCanceled PipelineState = "canceled"
	PipelineSkipped  PipelineState = "skipped"
	PipelineUnknown  PipelineState = "unknown"
)

// ParsePipelineState folds GitLab's raw pipeline statuses into PipelineState.
// Statuses that mean "not started yet" become pending.
func ParsePipelineState(status string) PipelineState {
	switch status {
	case "success":
		return PipelineSuccess
	case "failed":
		return PipelineFailed
	case "canceled", "canceling":
		return PipelineCanceled
	case "skipped":
		return PipelineSkipped
	case "running":
		return PipelineRunning
	case "pending", "created", "waiting_for_resource", "preparing", "scheduled", "manual":
		return PipelinePending
	default:
		return PipelineUnknown
	}
}

// Finished reports whether the pipeline will not change state on its own
func (s PipelineState) Finished() bool {
	switch s {
	case PipelineSuccess, PipelineFailed, PipelineCanceled, PipelineSkipped:
		return true
	default:
		return false
	}
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	State    string `json:"state,omitempty"`
	WebURL   string `json:"web_url,omitempty"`
}

type Pipeline struct {
	ID        int       `json:"id"`
	IID       int       `json:"iid"`
	ProjectID int       `json:"project_id"`
	Status    string    `json:"status"`
	Source    string    `json:"source,omitempty"`
	Ref       string    `json:"ref"`
	SHA       string    `json:"sha"`
	WebURL    string    `json:"web_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Pipeline) State() PipelineState {
	return ParsePipelineState(p.Status)
}

// Merge request states as reported by GitLab
const (
	MergeRequestOpened = "opened"
	MergeRequestClosed = "closed"
	MergeRequestMerged = "merged"
	MergeRequestLocked = "locked"
)

type MergeRequest struct {
	ID                  int        `json:"id"`
	IID                 int        `json:"iid"`
	ProjectID           int        `json:"project_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	State               string     `json:"state"`
	Draft               bool       `json:"draft"`
	SourceBranch        string     `json:"source_branch"`
	TargetBranch        string     `json:"target_branch"`
	Author              User       `json:"author"`
	Labels              []string   `json:"labels"`
	MergeStatus         string     `json:"merge_status,omitempty"`
	DetailedMergeStatus string     `json:"detailed_merge_status,omitempty"`
	HasConflicts        bool       `json:"has_conflicts"`
	MergeWhenPipeline   bool       `json:"merge_when_pipeline_succeeds"`
	HeadPipeline        *Pipeline  `json:"head_pipeline,omitempty"`
	SHA                 string     `json:"sha"`
	WebURL              string     `json:"web_url"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	MergedAt            *time.Time `json:"merged_at,omitempty"`
}

func (mr *MergeRequest) IsMerged() bool {
	return mr.State == MergeRequestMerged
}

type Issue struct {
	ID        int       `json:"id"`
	IID       int       `json:"iid"`
	ProjectID int       `json:"project_id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels"`
	Author    User      `json:"author"`
	Assignees []User    `json:"assignees"`
	WebURL    string    `json:"web_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Job struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Stage        string     `json:"stage"`
	Status       string     `json:"status"`
	Ref          string     `json:"ref"`
	AllowFailure bool       `json:"allow_failure"`
	Duration     float64    `json:"duration"`
	WebURL       string     `json:"web_url"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// ListMergeRequestsOptions filters GET /projects/:id/merge_requests
type ListMergeRequestsOptions struct {
	State          string     `url:"state,omitempty"`
	AuthorUsername string     `url:"author_username,omitempty"`
	CreatedAfter   *time.Time `url:"created_after,omitempty"`
	CreatedBefore  *time.Time `url:"created_before,omitempty"`
	UpdatedAfter   *time.Time `url:"updated_after,omitempty"`
	OrderBy        string     `url:"order_by,omitempty"`
	Sort           string     `url:"sort,omitempty"`
	PerPage        int        `url:"per_page,omitempty"`
}

// ListIssuesOptions filters GET /projects/:id/issues
type ListIssuesOptions struct {
	State            string     `url:"state,omitempty"`
	AssigneeUsername string     `url:"assignee_username,omitempty"`
	AuthorUsername   string     `url:"author_username,omitempty"`
	Labels           []string   `url:"labels,comma,omitempty"`
	Search           string     `url:"search,omitempty"`
	CreatedAfter     *time.Time `url:"created_after,omitempty"`
	PerPage          int        `url:"per_page,omitempty"`
}

// ListPipelinesOptions filters GET /projects/:id/pipelines
type ListPipelinesOptions struct {
	Ref     string `url:"ref,omitempty"`
	PerPage int    `url:"per_page,omitempty"`
}
