package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

func mergeRequestPath(project string, iid int) string {
	return fmt.Sprintf("%s/merge_requests/%d", projectPath(project), iid)
}

func (c *Client) GetMergeRequest(ctx context.Context, project string, iid int) (*MergeRequest, error) {
	var mr MergeRequest
	if err := c.call(ctx, http.MethodGet, mergeRequestPath(project, iid), nil, nil, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}

func (c *Client) ListMergeRequests(ctx context.Context, project string, opts *ListMergeRequestsOptions) ([]MergeRequest, error) {
	var mrs []MergeRequest
	path := projectPath(project) + "/merge_requests"
	if err := c.call(ctx, http.MethodGet, path, opts, nil, &mrs); err != nil {
		return nil, err
	}
	return mrs, nil
}

type mergeOptions struct {
	ShouldRemoveSourceBranch  bool `json:"should_remove_source_branch"`
	MergeWhenPipelineSucceeds bool `json:"merge_when_pipeline_succeeds,omitempty"`
}

// MergeMergeRequest merges the merge request now. Merging one that is already
// merged succeeds, so a retry after a lost response is harmless.
//
// GitLab answers 405 while it is still computing mergeability after a pipeline
// finishes; for an open merge request that is reported as Transient so the
// caller can retry within its own bound.
func (c *Client) MergeMergeRequest(ctx context.Context, project string, iid int, keepBranch bool) error {
	path := mergeRequestPath(project, iid) + "/merge"
	opts := mergeOptions{ShouldRemoveSourceBranch: !keepBranch}

	var mr MergeRequest
	err := c.call(ctx, http.MethodPut, path, nil, opts, &mr)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind == Transient {
		return err
	}

	switch apiErr.StatusCode {
	case http.StatusMethodNotAllowed, http.StatusNotAcceptable, http.StatusConflict, http.StatusUnprocessableEntity:
	default:
		return err
	}

	current, getErr := c.GetMergeRequest(ctx, project, iid)
	if getErr != nil {
		zerolog.Ctx(ctx).Debug().Err(getErr).Msg("could not re-read merge request after merge failure")
		return err
	}

	if current.IsMerged() {
		zerolog.Ctx(ctx).Debug().Int("iid", iid).Msg("merge request already merged")
		return nil
	}

	if apiErr.StatusCode == http.StatusMethodNotAllowed && current.State == MergeRequestOpened && !current.HasConflicts {
		apiErr.Kind = Transient
		if apiErr.Message == "" {
			apiErr.Message = "merge request is not mergeable yet"
		}
	}
	return apiErr
}

// SetAutoMerge asks GitLab to merge the merge request itself once its pipeline
// succeeds
func (c *Client) SetAutoMerge(ctx context.Context, project string, iid int, keepBranch bool) (*MergeRequest, error) {
	path := mergeRequestPath(project, iid) + "/merge"
	opts := mergeOptions{
		ShouldRemoveSourceBranch:  !keepBranch,
		MergeWhenPipelineSucceeds: true,
	}

	var mr MergeRequest
	if err := c.call(ctx, http.MethodPut, path, nil, opts, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}
