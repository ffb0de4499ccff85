package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

// ListMergeRequestPipelines returns the merge request's pipelines, newest first
func (c *Client) ListMergeRequestPipelines(ctx context.Context, project string, iid int) ([]Pipeline, error) {
	var pipelines []Pipeline
	path := mergeRequestPath(project, iid) + "/pipelines"
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &pipelines); err != nil {
		return nil, err
	}
	return pipelines, nil
}

// PipelineStatus returns the state of the merge request's latest pipeline, or
// PipelineUnknown when it has none yet
func (c *Client) PipelineStatus(ctx context.Context, project string, iid int) (PipelineState, error) {
	pipelines, err := c.ListMergeRequestPipelines(ctx, project, iid)
	if err != nil {
		return PipelineUnknown, err
	}
	if len(pipelines) == 0 {
		return PipelineUnknown, nil
	}
	return pipelines[0].State(), nil
}

func (c *Client) ListPipelines(ctx context.Context, project string, opts *ListPipelinesOptions) ([]Pipeline, error) {
	var pipelines []Pipeline
	path := projectPath(project) + "/pipelines"
	if err := c.call(ctx, http.MethodGet, path, opts, nil, &pipelines); err != nil {
		return nil, err
	}
	return pipelines, nil
}

// LatestPipeline returns the newest pipeline for ref
func (c *Client) LatestPipeline(ctx context.Context, project, ref string) (*Pipeline, error) {
	pipelines, err := c.ListPipelines(ctx, project, &ListPipelinesOptions{Ref: ref, PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("no pipelines found for branch %s", ref)
	}
	return &pipelines[0], nil
}

func (c *Client) GetPipeline(ctx context.Context, project string, id int) (*Pipeline, error) {
	var pipeline Pipeline
	path := fmt.Sprintf("%s/pipelines/%d", projectPath(project), id)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (c *Client) ListPipelineJobs(ctx context.Context, project string, pipelineID int) ([]Job, error) {
	var jobs []Job
	path := fmt.Sprintf("%s/pipelines/%d/jobs", projectPath(project), pipelineID)
	opts := struct {
		PerPage int `url:"per_page"`
	}{PerPage: 100}
	if err := c.call(ctx, http.MethodGet, path, opts, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobTrace returns the raw log of a job
func (c *Client) GetJobTrace(ctx context.Context, project string, jobID int) (string, error) {
	path := fmt.Sprintf("%s/jobs/%d/trace", projectPath(project), jobID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	data, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RetryPipeline restarts the failed and canceled jobs of a pipeline
func (c *Client) RetryPipeline(ctx context.Context, project string, id int) (*Pipeline, error) {
	var pipeline Pipeline
	path := fmt.Sprintf("%s/pipelines/%d/retry", projectPath(project), id)
	if err := c.call(ctx, http.MethodPost, path, nil, nil, &pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// RetryJob starts a new run of a job. The returned job is the new one.
func (c *Client) RetryJob(ctx context.Context, project string, jobID int) (*Job, error) {
	var job Job
	path := fmt.Sprintf("%s/jobs/%d/retry", projectPath(project), jobID)
	if err := c.call(ctx, http.MethodPost, path, nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
