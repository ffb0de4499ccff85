package gitlab

import (
	"context"
	"net/http"
)

func (c *Client) ListIssues(ctx context.Context, project string, opts *ListIssuesOptions) ([]Issue, error) {
	var issues []Issue
	path := projectPath(project) + "/issues"
	if err := c.call(ctx, http.MethodGet, path, opts, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
