package ci

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

const projectPath = "/api/v4/projects/group%2Fapp"

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

type fakeGitLab struct {
	t      *testing.T
	routes map[string]http.HandlerFunc

	mu       sync.Mutex
	requests []string
}

func (f *fakeGitLab) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.EscapedPath()
	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.mu.Unlock()

	h, ok := f.routes[key]
	if !ok {
		f.t.Errorf("unexpected request %s", key)
		respond(http.StatusNotFound, map[string]string{"message": "404 Not Found"})(w, r)
		return
	}
	h(w, r)
}

func setupRetry(t *testing.T, routes map[string]http.HandlerFunc) (*RetryCommand, *fakeGitLab, *bytes.Buffer) {
	t.Helper()

	fake := &fakeGitLab{t: t, routes: routes}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := gitlab.NewClientWithHTTPClient(server.Client(), server.URL+"/api/v4")
	require.NoError(t, err)

	var out bytes.Buffer
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = &out, &bytes.Buffer{}
	t.Cleanup(func() { ui.Out, ui.Err = oldOut, oldErr })

	cmd := &RetryCommand{
		Opts:    &common.GlobalOptions{Config: config.DefaultConfig()},
		Client:  client,
		Project: "group/app",
	}
	return cmd, fake, &out
}

func TestRetryCommand(t *testing.T) {
	pipeline := map[string]any{"id": 4821, "status": "failed", "ref": "feature"}
	jobs := []map[string]any{
		{"id": 30, "name": "unit", "status": "failed"},
		{"id": 12, "name": "lint", "status": "success"},
		{"id": 10, "name": "unit", "status": "failed"},
	}

	testCases := []struct {
		desc         string
		job          string
		sel          pipelineFlags
		routes       map[string]http.HandlerFunc
		wantRequests []string
		wantOutput   string
		wantErr      string
	}{
		{
			desc: "whole pipeline",
			sel:  pipelineFlags{PipelineID: 4821},
			routes: map[string]http.HandlerFunc{
				"GET " + projectPath + "/pipelines/4821":        respond(http.StatusOK, pipeline),
				"POST " + projectPath + "/pipelines/4821/retry": respond(http.StatusCreated, map[string]any{"id": 4821, "status": "pending", "ref": "feature"}),
			},
			wantRequests: []string{"GET " + projectPath + "/pipelines/4821", "POST " + projectPath + "/pipelines/4821/retry"},
			wantOutput:   "Retried pipeline #4821 (feature)",
		},
		{
			desc: "job by name retries the newest",
			job:  "unit",
			sel:  pipelineFlags{PipelineID: 4821},
			routes: map[string]http.HandlerFunc{
				"GET " + projectPath + "/pipelines/4821":      respond(http.StatusOK, pipeline),
				"GET " + projectPath + "/pipelines/4821/jobs": respond(http.StatusOK, jobs),
				"POST " + projectPath + "/jobs/30/retry":      respond(http.StatusCreated, map[string]any{"id": 31, "name": "unit", "status": "pending"}),
			},
			wantRequests: []string{
				"GET " + projectPath + "/pipelines/4821",
				"GET " + projectPath + "/pipelines/4821/jobs",
				"POST " + projectPath + "/jobs/30/retry",
			},
			wantOutput: "Retried unit as job 31",
		},
		{
			desc: "job by id skips the lookup",
			job:  "918273",
			routes: map[string]http.HandlerFunc{
				"POST " + projectPath + "/jobs/918273/retry": respond(http.StatusCreated, map[string]any{"id": 918300, "name": "deploy", "status": "pending"}),
			},
			wantRequests: []string{"POST " + projectPath + "/jobs/918273/retry"},
			wantOutput:   "Retried deploy as job 918300",
		},
		{
			desc: "unknown job name",
			job:  "deploy",
			sel:  pipelineFlags{PipelineID: 4821},
			routes: map[string]http.HandlerFunc{
				"GET " + projectPath + "/pipelines/4821":      respond(http.StatusOK, pipeline),
				"GET " + projectPath + "/pipelines/4821/jobs": respond(http.StatusOK, jobs),
			},
			wantRequests: []string{"GET " + projectPath + "/pipelines/4821", "GET " + projectPath + "/pipelines/4821/jobs"},
			wantErr:      `no job named "deploy" in pipeline 4821`,
		},
		{
			desc: "job that cannot be retried",
			job:  "12",
			routes: map[string]http.HandlerFunc{
				"POST " + projectPath + "/jobs/12/retry": respond(http.StatusForbidden, map[string]string{"message": "403 Forbidden"}),
			},
			wantRequests: []string{"POST " + projectPath + "/jobs/12/retry"},
			wantErr:      "failed to retry job 12",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cmd, fake, out := setupRetry(t, tc.routes)
			cmd.Job = tc.job
			cmd.Select = tc.sel

			err := cmd.Run(context.Background())
			assert.Equal(t, tc.wantRequests, fake.requests)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.wantOutput)
		})
	}
}

func TestRetryCommandJSON(t *testing.T) {
	cmd, _, out := setupRetry(t, map[string]http.HandlerFunc{
		"POST " + projectPath + "/jobs/30/retry": respond(http.StatusCreated, map[string]any{"id": 31, "name": "unit", "status": "pending"}),
	})
	cmd.Opts.JSON = true
	cmd.Job = "30"

	require.NoError(t, cmd.Run(context.Background()))

	var job gitlab.Job
	require.NoError(t, json.Unmarshal(out.Bytes(), &job))
	assert.Equal(t, 31, job.ID)
	assert.Equal(t, "pending", job.Status)
}
