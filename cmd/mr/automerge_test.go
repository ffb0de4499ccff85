package mr

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/history"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

const (
	mrPath        = "/api/v4/projects/group%2Fapp/merge_requests/7"
	mergePath     = mrPath + "/merge"
	pipelinesPath = mrPath + "/pipelines"
)

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

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

// setupAutoMerge wires an AutoMergeCommand to a fake GitLab and a temporary
// history store, and captures ui output
func setupAutoMerge(t *testing.T, routes map[string]http.HandlerFunc) (*AutoMergeCommand, *fakeGitLab, *bytes.Buffer) {
	t.Helper()

	fake := &fakeGitLab{t: t, routes: routes}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := gitlab.NewClientWithHTTPClient(server.Client(), server.URL+"/api/v4")
	require.NoError(t, err)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = &out, &bytes.Buffer{}
	t.Cleanup(func() { ui.Out, ui.Err = oldOut, oldErr })

	cfg := config.DefaultConfig()
	cfg.AutoMerge.RetryDelay = config.Duration{Duration: time.Millisecond}
	cfg.AutoMerge.MaxRetryDelay = config.Duration{Duration: time.Millisecond}

	cmd := &AutoMergeCommand{
		IID:     7,
		Opts:    &common.GlobalOptions{Config: cfg},
		Client:  client,
		Project: "group/app",
		History: store,
	}
	return cmd, fake, &out
}

func TestAutoMergeCommand(t *testing.T) {
	testCases := []struct {
		desc        string
		routes      map[string]http.HandlerFunc
		wantCode    int
		wantOutcome string
		wantOutput  string
		wantMerge   bool
	}{
		{
			desc: "passing pipeline merges",
			routes: map[string]http.HandlerFunc{
				"GET " + pipelinesPath: respond(http.StatusOK, []map[string]any{{"id": 11, "status": "success"}}),
				"PUT " + mergePath:     respond(http.StatusOK, map[string]any{"iid": 7, "state": "merged"}),
			},
			wantCode:    0,
			wantOutcome: "merged",
			wantOutput:  "!7 merged",
			wantMerge:   true,
		},
		{
			desc: "failed pipeline never merges",
			routes: map[string]http.HandlerFunc{
				"GET " + pipelinesPath: respond(http.StatusOK, []map[string]any{{"id": 11, "status": "failed"}}),
			},
			wantCode:    2,
			wantOutcome: "pipeline failed",
			wantOutput:  "!7 pipeline failed",
		},
		{
			desc: "rejected token is an auth error",
			routes: map[string]http.HandlerFunc{
				"GET " + pipelinesPath: respond(http.StatusUnauthorized, map[string]string{"message": "401 Unauthorized"}),
			},
			wantCode:    5,
			wantOutcome: "auth error",
			wantOutput:  "401 Unauthorized",
		},
		{
			desc: "merge blocked by conflicts errors",
			routes: map[string]http.HandlerFunc{
				"GET " + pipelinesPath: respond(http.StatusOK, []map[string]any{{"id": 11, "status": "success"}}),
				"PUT " + mergePath:     respond(http.StatusNotAcceptable, map[string]string{"message": "Branch cannot be merged"}),
				"GET " + mrPath:        respond(http.StatusOK, map[string]any{"iid": 7, "state": "opened", "has_conflicts": true}),
			},
			wantCode:    4,
			wantOutcome: "errored",
			wantOutput:  "Branch cannot be merged",
			wantMerge:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cmd, fake, out := setupAutoMerge(t, tc.routes)
			ctx := context.Background()

			err := cmd.Run(ctx)
			code, print := common.ExitCode(err)
			assert.Equal(t, tc.wantCode, code)
			assert.False(t, print, "outcome is reported by the status line")
			assert.Contains(t, out.String(), tc.wantOutput)
			assert.Equal(t, tc.wantMerge, slices.Contains(fake.requests, "PUT "+mergePath))

			runs, err := cmd.History.List(ctx, history.Filter{Project: "group/app", IID: 7})
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, tc.wantOutcome, runs[0].Outcome)
			assert.Equal(t, config.DefaultHost, runs[0].Host)
		})
	}
}

func TestAutoMergeCommandJSON(t *testing.T) {
	cmd, _, out := setupAutoMerge(t, map[string]http.HandlerFunc{
		"GET " + pipelinesPath: respond(http.StatusOK, []map[string]any{{"id": 11, "status": "success"}}),
		"PUT " + mergePath:     respond(http.StatusOK, map[string]any{"iid": 7, "state": "merged"}),
	})
	cmd.Opts.JSON = true
	cmd.KeepBranch = true

	require.NoError(t, cmd.Run(context.Background()))

	var rec history.RunRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "merged", rec.Outcome)
	assert.Equal(t, 7, rec.IID)
	assert.True(t, rec.KeepBranch)
	assert.NotEmpty(t, rec.ID)
}

func TestAutoMergeCommandServerSide(t *testing.T) {
	var body map[string]any
	cmd, fake, out := setupAutoMerge(t, map[string]http.HandlerFunc{
		"PUT " + mergePath: func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			respond(http.StatusOK, map[string]any{"iid": 7, "state": "opened", "merge_when_pipeline_succeeds": true})(w, r)
		},
	})
	cmd.ServerSide = true

	require.NoError(t, cmd.Run(context.Background()))

	assert.Equal(t, []string{"PUT " + mergePath}, fake.requests, "no polling")
	assert.Equal(t, true, body["merge_when_pipeline_succeeds"])
	assert.Equal(t, true, body["should_remove_source_branch"])
	assert.Contains(t, out.String(), "will be merged by GitLab")
}
