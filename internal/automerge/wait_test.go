package automerge

import (
	"context"
	"net/http"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

// sequence returns a PipelineFunc that replays states and repeats the last one
func sequence(states ...gitlab.PipelineState) (PipelineFunc, *int) {
	calls := 0
	return func(ctx context.Context) (gitlab.PipelineState, error) {
		i := min(calls, len(states)-1)
		calls++
		return states[i], nil
	}, &calls
}

func TestWaitPipeline(t *testing.T) {
	tests := []struct {
		name      string
		states    []gitlab.PipelineState
		want      gitlab.PipelineState
		wantCalls int
	}{
		{
			name:      "success after running",
			states:    []gitlab.PipelineState{gitlab.PipelinePending, gitlab.PipelineRunning, gitlab.PipelineSuccess},
			want:      gitlab.PipelineSuccess,
			wantCalls: 3,
		},
		{
			name:      "failed is returned without error",
			states:    []gitlab.PipelineState{gitlab.PipelineRunning, gitlab.PipelineFailed},
			want:      gitlab.PipelineFailed,
			wantCalls: 2,
		},
		{
			name:      "skipped is finished",
			states:    []gitlab.PipelineState{gitlab.PipelineSkipped},
			want:      gitlab.PipelineSkipped,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				fetch, calls := sequence(tt.states...)

				start := time.Now()
				got, err := WaitPipeline(context.Background(), fetch, testOptions(), nil)

				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.wantCalls, *calls)
				assert.Equal(t, time.Duration(tt.wantCalls-1)*10*time.Second, time.Since(start))
			})
		})
	}
}

func TestWaitPipeline_TimesOut(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fetch, _ := sequence(gitlab.PipelineRunning)

		opts := testOptions()
		opts.MaxDuration = 35 * time.Second

		got, err := WaitPipeline(context.Background(), fetch, opts, nil)

		require.ErrorIs(t, err, ErrWaitTimedOut)
		assert.Equal(t, gitlab.PipelineRunning, got)
	})
}

func TestWaitPipeline_Canceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fetch, _ := sequence(gitlab.PipelineRunning)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		time.AfterFunc(15*time.Second, cancel)

		_, err := WaitPipeline(ctx, fetch, testOptions(), nil)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestWaitPipeline_PermanentErrorStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		calls := 0
		fetch := func(ctx context.Context) (gitlab.PipelineState, error) {
			calls++
			return gitlab.PipelineUnknown, permanentErr(http.StatusForbidden)
		}

		_, err := WaitPipeline(context.Background(), fetch, testOptions(), nil)

		require.Error(t, err)
		assert.True(t, gitlab.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})
}

func TestWaitPipeline_ObserverCountsPolls(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fetch, _ := sequence(gitlab.PipelineRunning, gitlab.PipelineSuccess)

		var last Event
		observer := func(e Event) { last = e }

		_, err := WaitPipeline(context.Background(), fetch, testOptions(), observer)

		require.NoError(t, err)
		assert.Equal(t, EventPoll, last.Kind)
		assert.Equal(t, 2, last.Polls)
		assert.Equal(t, gitlab.PipelineSuccess, last.Pipeline)
	})
}
