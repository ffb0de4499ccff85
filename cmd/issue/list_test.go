package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOptions(t *testing.T) {
	testCases := []struct {
		desc      string
		cmd       ListCommand
		wantState string
		wantErr   string
	}{
		{desc: "defaults", cmd: ListCommand{State: "opened", Limit: 20}, wantState: "opened"},
		{desc: "all states drops the filter", cmd: ListCommand{State: "all", Limit: 20}, wantState: ""},
		{desc: "limit too low", cmd: ListCommand{State: "opened", Limit: 0}, wantErr: "--limit"},
		{desc: "bad date", cmd: ListCommand{State: "opened", Limit: 5, CreatedAfter: "last week"}, wantErr: "--created-after"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			opts, err := tc.cmd.options()
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantState, opts.State)
			assert.Equal(t, tc.cmd.Limit, opts.PerPage)
			assert.Empty(t, opts.AuthorUsername)
		})
	}

	cmd := ListCommand{State: "closed", Author: "bob", Assignee: "alice", Labels: []string{"bug"}, Limit: 5, CreatedAfter: "2026-01-01"}
	opts, err := cmd.options()
	require.NoError(t, err)
	assert.Equal(t, "bob", opts.AuthorUsername)
	assert.Equal(t, "alice", opts.AssigneeUsername)
	assert.Equal(t, []string{"bug"}, opts.Labels)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *opts.CreatedAfter)
}
