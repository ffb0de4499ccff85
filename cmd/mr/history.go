package mr

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/history"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type HistoryCommand struct {
	// Arguments
	IID int

	Limit int

	Opts    *common.GlobalOptions
	History *history.Store
}

func (c *HistoryCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "history [iid]",
		Short: "Show past automerge runs",
		Long: `Show automerge runs recorded on this machine, newest first.

Runs are filtered to --project when it is given, and to one merge request
when an iid is given. No GitLab access is needed.

Example:
  gitlab mr history
  gitlab mr history --limit 50
  gitlab mr history 42 -R group/app`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				iid, err := common.ParseIID(args[0])
				if err != nil {
					return err
				}
				c.IID = iid
			}

			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			c.History, err = history.Open(path)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
		PostRunE: func(cmd *cobra.Command, args []string) error {
			return c.History.Close()
		},
	}

	cmd.Flags().IntVarP(&c.Limit, "limit", "L", 20, "Maximum number of runs to show")

	parent.AddCommand(cmd)
}

func (c *HistoryCommand) Run(ctx context.Context) error {
	runs, err := c.History.List(ctx, history.Filter{
		Project: c.Opts.Project,
		IID:     c.IID,
		Limit:   c.Limit,
	})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if runs == nil {
		runs = []history.RunRecord{}
	}

	return c.Opts.Render(runs, func() string {
		return ui.RenderHistory(runs, time.Now())
	})
}
