package mr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/history"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type AutoMergeCommand struct {
	// Arguments
	IID int

	// Flags
	KeepBranch bool
	Interval   time.Duration
	Timeout    time.Duration
	ServerSide bool

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
	// History is opened at the default path when nil
	History *history.Store
}

func (c *AutoMergeCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "automerge [iid]",
		Short: "Merge a merge request once its pipeline passes",
		Long: `Wait for the latest pipeline of a merge request to succeed, then merge it.

The pipeline is polled every --interval until it finishes or --timeout
passes. A failed or canceled pipeline stops without merging. Transient API
errors are retried with backoff. The source branch is deleted on merge
unless --keep-branch is given.

Without an iid, a picker over open merge requests is shown (terminal only).
With --server-side, GitLab is asked to merge when the pipeline succeeds and
the command returns immediately.

Exit status: 0 merged, 2 pipeline failed, 3 timed out, 4 errored,
5 authentication failed, 130 interrupted.

Example:
  gitlab mr automerge 42
  gitlab mr automerge !42 --keep-branch --timeout 2h
  gitlab mr automerge 42 --server-side`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				iid, err := common.ParseIID(args[0])
				if err != nil {
					return err
				}
				c.IID = iid
			}

			var err error
			c.Client, c.Project, err = c.Opts.Setup(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&c.KeepBranch, "keep-branch", false, "Keep the source branch after merging")
	cmd.Flags().DurationVar(&c.Interval, "interval", 0, "Time between pipeline polls (default from config, 10s)")
	cmd.Flags().DurationVar(&c.Timeout, "timeout", 0, "Give up waiting for the pipeline after this long (default from config, 1h)")
	cmd.Flags().BoolVar(&c.ServerSide, "server-side", false, "Let GitLab merge when the pipeline succeeds and return immediately")

	parent.AddCommand(cmd)
}

func (c *AutoMergeCommand) Run(ctx context.Context) error {
	if c.IID == 0 {
		mr, err := c.pick(ctx)
		if err != nil || mr == nil {
			return err
		}
		c.IID = mr.IID
	}

	if c.ServerSide {
		return c.runServerSide(ctx)
	}

	target := automerge.MergeTarget{Project: c.Project, IID: c.IID, KeepBranch: c.KeepBranch}
	opts := common.AutoMergeOptions(c.Opts.Config.AutoMerge, c.Interval, c.Timeout)

	progress := ui.StartProgress(fmt.Sprintf("Auto-merging !%d in %s", c.IID, c.Project))
	result := automerge.New(c.Client, opts, progress.Observer()).Run(ctx, target)
	progress.Stop()

	rec := history.FromResult(c.Opts.Config.Host, result)
	c.record(ctx, rec)

	if c.Opts.JSON {
		if err := ui.PrintJSON(rec); err != nil {
			return err
		}
	} else {
		ui.Print(ui.RenderOutcome(result))
	}
	return common.OutcomeError(result)
}

// pick asks the user to choose among open merge requests
func (c *AutoMergeCommand) pick(ctx context.Context) (*gitlab.MergeRequest, error) {
	if !ui.IsInteractive() {
		return nil, errors.New("merge request iid required when not running in a terminal")
	}

	mrs, err := c.Client.ListMergeRequests(ctx, c.Project, &gitlab.ListMergeRequestsOptions{
		State:   "opened",
		OrderBy: "updated_at",
		PerPage: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}
	if len(mrs) == 0 {
		ui.Infof("No open merge requests in %s", c.Project)
		return nil, nil
	}

	mr, err := ui.SelectMergeRequest(mrs)
	if err != nil {
		return nil, fmt.Errorf("failed to select merge request: %w", err)
	}
	if mr == nil {
		ui.Info("Cancelled")
	}
	return mr, nil
}

func (c *AutoMergeCommand) runServerSide(ctx context.Context) error {
	mr, err := c.Client.SetAutoMerge(ctx, c.Project, c.IID, c.KeepBranch)
	if err != nil {
		return fmt.Errorf("failed to set auto-merge on !%d: %w", c.IID, err)
	}

	return c.Opts.Render(mr, func() string {
		if mr.IsMerged() {
			return ui.SuccessStyle.Render(fmt.Sprintf("✓ !%d merged", mr.IID))
		}
		return ui.SuccessStyle.Render(fmt.Sprintf("✓ !%d will be merged by GitLab when its pipeline succeeds", mr.IID)) +
			" " + ui.Dim(ui.Link(mr.WebURL, mr.WebURL))
	})
}

// record saves the run to the local history. Failure only warns.
func (c *AutoMergeCommand) record(ctx context.Context, rec history.RunRecord) {
	// ctx is already done when the run was interrupted
	ctx = context.WithoutCancel(ctx)

	store := c.History
	if store == nil {
		path, err := history.DefaultPath()
		if err == nil {
			store, err = history.Open(path)
		}
		if err != nil {
			ui.Warningf("Run not recorded in history: %v", err)
			return
		}
		defer store.Close()
	}

	if err := store.Record(ctx, rec); err != nil {
		ui.Warningf("Run not recorded in history: %v", err)
		return
	}
	zerolog.Ctx(ctx).Debug().Str("run_id", rec.ID).Msg("run recorded")
}
