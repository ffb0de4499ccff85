package ci

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type WaitCommand struct {
	Select   pipelineFlags
	Interval time.Duration
	Timeout  time.Duration

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

type waitOutput struct {
	PipelineID int    `json:"pipeline_id"`
	Ref        string `json:"ref"`
	Status     string `json:"status"`
	WebURL     string `json:"web_url"`
}

func (c *WaitCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for a pipeline to finish",
		Long: `Poll a pipeline until it finishes.

Exit status: 0 passed, 2 failed, canceled or skipped, 3 timed out.

Example:
  gitlab ci wait
  gitlab ci wait --branch main --interval 30s
  gitlab ci wait --pipeline 4821 && deploy.sh`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.Client, c.Project, err = c.Opts.Setup(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	c.Select.bind(cmd, false)
	cmd.Flags().DurationVar(&c.Interval, "interval", 0, "Time between polls (default from config, 10s)")
	cmd.Flags().DurationVar(&c.Timeout, "timeout", 0, "Give up after this long (default from config, 1h)")

	parent.AddCommand(cmd)
}

func (c *WaitCommand) Run(ctx context.Context) error {
	pipeline, err := c.Select.resolve(ctx, c.Client, c.Project)
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context) (gitlab.PipelineState, error) {
		p, err := c.Client.GetPipeline(ctx, c.Project, pipeline.ID)
		if err != nil {
			return gitlab.PipelineUnknown, err
		}
		return p.State(), nil
	}

	opts := common.AutoMergeOptions(c.Opts.Config.AutoMerge, c.Interval, c.Timeout)
	progress := ui.StartProgress(fmt.Sprintf("Waiting for pipeline #%d (%s)", pipeline.ID, pipeline.Ref))
	state, err := automerge.WaitPipeline(ctx, fetch, opts, progress.Observer())
	progress.Stop()

	switch {
	case errors.Is(err, automerge.ErrWaitTimedOut):
		ui.Warningf("Pipeline #%d is still %s: %v", pipeline.ID, state, err)
		return common.SilentExit(automerge.OutcomeTimedOut.ExitCode())
	case err != nil:
		return err
	}

	out := waitOutput{PipelineID: pipeline.ID, Ref: pipeline.Ref, Status: string(state), WebURL: pipeline.WebURL}
	if err := c.Opts.Render(out, func() string {
		return fmt.Sprintf("%s %s", ui.GetStatus(string(state)).Render(),
			ui.Link(pipeline.WebURL, fmt.Sprintf("pipeline #%d", pipeline.ID)))
	}); err != nil {
		return err
	}

	if state != gitlab.PipelineSuccess {
		return common.SilentExit(automerge.OutcomePipelineFailed.ExitCode())
	}
	return nil
}
