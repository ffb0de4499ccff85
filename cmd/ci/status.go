package ci

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type StatusCommand struct {
	Select pipelineFlags

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

type statusOutput struct {
	Pipeline *gitlab.Pipeline `json:"pipeline"`
	Jobs     []gitlab.Job     `json:"jobs"`
}

func (c *StatusCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a pipeline and its jobs",
		Long: `Show a pipeline with its jobs grouped by stage.

Example:
  gitlab ci status
  gitlab ci status --mr 42
  gitlab ci status --pipeline 4821 --json`,
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

	c.Select.bind(cmd, true)

	parent.AddCommand(cmd)
}

func (c *StatusCommand) Run(ctx context.Context) error {
	pipeline, err := c.Select.resolve(ctx, c.Client, c.Project)
	if err != nil {
		return err
	}

	jobs, err := c.Client.ListPipelineJobs(ctx, c.Project, pipeline.ID)
	if err != nil {
		return fmt.Errorf("failed to list jobs of pipeline %d: %w", pipeline.ID, err)
	}
	// GitLab lists jobs newest first
	for i, j := 0, len(jobs)-1; i < j; i, j = i+1, j-1 {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}

	return c.Opts.Render(statusOutput{Pipeline: pipeline, Jobs: jobs}, func() string {
		return ui.RenderPipelineTree(pipeline, jobs)
	})
}
