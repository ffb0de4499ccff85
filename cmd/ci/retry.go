package ci

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type RetryCommand struct {
	// Arguments
	Job string

	Select pipelineFlags

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

func (c *RetryCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "retry [job]",
		Short: "Retry a job or a pipeline",
		Long: `Retry one job, given by name or numeric ID, or every failed and
canceled job of the selected pipeline when no job is given.

A job name is looked up in the selected pipeline; the newest job with that
name is retried.

Example:
  gitlab ci retry
  gitlab ci retry --pipeline 4821
  gitlab ci retry unit-tests --branch main
  gitlab ci retry 918273`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.Job = args[0]
			}

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

func (c *RetryCommand) Run(ctx context.Context) error {
	if c.Job == "" {
		return c.retryPipeline(ctx)
	}

	jobID, err := resolveJob(ctx, c.Client, c.Project, &c.Select, c.Job)
	if err != nil {
		return err
	}

	job, err := c.Client.RetryJob(ctx, c.Project, jobID)
	if err != nil {
		return fmt.Errorf("failed to retry job %d: %w", jobID, err)
	}

	return c.Opts.Render(job, func() string {
		return withLink(fmt.Sprintf("✓ Retried %s as job %d", job.Name, job.ID), job.WebURL)
	})
}

func (c *RetryCommand) retryPipeline(ctx context.Context) error {
	pipeline, err := c.Select.resolve(ctx, c.Client, c.Project)
	if err != nil {
		return err
	}

	retried, err := c.Client.RetryPipeline(ctx, c.Project, pipeline.ID)
	if err != nil {
		return fmt.Errorf("failed to retry pipeline %d: %w", pipeline.ID, err)
	}

	return c.Opts.Render(retried, func() string {
		return withLink(fmt.Sprintf("✓ Retried pipeline #%d (%s)", retried.ID, retried.Ref), retried.WebURL)
	})
}

func withLink(msg, url string) string {
	msg = ui.SuccessStyle.Render(msg)
	if url == "" {
		return msg
	}
	return msg + "\n" + ui.Link(url, url)
}
