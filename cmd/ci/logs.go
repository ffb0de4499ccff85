package ci

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type LogsCommand struct {
	// Arguments
	Job string

	Select pipelineFlags

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

type logsOutput struct {
	JobID int    `json:"job_id"`
	Trace string `json:"trace"`
}

func (c *LogsCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logs <job>",
		Short: "Print a job's log",
		Long: `Print the log of a job, given by name or numeric ID.

A name is looked up in the selected pipeline. When several jobs share the
name (retries), the newest one is used.

Example:
  gitlab ci logs unit-tests
  gitlab ci logs lint --branch main
  gitlab ci logs 918273`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			c.Job = args[0]

			var err error
			c.Client, c.Project, err = c.Opts.Setup(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	c.Select.bind(cmd, false)

	parent.AddCommand(cmd)
}

func (c *LogsCommand) Run(ctx context.Context) error {
	jobID, err := resolveJob(ctx, c.Client, c.Project, &c.Select, c.Job)
	if err != nil {
		return err
	}

	trace, err := c.Client.GetJobTrace(ctx, c.Project, jobID)
	if err != nil {
		return fmt.Errorf("failed to get log of job %d: %w", jobID, err)
	}

	if c.Opts.JSON {
		return ui.PrintJSON(logsOutput{JobID: jobID, Trace: trace})
	}
	fmt.Fprint(ui.Out, trace)
	return nil
}

// resolveJob takes a numeric job ID as-is and looks a name up in the
// selected pipeline
func resolveJob(ctx context.Context, client *gitlab.Client, project string, sel *pipelineFlags, job string) (int, error) {
	if id, err := strconv.Atoi(job); err == nil {
		return id, nil
	}

	pipeline, err := sel.resolve(ctx, client, project)
	if err != nil {
		return 0, err
	}
	jobs, err := client.ListPipelineJobs(ctx, project, pipeline.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list jobs of pipeline %d: %w", pipeline.ID, err)
	}
	return findJob(jobs, job, pipeline.ID)
}

// findJob returns the ID of the newest job named name
func findJob(jobs []gitlab.Job, name string, pipelineID int) (int, error) {
	id := 0
	for _, job := range jobs {
		if job.Name == name && job.ID > id {
			id = job.ID
		}
	}
	if id == 0 {
		return 0, fmt.Errorf("no job named %q in pipeline %d", name, pipelineID)
	}
	return id, nil
}
