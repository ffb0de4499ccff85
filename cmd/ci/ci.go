package ci

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

// Command is the parent command for all ci subcommands
type Command struct {
	Opts *common.GlobalOptions
}

// Register registers the ci command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ci",
		Short: "Inspect pipelines and jobs",
		Long: `Commands for watching and retrying pipelines and reading job logs.

Without --pipeline, --mr or --branch, the latest pipeline of the currently
checked out branch is used.`,
	}

	(&StatusCommand{Opts: c.Opts}).Register(cmd)
	(&WaitCommand{Opts: c.Opts}).Register(cmd)
	(&LogsCommand{Opts: c.Opts}).Register(cmd)
	(&RetryCommand{Opts: c.Opts}).Register(cmd)

	parent.AddCommand(cmd)
}

// pipelineFlags selects one pipeline
type pipelineFlags struct {
	PipelineID int
	MR         int
	Branch     string
}

func (f *pipelineFlags) bind(cmd *cobra.Command, withMR bool) {
	cmd.Flags().IntVarP(&f.PipelineID, "pipeline", "p", 0, "Pipeline ID")
	cmd.Flags().StringVarP(&f.Branch, "branch", "b", "", "Use the latest pipeline of this branch")
	if withMR {
		cmd.Flags().IntVarP(&f.MR, "mr", "m", 0, "Use the latest pipeline of this merge request")
		cmd.MarkFlagsMutuallyExclusive("pipeline", "branch", "mr")
		return
	}
	cmd.MarkFlagsMutuallyExclusive("pipeline", "branch")
}

// resolve fetches the selected pipeline, defaulting to the current branch
func (f *pipelineFlags) resolve(ctx context.Context, client *gitlab.Client, project string) (*gitlab.Pipeline, error) {
	switch {
	case f.PipelineID > 0:
		p, err := client.GetPipeline(ctx, project, f.PipelineID)
		if err != nil {
			return nil, fmt.Errorf("failed to get pipeline %d: %w", f.PipelineID, err)
		}
		return p, nil

	case f.MR > 0:
		pipelines, err := client.ListMergeRequestPipelines(ctx, project, f.MR)
		if err != nil {
			return nil, fmt.Errorf("failed to list pipelines of !%d: %w", f.MR, err)
		}
		if len(pipelines) == 0 {
			return nil, fmt.Errorf("merge request !%d has no pipelines", f.MR)
		}
		return &pipelines[0], nil
	}

	branch := f.Branch
	if branch == "" {
		var err error
		branch, err = common.CurrentBranch(".")
		if err != nil {
			return nil, errors.Join(errors.New("no --pipeline or --branch given and no current branch"), err)
		}
	}

	p, err := client.LatestPipeline(ctx, project, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to find pipeline: %w", err)
	}
	return p, nil
}
