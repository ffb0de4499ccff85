package mr

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type MergeCommand struct {
	// Arguments
	IID int

	// Flags
	KeepBranch bool

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

func (c *MergeCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "merge <iid>",
		Short: "Merge a merge request now",
		Long: `Merge a merge request immediately, without waiting for its pipeline.
Use 'gitlab mr automerge' to wait for the pipeline first.

The source branch is deleted unless --keep-branch is given. Merging a merge
request that is already merged succeeds.

Example:
  gitlab mr merge 42
  gitlab mr merge !42 --keep-branch`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			iid, err := common.ParseIID(args[0])
			if err != nil {
				return err
			}
			c.IID = iid

			c.Client, c.Project, err = c.Opts.Setup(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&c.KeepBranch, "keep-branch", false, "Keep the source branch after merging")

	parent.AddCommand(cmd)
}

func (c *MergeCommand) Run(ctx context.Context) error {
	if err := c.Client.MergeMergeRequest(ctx, c.Project, c.IID, c.KeepBranch); err != nil {
		if gitlab.IsNotFound(err) {
			return fmt.Errorf("merge request !%d not found in %s", c.IID, c.Project)
		}
		return fmt.Errorf("failed to merge !%d: %w", c.IID, err)
	}

	mr, err := c.Client.GetMergeRequest(ctx, c.Project, c.IID)
	if err != nil {
		return fmt.Errorf("merged !%d but could not read it back: %w", c.IID, err)
	}

	return c.Opts.Render(mr, func() string {
		return ui.SuccessStyle.Render(fmt.Sprintf("✓ Merged !%d %s", mr.IID, mr.Title))
	})
}
