package mr

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type ShowCommand struct {
	// Arguments
	IID int

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

func (c *ShowCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <iid>",
		Short: "Show a merge request",
		Long: `Show the state, branches, pipeline and merge status of a merge request.

Example:
  gitlab mr show 42
  gitlab mr show !42 --json`,
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

	parent.AddCommand(cmd)
}

func (c *ShowCommand) Run(ctx context.Context) error {
	mr, err := c.Client.GetMergeRequest(ctx, c.Project, c.IID)
	if err != nil {
		if gitlab.IsNotFound(err) {
			return fmt.Errorf("merge request !%d not found in %s", c.IID, c.Project)
		}
		return fmt.Errorf("failed to get merge request !%d: %w", c.IID, err)
	}

	return c.Opts.Render(mr, func() string {
		return ui.RenderMergeRequestDetails(mr)
	})
}
