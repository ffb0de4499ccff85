package auth

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type LogoutCommand struct {
	Opts *common.GlobalOptions
}

func (c *LogoutCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Long: `Delete the stored OAuth credential. Logging out when not logged in is not an error.

Example:
  gitlab auth logout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	parent.AddCommand(cmd)
}

func (c *LogoutCommand) Run(ctx context.Context) error {
	engine, err := common.NewAuthEngine(c.Opts.Config)
	if err != nil {
		return err
	}
	if err := engine.Logout(); err != nil {
		return err
	}

	ui.Successf("Logged out of %s", c.Opts.Config.Host)
	if c.Opts.Config.UsesStaticToken() {
		ui.Info("GITLAB_TOKEN is still set and will keep being used")
	}
	return nil
}
