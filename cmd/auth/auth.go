package auth

import (
	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
)

// Command is the parent command for all auth subcommands
type Command struct {
	Opts *common.GlobalOptions
}

// Register registers the auth command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to GitLab",
		Long: `Manage the OAuth credential used to talk to GitLab.

The credential is stored in the user config directory and refreshed
automatically. A GITLAB_TOKEN personal access token, when set, takes
precedence over it.`,
	}

	(&LoginCommand{Opts: c.Opts}).Register(cmd)
	(&StatusCommand{Opts: c.Opts}).Register(cmd)
	(&LogoutCommand{Opts: c.Opts}).Register(cmd)

	parent.AddCommand(cmd)
}
