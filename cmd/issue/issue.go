package issue

import (
	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
)

// Command is the parent command for all issue subcommands
type Command struct {
	Opts *common.GlobalOptions
}

// Register registers the issue command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Work with issues",
		Long:  `Commands for working with project issues.`,
	}

	(&ListCommand{Opts: c.Opts}).Register(cmd)

	parent.AddCommand(cmd)
}
