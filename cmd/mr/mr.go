package mr

import (
	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
)

// Command is the parent command for all mr subcommands
type Command struct {
	Opts *common.GlobalOptions
}

// Register registers the mr command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "mr",
		Aliases: []string{"merge-request"},
		Short:   "Work with merge requests",
		Long:    `Commands for listing, inspecting and merging merge requests.`,
	}

	(&AutoMergeCommand{Opts: c.Opts}).Register(cmd)
	(&MergeCommand{Opts: c.Opts}).Register(cmd)
	(&ListCommand{Opts: c.Opts}).Register(cmd)
	(&ShowCommand{Opts: c.Opts}).Register(cmd)
	(&HistoryCommand{Opts: c.Opts}).Register(cmd)

	parent.AddCommand(cmd)
}
