package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/cmd/auth"
	"github.com/bjulian5/gitlab-cli/cmd/ci"
	configcmd "github.com/bjulian5/gitlab-cli/cmd/config"
	"github.com/bjulian5/gitlab-cli/cmd/issue"
	"github.com/bjulian5/gitlab-cli/cmd/mr"
	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/logging"
)

// ExitError lets a command choose its process exit status
type ExitError = common.ExitError

// globals is shared with every subcommand
var globals = &common.GlobalOptions{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "GitLab from the command line",
	Long: `gitlab works with merge requests, issues and pipelines on GitLab.

Sign in once with 'gitlab auth login' (OAuth device flow) or set GITLAB_TOKEN
to a personal access token. The project is taken from --project, GITLAB_PROJECT,
the config file, or the origin remote of the current repository.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(os.Stderr, globals.Verbose)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		globals.Config = cfg

		logger.Debug().Str("host", cfg.Host).Bool("static_token", cfg.UsesStaticToken()).Msg("config loaded")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if code := common.Report(rootCmd.ExecuteContext(ctx)); code != 0 {
		os.Exit(code)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globals.Project, "project", "R", "", "Project path, e.g. group/app (default: origin remote)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "Show debug logs on stderr")
	rootCmd.PersistentFlags().BoolVar(&globals.JSON, "json", false, "Print output as JSON")

	// Register all commands
	commands := []Command{
		&auth.Command{Opts: globals},
		&mr.Command{Opts: globals},
		&issue.Command{Opts: globals},
		&ci.Command{Opts: globals},
		&configcmd.Command{Opts: globals},
	}

	for _, cmd := range commands {
		cmd.Register(rootCmd)
	}
}
