package issue

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type ListCommand struct {
	State        string
	Assignee     string
	Author       string
	Labels       []string
	Search       string
	CreatedAfter string
	Limit        int

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

func (c *ListCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List issues",
		Long: `List issues in the project, most recently created first.

Example:
  gitlab issue list
  gitlab issue list --labels bug,ci --assignee alice
  gitlab issue list --author bob
  gitlab issue list --state closed --search "flaky test" --created-after 2026-01-01`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.Client, c.Project, err = c.Opts.Setup(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&c.State, "state", "s", "opened", "Filter by state: opened, closed or all")
	cmd.Flags().StringVarP(&c.Assignee, "assignee", "a", "", "Filter by assignee username")
	cmd.Flags().StringVar(&c.Author, "author", "", "Filter by author username")
	cmd.Flags().StringSliceVarP(&c.Labels, "labels", "l", nil, "Filter by labels, comma-separated or repeated (all must match)")
	cmd.Flags().StringVar(&c.Search, "search", "", "Search titles and descriptions")
	cmd.Flags().StringVar(&c.CreatedAfter, "created-after", "", "Only issues created after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().IntVarP(&c.Limit, "limit", "L", 20, "Maximum number of issues to show (1-100)")

	parent.AddCommand(cmd)
}

func (c *ListCommand) Run(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	issues, err := c.Client.ListIssues(ctx, c.Project, opts)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	return c.Opts.Render(issues, func() string {
		return ui.RenderIssueList(issues, time.Now())
	})
}

func (c *ListCommand) options() (*gitlab.ListIssuesOptions, error) {
	if c.Limit < 1 || c.Limit > 100 {
		return nil, fmt.Errorf("--limit must be between 1 and 100, got %d", c.Limit)
	}

	createdAfter, err := common.ParseTimeFlag("created-after", c.CreatedAfter)
	if err != nil {
		return nil, err
	}

	opts := &gitlab.ListIssuesOptions{
		State:            c.State,
		AssigneeUsername: c.Assignee,
		AuthorUsername:   c.Author,
		Labels:           c.Labels,
		Search:           c.Search,
		CreatedAfter:     createdAfter,
		PerPage:          c.Limit,
	}
	if opts.State == "all" {
		opts.State = ""
	}
	return opts, nil
}
