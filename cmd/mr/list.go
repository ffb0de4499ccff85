package mr

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
	State         string
	Author        string
	CreatedAfter  string
	CreatedBefore string
	UpdatedAfter  string
	OrderBy       string
	Sort          string
	Limit         int

	Opts    *common.GlobalOptions
	Client  *gitlab.Client
	Project string
}

func (c *ListCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List merge requests",
		Long: `List merge requests in the project, most recently updated first.

Dates accept YYYY-MM-DD or RFC 3339.

Example:
  gitlab mr list
  gitlab mr list --state merged --author alice --limit 50
  gitlab mr list --created-after 2026-01-01 --order-by created_at --sort asc`,
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

	cmd.Flags().StringVarP(&c.State, "state", "s", "opened", "Filter by state: opened, closed, merged, locked or all")
	cmd.Flags().StringVarP(&c.Author, "author", "a", "", "Filter by author username")
	cmd.Flags().StringVar(&c.CreatedAfter, "created-after", "", "Only merge requests created after this date")
	cmd.Flags().StringVar(&c.CreatedBefore, "created-before", "", "Only merge requests created before this date")
	cmd.Flags().StringVar(&c.UpdatedAfter, "updated-after", "", "Only merge requests updated after this date")
	cmd.Flags().StringVar(&c.OrderBy, "order-by", "updated_at", "Order by created_at, updated_at or title")
	cmd.Flags().StringVar(&c.Sort, "sort", "desc", "Sort direction: asc or desc")
	cmd.Flags().IntVarP(&c.Limit, "limit", "L", 20, "Maximum number of merge requests to show (1-100)")

	parent.AddCommand(cmd)
}

func (c *ListCommand) Run(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	mrs, err := c.Client.ListMergeRequests(ctx, c.Project, opts)
	if err != nil {
		return fmt.Errorf("failed to list merge requests: %w", err)
	}

	return c.Opts.Render(mrs, func() string {
		return ui.RenderMergeRequestList(mrs, time.Now())
	})
}

func (c *ListCommand) options() (*gitlab.ListMergeRequestsOptions, error) {
	if c.Limit < 1 || c.Limit > 100 {
		return nil, fmt.Errorf("--limit must be between 1 and 100, got %d", c.Limit)
	}

	opts := &gitlab.ListMergeRequestsOptions{
		State:          c.State,
		AuthorUsername: c.Author,
		OrderBy:        c.OrderBy,
		Sort:           c.Sort,
		PerPage:        c.Limit,
	}
	if opts.State == "all" {
		opts.State = ""
	}

	var err error
	if opts.CreatedAfter, err = common.ParseTimeFlag("created-after", c.CreatedAfter); err != nil {
		return nil, err
	}
	if opts.CreatedBefore, err = common.ParseTimeFlag("created-before", c.CreatedBefore); err != nil {
		return nil, err
	}
	if opts.UpdatedAfter, err = common.ParseTimeFlag("updated-after", c.UpdatedAfter); err != nil {
		return nil, err
	}
	return opts, nil
}
