package auth

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	gauth "github.com/bjulian5/gitlab-cli/internal/auth"
	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type StatusCommand struct {
	Opts *common.GlobalOptions
}

type statusOutput struct {
	Host        string     `json:"host"`
	LoggedIn    bool       `json:"logged_in"`
	Source      string     `json:"source,omitempty"`
	Username    string     `json:"username,omitempty"`
	Expiry      *time.Time `json:"expiry,omitempty"`
	Expired     bool       `json:"expired"`
	Refreshable bool       `json:"refreshable"`
}

func (c *StatusCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential",
		Long: `Show which credential requests will use, without contacting GitLab.

Exits with status 5 when there is no usable credential.

Example:
  gitlab auth status
  gitlab auth status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	parent.AddCommand(cmd)
}

func (c *StatusCommand) Run(ctx context.Context) error {
	cfg := c.Opts.Config
	out := statusOutput{Host: cfg.Host}

	if cfg.UsesStaticToken() {
		out.LoggedIn = true
		out.Source = "token"
		return c.Opts.Render(out, func() string {
			return ui.SuccessStyle.Render("✓ Using GITLAB_TOKEN for " + cfg.Host)
		})
	}

	engine, err := common.NewAuthEngine(cfg)
	if err != nil {
		return err
	}

	cred, err := engine.Status()
	if err != nil {
		if errors.Is(err, gauth.ErrNoCredential) {
			if renderErr := c.Opts.Render(out, func() string {
				return ui.WarningStyle.Render("⚠ Not logged in to " + cfg.Host + ". Run 'gitlab auth login'")
			}); renderErr != nil {
				return renderErr
			}
			return common.SilentExit(common.ExitCodeAuth)
		}
		return err
	}

	now := time.Now()
	out.LoggedIn = true
	out.Source = "oauth"
	out.Username = cred.Username
	out.Expiry = &cred.Expiry
	out.Expired = cred.Expired(now)
	out.Refreshable = cred.Refreshable()

	return c.Opts.Render(out, func() string {
		return renderStatus(out, now)
	})
}

func renderStatus(out statusOutput, now time.Time) string {
	user := out.Username
	if user == "" {
		user = ui.Dim("unknown")
	} else {
		user = "@" + user
	}

	expiry := "in " + ui.FormatDuration(out.Expiry.Sub(now).Round(time.Second))
	if out.Expired {
		expiry = ui.WarningStyle.Render("expired")
		if out.Refreshable {
			expiry += ui.Dim(" (refreshed on next use)")
		}
	}

	keys := []string{"Host", "User", "Token expires"}
	pairs := map[string]string{
		"Host":          out.Host,
		"User":          user,
		"Token expires": expiry,
	}
	return ui.SuccessStyle.Render("✓ Logged in") + "\n" + ui.RenderKeyValueList(pairs, keys)
}
