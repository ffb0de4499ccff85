package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	gauth "github.com/bjulian5/gitlab-cli/internal/auth"
	"github.com/bjulian5/gitlab-cli/internal/common"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

type LoginCommand struct {
	Force bool

	Opts *common.GlobalOptions
}

func (c *LoginCommand) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the OAuth device flow",
		Long: `Sign in to the configured GitLab host with the OAuth device flow.

A one-time code is printed along with a URL. Open the URL in any browser,
enter the code and approve access; the CLI picks up the token on its own.

Example:
  gitlab auth login
  GITLAB_HOST=gitlab.example.com gitlab auth login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&c.Force, "force", "f", false, "Sign in again without asking when already signed in")

	parent.AddCommand(cmd)
}

func (c *LoginCommand) Run(ctx context.Context) error {
	cfg := c.Opts.Config
	if cfg.UsesStaticToken() {
		ui.Warning("GITLAB_TOKEN is set and will be used instead of this login")
	}

	engine, err := common.NewAuthEngine(cfg)
	if err != nil {
		return err
	}

	existing, err := engine.Status()
	switch {
	case err == nil:
		if !c.Force {
			if !ui.IsInteractive() {
				ui.Infof("Already logged in to %s%s. Use --force to sign in again", cfg.Host, asUser(existing))
				return nil
			}
			if !ui.Confirm("Already logged in to " + cfg.Host + asUser(existing) + ". Sign in again?") {
				return nil
			}
		}
	case errors.Is(err, gauth.ErrStorage):
		ui.Warningf("Replacing unreadable credentials: %v", err)
	case !errors.Is(err, gauth.ErrNoCredential):
		return err
	}

	cred, err := engine.Login(ctx)
	if err != nil {
		return err
	}

	if cred.Username == "" {
		cred.Username = lookupUsername(ctx, cfg.APIURL(), cred)
	}
	ui.Successf("Logged in to %s%s", cfg.Host, asUser(cred))
	return nil
}

// lookupUsername asks GitLab who the new token belongs to when the token
// response carried no id_token. Failure only leaves the name out.
func lookupUsername(ctx context.Context, apiURL string, cred *gauth.Credential) string {
	client, err := gitlab.NewClient(apiURL, cred.TokenSource())
	if err != nil {
		return ""
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("could not look up current user")
		return ""
	}
	return user.Username
}

func asUser(cred *gauth.Credential) string {
	if cred == nil || cred.Username == "" {
		return ""
	}
	return " as @" + cred.Username
}
