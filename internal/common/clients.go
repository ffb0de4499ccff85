package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/bjulian5/gitlab-cli/internal/auth"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

// NewAuthEngine builds the auth engine for the configured host, storing the
// credential in the default location
func NewAuthEngine(cfg *config.Config) (*auth.Engine, error) {
	path, err := auth.DefaultStorePath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate credential store: %w", err)
	}

	engine := auth.NewEngine(auth.EngineConfig{
		Host:               cfg.Host,
		ClientID:           cfg.ClientID,
		Scopes:             cfg.Scopes,
		MaxRefreshAttempts: cfg.Auth.MaxRefreshAttempts,
	}, auth.NewFileStore(path), DeviceCodePrompter())
	return engine, nil
}

// DeviceCodePrompter prints the one-time code and verification URL
func DeviceCodePrompter() auth.Prompter {
	return auth.PrompterFunc(func(ctx context.Context, code auth.DeviceCode) {
		url := code.VerificationURI
		if code.VerificationURIComplete != "" {
			url = code.VerificationURIComplete
		}

		ui.Infof("First copy your one-time code: %s", ui.Highlight(code.UserCode))
		ui.Infof("Then open %s in your browser to authorize this device", url)
		if !code.Expiry.IsZero() {
			ui.Info(ui.Dim(fmt.Sprintf("The code expires in %s. Waiting for authorization...",
				time.Until(code.Expiry).Round(time.Second))))
		}
	})
}

// TokenSource returns the token requests should carry: the configured
// personal access token, or a credential from the auth engine that is
// refreshed whenever it nears expiry
func TokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.UsesStaticToken() {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}), nil
	}

	engine, err := NewAuthEngine(cfg)
	if err != nil {
		return nil, err
	}

	// authenticate up front so a device flow happens before any command output
	cred, err := engine.EnsureValidCredential(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrStorage) {
			return nil, fmt.Errorf("%w; run 'gitlab auth login' to sign in again", err)
		}
		return nil, err
	}
	return engine.TokenSource(ctx, cred), nil
}

// InitClients authenticates and builds the GitLab client.
// Returns an error that is suitable for use in PreRunE hooks
func InitClients(ctx context.Context, cfg *config.Config) (*gitlab.Client, error) {
	ts, err := TokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := gitlab.NewClient(cfg.APIURL(), ts)
	if err != nil {
		return nil, fmt.Errorf("gitlab client initialization failed: %w", err)
	}
	return client, nil
}
