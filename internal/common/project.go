package common

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/git"
)

// ErrNoProject is returned when no source names a project
var ErrNoProject = errors.New("no project given: use --project, set GITLAB_PROJECT, or run inside a clone with an origin remote")

// ResolveProject picks the project path, in order: the --project flag, the
// config (which already carries GITLAB_PROJECT), then the origin remote of the
// repository containing dir
func ResolveProject(ctx context.Context, flag string, cfg *config.Config, dir string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.Project != "" {
		return cfg.Project, nil
	}

	gitClient, err := git.NewClientAt(dir)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return "", ErrNoProject
		}
		return "", err
	}

	remote, err := gitClient.RemoteProject("origin")
	if err != nil {
		return "", fmt.Errorf("%w (%v)", ErrNoProject, err)
	}

	if u, err := url.Parse(cfg.Host); err == nil && u.Hostname() != remote.Host {
		zerolog.Ctx(ctx).Warn().Str("remote_host", remote.Host).Str("host", u.Hostname()).
			Msg("origin remote points at a different host than the configured one")
	}
	return remote.Path, nil
}

// CurrentBranch returns the branch checked out in the repository containing dir
func CurrentBranch(dir string) (string, error) {
	gitClient, err := git.NewClientAt(dir)
	if err != nil {
		return "", err
	}
	return gitClient.CurrentBranch()
}
