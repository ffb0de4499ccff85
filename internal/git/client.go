package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository contains the directory
var ErrNotRepository = errors.New("not in a git repository")

// Client reads the local repository the CLI runs in
type Client struct {
	repo    *git.Repository
	gitRoot string
}

// NewClient opens the repository containing the current directory
func NewClient() (*Client, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewClientAt(cwd)
}

// NewClientAt opens the repository containing path, walking up to find .git
func NewClientAt(path string) (*Client, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Client{repo: repo, gitRoot: root}, nil
}

// GitRoot returns the root directory of the git repository
func (c *Client) GitRoot() string {
	return c.gitRoot
}

// CurrentBranch returns the checked out branch name. It works on a branch
// with no commits yet and fails on a detached HEAD.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference {
		if target := head.Target(); target.IsBranch() {
			return target.Short(), nil
		}
	}
	return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:8])
}

// RemoteURL returns the first fetch URL of the named remote
func (c *Client) RemoteURL(name string) (string, error) {
	remote, err := c.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", fmt.Errorf("remote %q not found", name)
		}
		return "", fmt.Errorf("failed to read remote %q: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", name)
	}
	return urls[0], nil
}

// RemoteProject returns the GitLab project the named remote points at
func (c *Client) RemoteProject(name string) (RemoteProject, error) {
	raw, err := c.RemoteURL(name)
	if err != nil {
		return RemoteProject{}, err
	}
	return ParseRemoteURL(raw)
}
