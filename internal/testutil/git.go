package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// NewTestRepo creates a repository in a temporary directory with one commit on
// branch and an origin remote pointing at originURL (skipped when empty). It
// returns the repository root.
func NewTestRepo(t *testing.T, branch, originURL string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "README.md"), []byte("test\n"), 0o644)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	// fixed timestamp: time.Now() is frozen under synctest
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, err = wt.Commit("Initial commit", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	if originURL != "" {
		_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{originURL}})
		require.NoError(t, err)
	}
	return dir
}

// CheckoutNewBranch creates branch at HEAD in the repository at dir and checks it out
func CheckoutNewBranch(t *testing.T, dir, branch string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	err = wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch), Create: true})
	require.NoError(t, err)
}

// DetachHead checks out HEAD's commit directly, leaving no branch checked out
func DetachHead(t *testing.T, dir string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))
}
