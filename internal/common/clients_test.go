package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/gitlab-cli/internal/auth"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

func TestTokenSource_CorruptStoreCarriesLoginHint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	path, err := auth.DefaultStorePath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":`), 0600))

	var buf bytes.Buffer
	prev := ui.Err
	ui.Err = &buf
	t.Cleanup(func() { ui.Err = prev })

	ts, err := TokenSource(context.Background(), config.DefaultConfig())
	assert.Nil(t, ts)
	require.ErrorIs(t, err, auth.ErrStorage)
	assert.Contains(t, err.Error(), "run 'gitlab auth login' to sign in again")
	assert.Empty(t, buf.String(), "the hint travels with the error instead of being printed")

	code, print := ExitCode(err)
	assert.Equal(t, ExitCodeAuth, code)
	assert.True(t, print)
}

func TestTokenSource_StaticToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Token = "glpat-test"

	ts, err := TokenSource(context.Background(), cfg)
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "glpat-test", tok.AccessToken)
}
