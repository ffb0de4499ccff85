package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnvKeys = []string{EnvHost, EnvToken, EnvProject, EnvClientID}

// isolateConfigEnv blanks every GITLAB_ variable LoadFrom reads so the host
// environment cannot leak into a test
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
	assert.Equal(t, 10*time.Second, cfg.AutoMerge.PollInterval.Duration)
	assert.Equal(t, time.Hour, cfg.AutoMerge.Timeout.Duration)
	assert.Equal(t, 1, cfg.Auth.MaxRefreshAttempts)
	assert.False(t, cfg.UsesStaticToken())
	assert.Equal(t, "https://gitlab.com/api/v4", cfg.APIURL())
}

func TestLoadFrom_File(t *testing.T) {
	isolateConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
host = "gitlab.example.com/"
project = "platform/api"

[automerge]
poll_interval = "30s"
timeout = "2h"
max_merge_retries = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gitlab.example.com", cfg.Host)
	assert.Equal(t, "platform/api", cfg.Project)
	assert.Equal(t, 30*time.Second, cfg.AutoMerge.PollInterval.Duration)
	assert.Equal(t, 2*time.Hour, cfg.AutoMerge.Timeout.Duration)
	assert.Equal(t, 2, cfg.AutoMerge.MaxMergeRetries)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.AutoMerge.MaxPollRetries)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv(EnvHost, "http://localhost:8080")
	t.Setenv(EnvToken, "glpat-test")
	t.Setenv(EnvProject, "group/sub/project")
	t.Setenv(EnvClientID, "custom-client")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`host = "https://gitlab.com"`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Host)
	assert.Equal(t, "glpat-test", cfg.Token)
	assert.Equal(t, "group/sub/project", cfg.Project)
	assert.Equal(t, "custom-client", cfg.ClientID)
	assert.True(t, cfg.UsesStaticToken())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed toml", content: `host = `},
		{name: "bad duration", content: "[automerge]\npoll_interval = \"soon\""},
		{name: "zero interval", content: "[automerge]\npoll_interval = \"0s\""},
		{name: "negative retries", content: "[automerge]\nmax_poll_retries = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	isolateConfigEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Project = "team/service"
	cfg.AutoMerge.PollInterval = Duration{45 * time.Second}

	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "gitlab.com", want: "https://gitlab.com"},
		{in: "https://gitlab.com/", want: "https://gitlab.com"},
		{in: "http://localhost:3000//", want: "http://localhost:3000"},
		{in: "  ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHost(tt.in), tt.in)
	}
}

func TestApplyUpdate_SavesFileValuesNotEnv(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv(EnvToken, "glpat-from-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("project = \"old/project\"\n"), 0600))

	cfg, err := ReadFrom(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Token, "environment overrides are not read")

	host, project := "gitlab.example.com/", "platform/api"
	update := Update{Host: &host, Project: &project}
	cfg.Apply(update)
	require.NoError(t, cfg.SaveTo(path))

	saved, err := ReadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.example.com", saved.Host)
	assert.Equal(t, "platform/api", saved.Project)
	assert.Empty(t, saved.Token)
	assert.Equal(t, DefaultClientID, saved.ClientID)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestUpdate(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv(EnvProject, "env/project")

	assert.True(t, Update{}.Empty())

	empty, project, token := "", "group/app", "glpat-1234567890"
	update := Update{Token: &token, Project: &project}
	assert.False(t, update.Empty())
	assert.Equal(t, []string{EnvProject}, update.Shadowed())

	cfg := DefaultConfig()
	cfg.Apply(update)
	assert.Equal(t, token, cfg.Token)
	assert.Equal(t, project, cfg.Project)

	cfg.Apply(Update{Token: &empty})
	assert.Empty(t, cfg.Token)
	assert.False(t, cfg.UsesStaticToken())
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", MaskToken(""))
	assert.Equal(t, "glpat-ab...", MaskToken("glpat-abcdefghij"))
	assert.Equal(t, "*****", MaskToken("short"))
}
