package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "gitlab-cli", "credentials.json"))
}

func testCredential(access string) *Credential {
	return &Credential{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Host:         "https://gitlab.com",
		ClientID:     "client",
	}
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := newTestStore(t)

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	want := testCredential("first")

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testCredential("first")))
	require.NoError(t, store.Save(testCredential("second")))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CrashBeforeRenameKeepsOldCredential(t *testing.T) {
	store := newTestStore(t)
	old := testCredential("old")
	require.NoError(t, store.Save(old))

	crash := errors.New("simulated crash")
	store.beforeRename = func(tmpPath string) error {
		// the new content is complete on disk but never replaces the target
		_, err := os.Stat(tmpPath)
		require.NoError(t, err)
		return crash
	}

	err := store.Save(testCredential("new"))
	require.ErrorIs(t, err, crash)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, old, got)
}

func TestFileStore_LeftoverTempFileIsIgnored(t *testing.T) {
	store := newTestStore(t)
	old := testCredential("old")
	require.NoError(t, store.Save(old))

	// a process killed mid-write leaves a partial temp file next to the target
	partial := filepath.Join(filepath.Dir(store.Path()), ".credentials-12345.tmp")
	require.NoError(t, os.WriteFile(partial, []byte(`{"access_token":"ne`), 0600))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, old, got)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `{"access_token":"abc","expiry":"2030-01-01T00:00:00Z"`},
		{name: "not json", content: `access_token=abc`},
		{name: "empty file", content: ``},
		{name: "unknown field", content: `{"access_token":"abc","expiry":"2030-01-01T00:00:00Z","scope":"api"}`},
		{name: "missing access token", content: `{"refresh_token":"r","expiry":"2030-01-01T00:00:00Z"}`},
		{name: "missing expiry", content: `{"access_token":"abc"}`},
		{name: "trailing data", content: `{"access_token":"abc","expiry":"2030-01-01T00:00:00Z"}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0700))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0600))

			cred, err := store.Load()
			assert.Nil(t, cred)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStorage)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, KindStorage, authErr.Kind)
		})
	}
}

func TestFileStore_Clear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testCredential("gone")))

	require.NoError(t, store.Clear())

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	// clearing twice is not an error
	assert.NoError(t, store.Clear())
}

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{name: "far future", expiry: now.Add(time.Hour), want: false},
		{name: "past", expiry: now.Add(-time.Minute), want: true},
		{name: "inside skew window", expiry: now.Add(ExpirySkew / 2), want: true},
		{name: "exactly at skew", expiry: now.Add(ExpirySkew), want: true},
		{name: "just outside skew", expiry: now.Add(ExpirySkew + time.Second), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := &Credential{AccessToken: "a", Expiry: tt.expiry}
			assert.Equal(t, tt.want, cred.Expired(now))
		})
	}
}
