package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bjulian5/gitlab-cli/internal/config"
)

const credentialsFileName = "credentials.json"

// Store persists the current credential
type Store interface {
	// Load returns nil without error when no credential is stored
	Load() (*Credential, error)
	Save(cred *Credential) error
	Clear() error
}

var _ Store = (*FileStore)(nil)

// FileStore keeps the credential in a single JSON file that is only ever
// replaced by rename, so readers see either the old or the new content.
type FileStore struct {
	path string

	// beforeRename runs after the temp file is fully written; tests use it to
	// simulate a crash before the replace
	beforeRename func(tmpPath string) error
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns credentials.json in the user config directory
func DefaultStorePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credentialsFileName), nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, StorageError(s.path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cred Credential
	if err := dec.Decode(&cred); err != nil {
		return nil, StorageError(s.path, fmt.Errorf("malformed credential: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, StorageError(s.path, errors.New("malformed credential: trailing data"))
	}
	if cred.AccessToken == "" {
		return nil, StorageError(s.path, errors.New("credential has no access token"))
	}
	if cred.Expiry.IsZero() {
		return nil, StorageError(s.path, errors.New("credential has no expiry"))
	}

	return &cred, nil
}

func (s *FileStore) Save(cred *Credential) error {
	if cred == nil {
		return errors.New("cannot save nil credential")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close credential: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set credential permissions: %w", err)
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmpPath); err != nil {
			os.Remove(tmpPath)
			return err
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace credential: %w", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}
