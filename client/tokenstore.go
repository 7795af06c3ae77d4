package client

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// tokenFileName is the fixed key the access token is stored under.
const tokenFileName = "academia_token"

// FileTokenStore persists the access token in a file readable only by the
// owner. It implements session.TokenStore.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{path: filepath.Join(dir, tokenFileName)}
}

func (s *FileTokenStore) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "reading stored token")
	}
	return string(raw), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "persisting token")
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing stored token")
	}
	return nil
}
