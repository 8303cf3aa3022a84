package session

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// TokenStore is the single durable slot holding the credential artifact.
// Nothing else about the session is persisted.
type TokenStore interface {
	// Load returns the stored token. ok is false when the slot is empty.
	Load() (token string, ok bool, err error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in a single file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. Parent directories are
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "read token file")
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}
	// 0600: the token grants access to the backend.
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token file")
	}
	return nil
}

// MemStore is an in-memory TokenStore for tests.
type MemStore struct {
	token string
	ok    bool
}

func (s *MemStore) Load() (string, bool, error) { return s.token, s.ok, nil }

func (s *MemStore) Save(token string) error {
	s.token = token
	s.ok = true
	return nil
}

func (s *MemStore) Clear() error {
	s.token = ""
	s.ok = false
	return nil
}
