package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	perrors "github.com/parleychat/parley/internal/errors"
)

// Storage persists a session as JSON in a single file readable only by the
// current user.
type Storage struct {
	path string
}

// NewStorage returns a Storage backed by path. An empty path disables
// persistence.
func NewStorage(path string) *Storage {
	return &Storage{path: path}
}

// Path returns the backing file path.
func (s *Storage) Path() string {
	return s.path
}

// Load returns the persisted session, or nil if there is none.
func (s *Storage) Load() (*Session, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, perrors.SessionStorageFailed(s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, perrors.SessionStorageFailed(s.path, err)
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes session atomically. A nil session removes the file.
func (s *Storage) Save(session *Session) error {
	if s.path == "" {
		return nil
	}
	if session == nil {
		return s.Remove()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return perrors.SessionStorageFailed(s.path, err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return perrors.SessionStorageFailed(s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return perrors.SessionStorageFailed(s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return perrors.SessionStorageFailed(s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return perrors.SessionStorageFailed(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return perrors.SessionStorageFailed(s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return perrors.SessionStorageFailed(s.path, err)
	}
	return nil
}

// Remove deletes the persisted session. A missing file is not an error.
func (s *Storage) Remove() error {
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return perrors.SessionStorageFailed(s.path, err)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return perrors.SessionStorageFailed(dir, err)
	}
	return nil
}
