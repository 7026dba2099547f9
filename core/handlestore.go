package session

import (
	"errors"
	"os"
	"strings"
)

// FileHandleStore persists the resumption handle to a single file so a
// restarted process can pick the conversation back up.
type FileHandleStore struct {
	Path string
}

func NewFileHandleStore(path string) *FileHandleStore {
	return &FileHandleStore{Path: path}
}

// Load returns the stored handle, or "" when none has been saved yet.
func (s *FileHandleStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileHandleStore) Save(handle string) error {
	return os.WriteFile(s.Path, []byte(handle), 0o600)
}
