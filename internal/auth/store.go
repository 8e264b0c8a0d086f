package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the single StoredToken record to a local file with
// owner-only permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the token as the file's entire contents. The write is atomic
// from a reader's perspective: the record is written to a temp file in the
// same directory and renamed over the target, so a concurrent Load never
// sees a partial record. Concurrent saves are last-writer-wins.
func (s *FileStore) Save(token *StoredToken) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// Load returns the stored token, or nil if the file does not exist or does
// not parse as valid JSON. A corrupt or empty file means "logged out", not
// a fatal error.
func (s *FileStore) Load() (*StoredToken, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token StoredToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, nil
	}

	return &token, nil
}

// Clear truncates the token file to empty content when it exists, a no-op
// otherwise. The file is deliberately emptied rather than deleted; Load
// treats an empty file the same as a missing one.
func (s *FileStore) Clear() error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat token file: %w", err)
	}

	if err := os.WriteFile(s.path, []byte{}, 0600); err != nil {
		return fmt.Errorf("failed to clear token file: %w", err)
	}

	return nil
}
