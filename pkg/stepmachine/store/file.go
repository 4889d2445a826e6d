package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists the checkpoint as a single JSON file. It is the
// default backend for CLI programs: the record survives process exit,
// is trivially inspectable, and the operator can read it to see which
// step failed and why.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store writing to the given path.
// Use DefaultPath to derive the conventional location from the running
// binary's name.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath derives the store location from the running program's
// executable: the binary's own path with its extension replaced by
// ".json" (myprog -> myprog.json).
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	ext := filepath.Ext(exe)
	return strings.TrimSuffix(exe, ext) + ".json", nil
}

// Path returns the file path this store writes to.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Clean implements Store.
func (s *FileStore) Clean(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// Close implements Store. A file store holds no resources.
func (s *FileStore) Close() error {
	return nil
}
