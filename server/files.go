package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// fileStore receives attachment uploads. The rest of the system only ever
// sees the returned location string.
type fileStore struct {
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// Save copies the stream to disk under a fresh name. The original filename
// contributes only its extension; it is otherwise untrusted input.
func (f *fileStore) Save(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(f.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove is best-effort; a missing file is not an error.
func (f *fileStore) Remove(location string) error {
	err := os.Remove(location)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
