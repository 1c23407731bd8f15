// Package source fetches resume documents from local disk or object storage.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source returns the raw bytes of the document stored under key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FileSource reads documents from the local filesystem. A non-empty Root
// confines keys to that directory.
type FileSource struct {
	Root string
}

// Fetch reads the file at key, relative to Root when set
func (s FileSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Key: key, Attempts: 1, Err: err}
	}
	return data, nil
}

func (s FileSource) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("document key is required")
	}
	if s.Root == "" {
		return key, nil
	}
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document key %q escapes source root", key)
	}
	return path, nil
}

// FetchError reports a document that could not be retrieved
type FetchError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.Key, e.Attempts, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
