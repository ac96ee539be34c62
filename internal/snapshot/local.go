package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes snapshots under a root directory, mirroring the object
// key as a relative path.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes the body to <root>/<key>, creating parent directories.
func (l *LocalStore) Save(_ context.Context, key string, body []byte) error {
	rel := filepath.FromSlash(key)
	if rel == "" || strings.Contains(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("invalid snapshot key %q", key)
	}
	path := filepath.Join(l.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create snapshot subdir: %w", err)
	}
	if err := os.WriteFile(path, body, 0o640); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}
