package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is the URL path under which Local files are served.
const LocalURLPrefix = "/uploads/"

// Local stores uploads in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the root directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Put writes data under key and returns its path below LocalURLPrefix.
func (l *Local) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload subdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", key, err)
	}
	return LocalURLPrefix + key, nil
}

// Remove deletes a file previously returned by Put. Paths outside
// LocalURLPrefix and files already gone are ignored.
func (l *Local) Remove(_ context.Context, p string) error {
	if !strings.HasPrefix(p, LocalURLPrefix) {
		return nil
	}
	full, err := l.resolve(strings.TrimPrefix(p, LocalURLPrefix))
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// resolve maps a key to a file path, refusing keys that escape the root.
func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid upload key %q", key)
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}
