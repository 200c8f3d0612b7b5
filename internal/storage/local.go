package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalBackend writes objects below a media directory served at baseURL.
type LocalBackend struct {
	root    string
	baseURL string
}

// NewLocalBackend creates a new LocalBackend.
func NewLocalBackend(root, baseURL string) *LocalBackend {
	return &LocalBackend{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Put writes data to root/key.
func (b *LocalBackend) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return path.Join(b.baseURL, key), nil
}
