package io

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/TomasH60/semantic-blockchain/pkg/loader"
)

// ErrOutsideRoot is returned for paths that escape the loader's root.
var ErrOutsideRoot = errors.New("path escapes loader root")

// IOSourceLoader loads files directly from the local filesystem with caching.
// When Root is set every path is resolved inside it.
type IOSourceLoader struct {
	Root  string
	cache *loader.Cache
}

// NewIOSourceLoader creates a new filesystem-based loader rooted at root.
func NewIOSourceLoader(root string) *IOSourceLoader {
	return &IOSourceLoader{
		Root:  root,
		cache: loader.NewCache(),
	}
}

// GetFileText reads the file content from the filesystem. Results are cached.
func (l *IOSourceLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := l.resolve(file.Path)
	if err != nil {
		return nil, err
	}

	return l.cache.Get(loader.CacheKey(file), func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

// Forget drops a file from the cache so the next read hits the disk.
func (l *IOSourceLoader) Forget(file loader.SourceFile) {
	l.cache.Forget(loader.CacheKey(file))
}

func (l *IOSourceLoader) resolve(path string) (string, error) {
	if l.Root == "" {
		return path, nil
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, path)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
