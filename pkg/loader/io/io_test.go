package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasH60/semantic-blockchain/pkg/loader"
)

func TestIOSourceLoaderReadsAndCaches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blocks.ttl")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o600))

	l := NewIOSourceLoader(root)
	f, err := loader.NewSourceFile(loader.NewSourceFileParams{Path: "blocks.ttl", Loader: l})
	require.NoError(t, err)

	text, err := f.GetText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", string(text))

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o600))
	text, err = f.GetText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", string(text))

	l.Forget(f)
	text, err = f.GetText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", string(text))
}

func TestIOSourceLoaderRejectsEscapes(t *testing.T) {
	l := NewIOSourceLoader(t.TempDir())
	f, err := loader.NewSourceFile(loader.NewSourceFileParams{Path: "../../etc/passwd.nt", Loader: l})
	require.NoError(t, err)

	_, err = f.GetText(context.Background())
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestIOSourceLoaderMissingFile(t *testing.T) {
	l := NewIOSourceLoader(t.TempDir())
	f, err := loader.NewSourceFile(loader.NewSourceFileParams{Path: "missing.ttl", Loader: l})
	require.NoError(t, err)

	_, err = f.GetText(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIOSourceLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewIOSourceLoader("")
	_, err := l.GetFileText(ctx, loader.SourceFile{Path: "whatever.ttl"})
	assert.ErrorIs(t, err, context.Canceled)
}
