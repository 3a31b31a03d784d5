package extension

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvim-markdown-preview/internal/logger"
)

func writeExtension(t *testing.T, base, dirName, manifest string) {
	t.Helper()
	dir := filepath.Join(base, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644))
}

func TestDiscover(t *testing.T) {
	base := t.TempDir()
	writeExtension(t, base, "bravo-dir", `{"name": "bravo"}`)
	writeExtension(t, base, "alpha-dir", `{"name": "alpha"}`)
	writeExtension(t, base, "broken-dir", `{not json`)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "empty-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "stray-file"), []byte("x"), 0o644))

	l := NewLoader(logger.New("test"), WithPaths(base))
	manifests := l.Discover()

	require.Len(t, manifests, 2)
	assert.Equal(t, "alpha", manifests[0].Name)
	assert.Equal(t, "bravo", manifests[1].Name)
}

func TestDiscoverEarlierPathWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExtension(t, first, "ext", `{"name": "dup", "version": "2.0.0"}`)
	writeExtension(t, second, "ext", `{"name": "dup", "version": "1.0.0"}`)

	l := NewLoader(logger.New("test"), WithPaths(first, second))
	manifests := l.Discover()

	require.Len(t, manifests, 1)
	assert.Equal(t, "2.0.0", manifests[0].Version)
}

func TestDiscoverMissingPath(t *testing.T) {
	l := NewLoader(logger.New("test"), WithPaths(filepath.Join(t.TempDir(), "absent")))
	assert.NotPanics(t, func() { l.Discover() })
}
