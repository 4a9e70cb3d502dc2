package viewer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/gltfview/internal/config"
)

func waitChanged(w *watcher, d time.Duration) bool {
	select {
	case <-w.changed:
		return true
	case <-time.After(d):
		return false
	}
}

func TestWatcher_ReportsTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangle(t, dir, triangle)

	m, err := LoadModel(config.ModelConfig{Path: path})
	require.NoError(t, err)

	w, err := newWatcher()
	require.NoError(t, err)
	defer w.Close()
	w.track(m.Files())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	assert.False(t, waitChanged(w, 200*time.Millisecond), "untracked file triggered a change")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), make([]byte, 36), 0o644))
	assert.True(t, waitChanged(w, 2*time.Second), "buffer write not reported")
}

func TestModel_Files(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangle(t, dir, triangle)

	m, err := LoadModel(config.ModelConfig{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{path, filepath.Join(dir, "tri.bin")}, m.Files())
}
