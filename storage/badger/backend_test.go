package badger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", InMemory())
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")
	backend, err := OpenBackend(dir)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := OpenBackend(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestOpenBackend_LockedByAnotherHandle(t *testing.T) {
	dir := t.TempDir()
	first, err := OpenBackend(dir)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenBackend(dir)
	require.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", InMemory())
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	a := &slogAdapter{logger: logger}

	a.Infof("replaying %d entries\n", 3)
	assert.Empty(t, buf.String())

	a.Warningf("value log %s is large", "000001.vlog")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "000001.vlog")

	a.Errorf("boom")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestOpenBackend_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	backend, err := OpenBackend("", InMemory(), WithLogger(logger))
	require.NoError(t, err)
	defer backend.Close()

	backend.logger.Info("ready")
	assert.Contains(t, buf.String(), "component=catalog")
}
