package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.bin")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteJSONAtomic_KeepsNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.json")
	require.NoError(t, WriteJSONAtomic(path, []string{"Protección de datos <b>"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Protección de datos <b>")

	var back []string
	require.NoError(t, ReadJSON(path, &back))
	assert.Equal(t, []string{"Protección de datos <b>"}, back)
}
