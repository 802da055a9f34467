package vectorindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/pdfcorpus/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidDimension(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestIndex_AddAndVector(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	require.NoError(t, idx.Add([][]float32{{1, 0}, {0, 1}}))
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []float32{0, 1}, idx.Vector(1))
}

func TestIndex_AddMismatchLeavesIndexUnchanged(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1, 0}}))

	err = idx.Add([][]float32{{1, 1}, {1, 1, 1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Search(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1, 0}, {0, 1}, {0.7, 0.7}, {0, 1}}))

	hits, err := idx.Search([]float32{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 3, hits[1].Position)
	assert.Equal(t, 2, hits[2].Position)

	_, err = idx.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_MarshalRoundTrip(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1, 2, 3}, {-1, 0.5, 0}}))

	got, err := Unmarshal(idx.Marshal())
	require.NoError(t, err)
	assert.Equal(t, idx.Dim(), got.Dim())
	assert.Equal(t, idx.data, got.data)
}

func TestUnmarshal_Corrupt(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1, 2}}))
	data := idx.Marshal()

	_, err = Unmarshal(data[:len(data)-2])
	assert.Error(t, err)

	_, err = Unmarshal(append(data, 0))
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)

	enc := storage.NewEncoder(16)
	enc.String("something/else")
	_, err = Unmarshal(enc.Bytes())
	assert.ErrorIs(t, err, storage.ErrBadMagic)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "index_minilm.bin"))
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestUpdate_CreateThenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors", "index_minilm.bin")

	res, err := Update(path, [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Dim)

	res, err = Update(path, [][]float32{{1, 1, 1}, {2, 2, 2}})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 5, res.Total)

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, []float32{1, 0, 0}, idx.Vector(0))
	assert.Equal(t, []float32{2, 2, 2}, idx.Vector(4))
}

func TestUpdate_DimensionMismatchKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_mpnet.bin")
	_, err := Update(path, [][]float32{{1, 2}})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Update(path, [][]float32{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdate_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index_minilm.bin")

	res, err := Update(path, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NoFileExists(t, path)

	_, err = Update(path, [][]float32{{1}})
	require.NoError(t, err)
	res, err = Update(path, [][]float32{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Zero(t, res.Added)
}

func TestUpdate_Monotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	prev := 0
	for batch := 1; batch <= 4; batch++ {
		vectors := make([][]float32, batch)
		for i := range vectors {
			vectors[i] = []float32{float32(batch), float32(i)}
		}
		res, err := Update(path, vectors)
		require.NoError(t, err)
		assert.Equal(t, prev+batch, res.Total)
		prev = res.Total
	}
}
