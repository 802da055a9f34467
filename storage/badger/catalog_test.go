package badger

import (
	"context"
	"testing"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) storage.CatalogRepository {
	catalog, backend, err := NewMemoryCatalog()
	require.NoError(t, err)
	t.Cleanup(func() {
		catalog.Close()
		backend.Close()
	})
	return catalog
}

func testChunks(n int) []storage.ChunkRecord {
	chunks := make([]storage.ChunkRecord, n)
	for i := range chunks {
		chunks[i] = storage.ChunkRecord{
			Index:       i + 1,
			Pages:       []int{i + 1},
			Titles:      []string{"INTRODUCTION"},
			WordCount:   300,
			Fingerprint: core.IDFromContent("chunk"),
		}
	}
	return chunks
}

func TestCatalog_PutAndGet(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	doc := &storage.DocumentRecord{
		Hash:        "abc123",
		Name:        "nist.pdf",
		PageCount:   4,
		ChunkCount:  3,
		Models:      []string{"minilm", "mpnet"},
		DateIndexed: "2025-01-02",
	}
	require.NoError(t, catalog.PutDocument(ctx, doc, testChunks(3)))

	got, err := catalog.GetDocument(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	chunks, err := catalog.GetChunks(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i+1, chunk.Index)
		assert.Equal(t, "abc123", chunk.DocumentHash)
	}
}

func TestCatalog_GetDocument_NotFound(t *testing.T) {
	catalog := setupCatalog(t)

	_, err := catalog.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalog_ListDocuments_InsertionOrder(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	for _, hash := range []string{"zzz", "aaa", "mmm"} {
		doc := &storage.DocumentRecord{Hash: hash, Name: hash + ".pdf"}
		require.NoError(t, catalog.PutDocument(ctx, doc, nil))
	}

	docs, err := catalog.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "zzz", docs[0].Hash)
	assert.Equal(t, "aaa", docs[1].Hash)
	assert.Equal(t, "mmm", docs[2].Hash)
}

func TestCatalog_PutDocument_Replaces(t *testing.T) {
	catalog := setupCatalog(t)
	ctx := context.Background()

	doc := &storage.DocumentRecord{Hash: "abc", Name: "a.pdf", ChunkCount: 3}
	require.NoError(t, catalog.PutDocument(ctx, doc, testChunks(3)))

	doc.ChunkCount = 1
	require.NoError(t, catalog.PutDocument(ctx, doc, testChunks(1)))

	docs, err := catalog.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "replacing must not add a second ordering entry")

	chunks, err := catalog.GetChunks(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}
