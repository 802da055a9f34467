package storage

import (
	"context"

	"github.com/poiesic/pdfcorpus/core"
)

// DocumentRecord is the catalog entry for one ingested Document.
type DocumentRecord struct {
	Hash        string
	Name        string
	PageCount   int
	ChunkCount  int
	Models      []string // Model aliases the document was embedded with
	DateIndexed string
}

// ChunkRecord is the catalog's provenance entry for one Chunk.
// Chunk text itself stays in the chunk files.
type ChunkRecord struct {
	DocumentHash string
	Index        int
	Pages        []int
	Titles       []string
	WordCount    int
	Fingerprint  core.ID // IDFromContent of the chunk text
}

// CatalogRepository stores ingested documents and their chunk provenance.
// Implementations must be thread-safe.
type CatalogRepository interface {
	// PutDocument stores a document together with its chunks, replacing any
	// previous entry for the same hash.
	PutDocument(ctx context.Context, doc *DocumentRecord, chunks []ChunkRecord) error

	// GetDocument retrieves a document by content hash.
	// Returns ErrNotFound if the hash is unknown.
	GetDocument(ctx context.Context, hash string) (*DocumentRecord, error)

	// GetChunks retrieves the chunk records of a document ordered by index.
	GetChunks(ctx context.Context, hash string) ([]ChunkRecord, error)

	// ListDocuments returns every document in insertion order.
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)

	// Close releases resources held by the repository.
	Close() error
}
