// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pdfcorpus/storage"
)

// CatalogRepository implements storage.CatalogRepository using BadgerDB.
type CatalogRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a catalog on top of an open backend.
func NewCatalogRepository(backend *Backend) (storage.CatalogRepository, error) {
	return newCatalogRepository(backend)
}

func newCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	seq, err := backend.GetSequence(documentSeq)
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the document sequence. The backend stays open.
func (r *CatalogRepository) Close() error {
	return r.seq.Release()
}

// PutDocument stores a document and its chunks in a single transaction.
func (r *CatalogRepository) PutDocument(ctx context.Context, doc *storage.DocumentRecord, chunks []storage.ChunkRecord) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTransaction(ctx, func(ctx context.Context, tx *badger.Txn) error {
		key := makeDocumentKey(doc.Hash)

		_, err := tx.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			next, err := r.seq.Next()
			if err != nil {
				return err
			}
			if err := tx.Set(makeDocumentOrderKey(next), []byte(doc.Hash)); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Replacing an existing document: drop its old chunks first.
			if err := r.deleteChunks(tx, doc.Hash); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalDocumentRecord(doc)); err != nil {
			return err
		}

		for i := range chunks {
			chunk := &chunks[i]
			chunk.DocumentHash = doc.Hash
			if err := tx.Set(makeChunkKey(doc.Hash, chunk.Index), storage.MarshalChunkRecord(chunk)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetDocument retrieves a document by content hash.
func (r *CatalogRepository) GetDocument(ctx context.Context, hash string) (*storage.DocumentRecord, error) {
	var doc *storage.DocumentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, hash)
		return err
	}, false)
	return doc, err
}

// GetChunks retrieves the chunk records of a document ordered by index.
func (r *CatalogRepository) GetChunks(ctx context.Context, hash string) ([]storage.ChunkRecord, error) {
	var chunks []storage.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(hash)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *storage.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, *chunk)
		}
		return nil
	}, false)
	return chunks, err
}

// ListDocuments returns every document in insertion order.
func (r *CatalogRepository) ListDocuments(ctx context.Context) ([]*storage.DocumentRecord, error) {
	var docs []*storage.DocumentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentOrderPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			hash, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			doc, err := readDocument(tx, string(hash))
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)
	return docs, err
}

func readDocument(tx *badger.Txn, hash string) (*storage.DocumentRecord, error) {
	item, err := tx.Get(makeDocumentKey(hash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var doc *storage.DocumentRecord
	err = item.Value(func(val []byte) error {
		doc, err = storage.UnmarshalDocumentRecord(val)
		return err
	})
	return doc, err
}

func (r *CatalogRepository) deleteChunks(tx *badger.Txn, hash string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkKey(hash)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
