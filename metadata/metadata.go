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

// Package metadata writes per-chunk metadata files and maintains the
// ingestion ledger, the append-only list of documents that completed
// ingestion. The ledger is the source of truth for the idempotency check.
package metadata

import (
	"fmt"
	"maps"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
)

// Records builds the metadata records for the chunks of one document.
func Records(chunks []core.Chunk, hash string, models map[string]string, date string) []core.MetadataRecord {
	records := make([]core.MetadataRecord, len(chunks))
	for i := range chunks {
		ch := &chunks[i]
		records[i] = core.MetadataRecord{
			ChunkID:         ch.Index,
			Document:        ch.Document,
			Index:           ch.Index,
			Pages:           ch.Pages,
			Title:           ch.PrimaryTitle(),
			Text:            ch.Text,
			HashRef:         core.HashPrefix + hash,
			EmbeddingModels: maps.Clone(models),
			DateIndexed:     date,
		}
	}
	return records
}

// WriteDocument replaces the metadata file at path with one record per chunk.
func WriteDocument(path string, chunks []core.Chunk, hash string, models map[string]string, date string) error {
	if err := storage.WriteJSONAtomic(path, Records(chunks, hash, models, date)); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// ReadDocument loads a metadata file written by WriteDocument.
func ReadDocument(path string) ([]core.MetadataRecord, error) {
	var records []core.MetadataRecord
	if err := storage.ReadJSON(path, &records); err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	return records, nil
}
