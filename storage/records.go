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

package storage

import "github.com/poiesic/pdfcorpus/core"

// MarshalDocumentRecord serializes a DocumentRecord to bytes.
func MarshalDocumentRecord(doc *DocumentRecord) []byte {
	enc := NewEncoder(128)
	enc.String(doc.Hash)
	enc.String(doc.Name)
	enc.Int(doc.PageCount)
	enc.Int(doc.ChunkCount)
	enc.Strings(doc.Models)
	enc.String(doc.DateIndexed)
	return enc.Bytes()
}

// UnmarshalDocumentRecord deserializes a DocumentRecord from bytes.
func UnmarshalDocumentRecord(data []byte) (*DocumentRecord, error) {
	dec := NewDecoder(data)
	doc := &DocumentRecord{
		Hash:       dec.String(),
		Name:       dec.String(),
		PageCount:  dec.Int(),
		ChunkCount: dec.Int(),
		Models:     dec.Strings(),
	}
	doc.DateIndexed = dec.String()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// MarshalChunkRecord serializes a ChunkRecord to bytes.
func MarshalChunkRecord(chunk *ChunkRecord) []byte {
	enc := NewEncoder(64)
	enc.String(chunk.DocumentHash)
	enc.Int(chunk.Index)
	enc.Ints(chunk.Pages)
	enc.Strings(chunk.Titles)
	enc.Int(chunk.WordCount)
	enc.Uint64(uint64(chunk.Fingerprint))
	return enc.Bytes()
}

// UnmarshalChunkRecord deserializes a ChunkRecord from bytes.
func UnmarshalChunkRecord(data []byte) (*ChunkRecord, error) {
	dec := NewDecoder(data)
	chunk := &ChunkRecord{
		DocumentHash: dec.String(),
		Index:        dec.Int(),
		Pages:        dec.Ints(),
		Titles:       dec.Strings(),
		WordCount:    dec.Int(),
	}
	chunk.Fingerprint = core.ID(dec.Uint64())
	if err := dec.Err(); err != nil {
		return nil, err
	}
	return chunk, nil
}
