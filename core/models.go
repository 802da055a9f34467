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

package core

import (
	"encoding/binary"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used by the catalog.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is one ingested PDF. Its identity is the content hash, so two
// files with identical bytes are the same Document regardless of name.
type Document struct {
	Name      string // Basename including extension, e.g. "privacy.pdf"
	Hash      string // Hex-encoded sha256 of the file contents
	PageCount int
}

// Base returns the document name without its extension.
// Per-document artifacts are named after it.
func (d Document) Base() string {
	return DocumentBase(d.Name)
}

// DocumentBase strips directories and the extension from a document name.
func DocumentBase(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Page is a usable page of a Document after cleaning.
// Pages are transient: they only live for the duration of a chunking pass.
type Page struct {
	RealNumber   int    // 1-based position in the original PDF
	UsableNumber int    // 1-based position among pages that survived filtering
	Title        string // First line classified as a heading, empty if none
	Text         string // Cleaned lines joined with newlines
}

// Chunk is a contiguous run of words from one Document.
type Chunk struct {
	Document  string   `json:"pdf"`
	Pages     []int    `json:"pages"`
	Titles    []string `json:"titles"`
	Index     int      `json:"chunk_index"`
	Text      string   `json:"text"`
	WordCount int      `json:"n_words"`
}

// ID returns the corpus-wide identifier "{document}_{index}" used by the lexical index.
func (c *Chunk) ID() string {
	return ChunkID(c.Document, c.Index)
}

// PrimaryTitle returns the first title of the chunk, or nil if it has none.
func (c *Chunk) PrimaryTitle() *string {
	if len(c.Titles) == 0 {
		return nil
	}
	title := c.Titles[0]
	return &title
}

// ChunkID formats a lexical document id.
func ChunkID(document string, index int) string {
	return document + "_" + strconv.Itoa(index)
}

// MetadataRecord is the enriched per-chunk record written to metadata_{doc}.json.
type MetadataRecord struct {
	ChunkID         int               `json:"chunk_id"`
	Document        string            `json:"pdf"`
	Index           int               `json:"chunk_index"`
	Pages           []int             `json:"pages"`
	Title           *string           `json:"title"`
	Text            string            `json:"text"`
	HashRef         string            `json:"hash_pdf"`
	EmbeddingModels map[string]string `json:"embedding_models"`
	DateIndexed     string            `json:"date_indexed"`
}

// LedgerEntry records one successfully ingested Document.
type LedgerEntry struct {
	Document    string `json:"pdf"`
	Hash        string `json:"sha256"`
	DateIndexed string `json:"date_indexed"`
}

// EmbeddingInfo describes one embedding run for one model.
type EmbeddingInfo struct {
	Model          string  `json:"model"`
	Chunks         int     `json:"n_chunks"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Dim            int     `json:"dim"`
	Normalized     bool    `json:"normalized"`
	Device         string  `json:"device"`
}

// HashPrefix is prepended to content hashes in metadata records.
const HashPrefix = "sha256:"

// DateLayout is the day-granularity format used for ingestion dates.
const DateLayout = "2006-01-02"
