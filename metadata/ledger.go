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

package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
)

// Ledger is the in-memory view of ingestion_index.json.
// Entries are unique by hash and only ever appended.
type Ledger struct {
	path    string
	entries []core.LedgerEntry
	hashes  map[string]struct{}
	logger  *slog.Logger
}

// LoadLedger reads the ledger at path. A missing file yields an empty ledger.
func LoadLedger(path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		path:   path,
		hashes: make(map[string]struct{}),
		logger: logger.With("component", "ledger"),
	}

	var entries []core.LedgerEntry
	err := storage.ReadJSON(path, &entries)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	for _, e := range entries {
		if _, dup := l.hashes[e.Hash]; dup {
			continue
		}
		l.hashes[e.Hash] = struct{}{}
		l.entries = append(l.entries, e)
	}
	return l, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Contains reports whether a document with this hash was ingested.
func (l *Ledger) Contains(hash string) bool {
	_, ok := l.hashes[hash]
	return ok
}

// Lookup returns the entry for hash.
func (l *Ledger) Lookup(hash string) (core.LedgerEntry, bool) {
	for _, e := range l.entries {
		if e.Hash == hash {
			return e, true
		}
	}
	return core.LedgerEntry{}, false
}

// Append adds entry unless its hash is already present. It reports whether
// the entry was added. Call Save to persist.
func (l *Ledger) Append(entry core.LedgerEntry) bool {
	if l.Contains(entry.Hash) {
		l.logger.Info("document already in ledger", "pdf", entry.Document, "sha256", entry.Hash)
		return false
	}
	l.hashes[entry.Hash] = struct{}{}
	l.entries = append(l.entries, entry)
	return true
}

// Entries returns a copy of the ledger entries in insertion order.
func (l *Ledger) Entries() []core.LedgerEntry {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Save replaces the ledger file atomically.
func (l *Ledger) Save() error {
	entries := l.entries
	if entries == nil {
		entries = []core.LedgerEntry{}
	}
	if err := storage.WriteJSONAtomic(l.path, entries); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}
