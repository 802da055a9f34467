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

package lexical

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/poiesic/pdfcorpus/storage"
)

const formatTag = "pdfcorpus/bm25okapi/v1"

// Marshal encodes the index. Terms are written in sorted order so equal
// indexes produce equal bytes.
func (idx *Index) Marshal() []byte {
	enc := storage.NewEncoder(1024)
	enc.String(formatTag)
	enc.Float64(idx.K1)
	enc.Float64(idx.B)
	enc.Float64(idx.Epsilon)
	enc.Float64(idx.AvgDocLen)

	enc.Int(len(idx.DocLens))
	for i, freqs := range idx.DocFreqs {
		enc.Int(idx.DocLens[i])
		enc.Int(len(freqs))
		for _, term := range slices.Sorted(maps.Keys(freqs)) {
			enc.String(term)
			enc.Int(freqs[term])
		}
	}

	enc.Int(len(idx.IDF))
	for _, term := range slices.Sorted(maps.Keys(idx.IDF)) {
		enc.String(term)
		enc.Float64(idx.IDF[term])
	}
	return enc.Bytes()
}

// Unmarshal decodes an index written by Marshal.
func Unmarshal(data []byte) (*Index, error) {
	dec := storage.NewDecoder(data)
	dec.Expect(formatTag)
	idx := &Index{
		K1:        dec.Float64(),
		B:         dec.Float64(),
		Epsilon:   dec.Float64(),
		AvgDocLen: dec.Float64(),
	}

	n := dec.Len(2)
	idx.DocLens = make([]int, n)
	idx.DocFreqs = make([]map[string]int, n)
	for i := 0; i < n && dec.Err() == nil; i++ {
		idx.DocLens[i] = dec.Int()
		terms := dec.Len(2)
		freqs := make(map[string]int, terms)
		for j := 0; j < terms && dec.Err() == nil; j++ {
			term := dec.String()
			freqs[term] = dec.Int()
		}
		idx.DocFreqs[i] = freqs
	}

	terms := dec.Len(9)
	idx.IDF = make(map[string]float64, terms)
	for i := 0; i < terms && dec.Err() == nil; i++ {
		term := dec.String()
		idx.IDF[term] = dec.Float64()
	}

	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", storage.ErrSerializationFailed, dec.Remaining())
	}
	return idx, nil
}

// Save replaces the file at path with the index.
func (idx *Index) Save(path string) error {
	return storage.WriteFileAtomic(path, idx.Marshal(), 0o644)
}

// Load reads an index written by Save.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return idx, nil
}
