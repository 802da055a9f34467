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

package vectorindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/poiesic/pdfcorpus/storage"
)

// formatTag identifies the on-disk layout.
const formatTag = "pdfcorpus/flat-ip/v1"

// Marshal encodes the index as tag, dimension, count and the row-major
// float32 values.
func (idx *Index) Marshal() []byte {
	enc := storage.NewEncoder(len(formatTag) + 16 + 4*len(idx.data))
	enc.String(formatTag)
	enc.Int(idx.dim)
	enc.Int(idx.Len())
	for _, x := range idx.data {
		enc.Float32(x)
	}
	return enc.Bytes()
}

// Unmarshal decodes an index written by Marshal.
func Unmarshal(data []byte) (*Index, error) {
	dec := storage.NewDecoder(data)
	dec.Expect(formatTag)
	dim := dec.Int()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dim < 1 {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, ErrInvalidDimension)
	}
	n := dec.Len(4 * dim)
	if err := dec.Err(); err != nil {
		return nil, err
	}

	idx := &Index{dim: dim, data: make([]float32, n*dim)}
	for i := range idx.data {
		idx.data[i] = dec.Float32()
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", storage.ErrSerializationFailed, dec.Remaining())
	}
	return idx, nil
}

// Load reads the index at path. A missing file yields ErrIndexNotFound.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, err
	}
	idx, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return idx, nil
}

// Save replaces the file at path with the index.
func (idx *Index) Save(path string) error {
	return storage.WriteFileAtomic(path, idx.Marshal(), 0o644)
}
