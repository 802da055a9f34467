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

package chunking

import (
	"fmt"

	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/storage"
)

// WriteChunks persists the chunks of one document as indented JSON.
// The file is replaced atomically.
func WriteChunks(path string, chunks []core.Chunk) error {
	if chunks == nil {
		chunks = []core.Chunk{}
	}
	if err := storage.WriteJSONAtomic(path, chunks); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	return nil
}

// ReadChunks loads a chunk file written by WriteChunks.
func ReadChunks(path string) ([]core.Chunk, error) {
	var chunks []core.Chunk
	if err := storage.ReadJSON(path, &chunks); err != nil {
		return nil, fmt.Errorf("reading chunks %s: %w", path, err)
	}
	return chunks, nil
}
