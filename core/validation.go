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
	"fmt"
	"strings"
)

// ValidateChunk validates a single Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - WordCount must equal the number of whitespace-delimited words in Text
//   - WordCount must not exceed chunkSize
func ValidateChunk(chunk *Chunk, chunkSize int) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if n := len(strings.Fields(chunk.Text)); n != chunk.WordCount {
		return fmt.Errorf("%w: %w (%d != %d)", ErrInvalidChunk, ErrWordCount, chunk.WordCount, n)
	}

	if chunk.WordCount > chunkSize {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkTooLarge)
	}

	return nil
}

// ValidateChunks validates the chunk list of one Document.
//
// Besides the per-chunk rules, every chunk except the last must hold exactly
// chunkSize words and indexes must run 1..len(chunks).
func ValidateChunks(chunks []Chunk, chunkSize int) error {
	for i := range chunks {
		if err := ValidateChunk(&chunks[i], chunkSize); err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
		if chunks[i].Index != i+1 {
			return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkSequence)
		}
		if i < len(chunks)-1 && chunks[i].WordCount != chunkSize {
			return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrShortChunk)
		}
	}
	return nil
}
