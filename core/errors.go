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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrChunkTooLarge indicates a chunk holds more words than the chunk size allows.
	ErrChunkTooLarge = errors.New("chunk exceeds chunk size")

	// ErrShortChunk indicates a chunk other than the last one is shorter than the chunk size.
	ErrShortChunk = errors.New("only the final chunk may be shorter than the chunk size")

	// ErrChunkSequence indicates chunk indexes are not 1-based and contiguous.
	ErrChunkSequence = errors.New("chunk indexes must be sequential starting at 1")

	// ErrWordCount indicates the recorded word count does not match the chunk text.
	ErrWordCount = errors.New("word count does not match text")

	// ErrEmptyContent indicates the chunk text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrDocumentNotFound indicates the source document could not be opened.
	ErrDocumentNotFound = errors.New("document not found")
)
