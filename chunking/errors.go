package chunking

import "errors"

var (
	// ErrInvalidChunkSize is returned for a chunk size below 1.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidMinPageWords is returned for a negative page word threshold.
	ErrInvalidMinPageWords = errors.New("minimum page words must not be negative")
)
