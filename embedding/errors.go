package embedding

import "errors"

var (
	// ErrEmbedderRequired is returned when a Generator is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingMismatch indicates the embedder returned a different number
	// of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")

	// ErrDimensionMismatch indicates vectors of different widths in one result.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidBatchSize is returned for a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidRetry is returned for a retry budget below one attempt.
	ErrInvalidRetry = errors.New("retry attempts must be positive")

	// ErrInvalidNPY indicates a file that is not a float32 NumPy matrix.
	ErrInvalidNPY = errors.New("invalid npy file")
)
