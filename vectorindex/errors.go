package vectorindex

import "errors"

var (
	// ErrIndexNotFound indicates the index file does not exist.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrDimensionMismatch indicates vectors whose width differs from the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidDimension is returned for a dimension below 1.
	ErrInvalidDimension = errors.New("vector dimension must be positive")
)
