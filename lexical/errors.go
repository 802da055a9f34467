package lexical

import "errors"

var (
	// ErrEmptyCorpus indicates no chunk texts were found to index.
	ErrEmptyCorpus = errors.New("lexical corpus is empty")

	// ErrCorpusMismatch indicates texts and ids of different lengths.
	ErrCorpusMismatch = errors.New("texts and ids differ in length")
)
