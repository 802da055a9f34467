package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigRequired is returned when a pipeline is created without a config.
	ErrConfigRequired = errors.New("config required")

	// ErrExtractorRequired is returned when a page extractor is not provided.
	ErrExtractorRequired = errors.New("page extractor required")

	// ErrModelsRequired is returned when no embedding model is configured.
	ErrModelsRequired = errors.New("at least one embedding model required")

	// ErrQACheckFailed indicates the final consistency check did not hold.
	ErrQACheckFailed = errors.New("qa check failed")
)

// StageError reports the state in which a run failed.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
