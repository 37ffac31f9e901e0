package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing file or folder.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals a missing inbox record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidCategory signals an unknown homework category.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidIndex signals an item index outside [1, max_index].
	ErrInvalidIndex = errors.New("invalid item index")
	// ErrInvalidDocument signals a malformed taxonomy or record document.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrEngineFailure signals a transcription engine failure or misconfiguration.
	// Always fatal for the invocation; the core never retries.
	ErrEngineFailure = errors.New("transcription engine failure")
)

// IndexError wraps ErrInvalidIndex with the offending category and index.
type IndexError struct {
	Category string
	Index    int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d for category %s", ErrInvalidIndex.Error(), e.Index, e.Category)
}

func (e *IndexError) Unwrap() error { return ErrInvalidIndex }

// NewIndexError creates an out-of-range index error.
func NewIndexError(category string, index int) error {
	return &IndexError{Category: category, Index: index}
}
