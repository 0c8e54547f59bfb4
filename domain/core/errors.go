package core

import (
	"errors"
	"fmt"
)

// Domain error sentinels, per spec §7's abstract error kinds.
var (
	ErrNotFound = errors.New("resource not found")
	ErrPointNotFound = fmt.Errorf("%w: manifold point", ErrNotFound)
	ErrInvalidID = errors.New("id cannot be empty")

	// ErrMissingInput signals a required field of a point is absent.
	// Detectors swallow this and return no record; kernel routines propagate it.
	ErrMissingInput = errors.New("missing input")

	// ErrDimensionMismatch signals a vector/matrix shape inconsistent with
	// the configured active or storage dimension. Always fatal to the call.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrSingularMatrix signals inversion failed after Tikhonov regularization.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrDeadlineExceeded signals cooperative cancellation mid-computation.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrStoreError wraps an opaque failure from the backing data store.
	ErrStoreError = errors.New("store error")
)

// NewMissingInputError reports which field was absent.
func NewMissingInputError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, field)
}

// NewDimensionMismatchError reports the expected vs. actual vector length.
func NewDimensionMismatchError(expected, actual int) error {
	return fmt.Errorf("%w: expected %d components, got %d", ErrDimensionMismatch, expected, actual)
}

// NewStoreError wraps an underlying store failure without retrying.
func NewStoreError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreError, op, cause)
}

func IsMissingInput(err error) bool      { return errors.Is(err, ErrMissingInput) }
func IsDimensionMismatch(err error) bool { return errors.Is(err, ErrDimensionMismatch) }
func IsSingularMatrix(err error) bool    { return errors.Is(err, ErrSingularMatrix) }
func IsDeadlineExceeded(err error) bool  { return errors.Is(err, ErrDeadlineExceeded) }
func IsStoreError(err error) bool        { return errors.Is(err, ErrStoreError) }
