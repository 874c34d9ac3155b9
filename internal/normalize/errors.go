package normalize

import (
	"errors"
	"fmt"
)

// Common normalization errors
var (
	// ErrMissingMandatoryField is returned when one of the mandatory
	// inputs (invoice number, issue date, party names, at least one
	// line) is absent. No legally-safe placeholder exists for these, so
	// the record is rejected rather than completed.
	ErrMissingMandatoryField = errors.New("missing mandatory invoice field")

	// ErrInvalidInputShape is returned when the raw record violates a
	// structural precondition of the input contract, such as a
	// non-positive quantity or a duplicate line identifier.
	ErrInvalidInputShape = errors.New("invalid input shape")
)

// MandatoryFieldError reports which mandatory field path was absent.
type MandatoryFieldError struct {
	// Path is the dotted path of the absent field (e.g. "seller.name").
	Path string
}

// Error implements the error interface.
func (e *MandatoryFieldError) Error() string {
	return fmt.Sprintf("normalize: missing mandatory field %q", e.Path)
}

// Is matches against ErrMissingMandatoryField.
func (e *MandatoryFieldError) Is(target error) bool {
	return target == ErrMissingMandatoryField
}

// NewMandatoryFieldError creates a MandatoryFieldError for the given path.
func NewMandatoryFieldError(path string) *MandatoryFieldError {
	return &MandatoryFieldError{Path: path}
}

// InputShapeError reports a caller-side precondition violation in the
// raw record. It names the offending path and the kind of value the
// input contract expects there.
type InputShapeError struct {
	Path         string
	ExpectedKind string
}

// Error implements the error interface.
func (e *InputShapeError) Error() string {
	return fmt.Sprintf("normalize: invalid shape at %q: expected %s", e.Path, e.ExpectedKind)
}

// Is matches against ErrInvalidInputShape.
func (e *InputShapeError) Is(target error) bool {
	return target == ErrInvalidInputShape
}

// NewInputShapeError creates an InputShapeError.
func NewInputShapeError(path, expectedKind string) *InputShapeError {
	return &InputShapeError{Path: path, ExpectedKind: expectedKind}
}
