package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the decoders, the CLI and the tracker.
var (
	// ErrDecode indicates that spreadsheet bytes could not be parsed.
	ErrDecode = errors.New("decode failed")

	// ErrNoSheet indicates a workbook without any worksheet.
	ErrNoSheet = errors.New("workbook has no sheets")

	// ErrInvalidSelector indicates an unknown region or sort order value.
	ErrInvalidSelector = errors.New("invalid selector")
)

// DecodeError is returned when a spreadsheet cannot be decoded.
// The record set is never touched when this error is returned.
type DecodeError struct {
	Source string
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("decode: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError creates a new DecodeError
func NewDecodeError(source string, err error) *DecodeError {
	return &DecodeError{Source: source, Err: err}
}
