package validation

import "errors"

var (
	// ErrInvalidConfig is returned when splitter parameters are out of range.
	ErrInvalidConfig = errors.New("invalid cross-validation config")

	// ErrInvalidInput is returned when the timestamp sequences cannot be split.
	ErrInvalidInput = errors.New("invalid cross-validation input")
)
