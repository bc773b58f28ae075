package hcope

import "errors"

var (
	// ErrInvalidConfig is returned for a confidence level or delta outside (0, 1).
	ErrInvalidConfig = errors.New("invalid hcope configuration")

	// ErrInvalidInput is returned for empty, mismatched or out-of-range reward data.
	ErrInvalidInput = errors.New("invalid hcope input")
)
