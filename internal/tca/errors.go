package tca

import "errors"

var (
	// ErrInvalidConfig is returned for out-of-range simulator parameters.
	ErrInvalidConfig = errors.New("invalid tca parameters")

	// ErrInvalidLeg is returned for a leg that cannot be simulated.
	ErrInvalidLeg = errors.New("invalid trade leg")

	// ErrLogNotFound is returned when the calibration log file does not exist.
	ErrLogNotFound = errors.New("calibration log not found")

	// ErrInvalidLog is returned for a log value that is present but not a
	// finite number, or a log whose rows calibrate to invalid parameters.
	ErrInvalidLog = errors.New("invalid calibration log")
)
