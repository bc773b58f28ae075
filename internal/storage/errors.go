package storage

import "errors"

// Sentinel errors shared by every backend. Records are append-only: runs,
// folds, decisions and calibrations are never updated in place.
var (
	ErrNotFound     = errors.New("storage: not found")
	ErrDuplicateKey = errors.New("storage: duplicate key")
	ErrInvalidInput = errors.New("storage: invalid input")
)
