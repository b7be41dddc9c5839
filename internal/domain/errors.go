package domain

import "errors"

// Sentinel errors shared across the storage and dedup layers. Callers match
// with errors.Is after unwrapping.
var (
	// ErrStorageRead marks unreadable or corrupt persisted history. The file
	// store recovers from it internally (empty history); it only escapes
	// through APIs that refuse to degrade, such as export.
	ErrStorageRead = errors.New("history storage read failed")

	// ErrStorageWrite marks a failed persistence write. Prior on-disk state
	// is left unchanged when this is returned.
	ErrStorageWrite = errors.New("history storage write failed")

	// ErrInvalidArgument marks caller mistakes (bad category, non-positive
	// retention, threshold outside [0,1]). No partial effect occurs.
	ErrInvalidArgument = errors.New("invalid argument")
)
