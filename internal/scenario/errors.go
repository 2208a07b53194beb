package scenario

import "errors"

// Sentinel errors returned by Evaluate, wrapped with context. Callers
// branch with errors.Is.
var (
	// ErrInvalidWindow flags a window whose start lies after its end, or
	// one that misses the dataset entirely. A window that merely reaches
	// past the dataset bounds is clipped instead.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrEmptyInput flags a nil or zero-row dataset.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownTechnology flags a mix that references a technology column
	// the dataset does not carry.
	ErrUnknownTechnology = errors.New("unknown technology")
)
