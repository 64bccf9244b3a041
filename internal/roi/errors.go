package roi

import "errors"

// Extraction failures. All of them are fatal to the run that hit them;
// callers report and exit, they do not retry.
var (
	// ErrShapeMismatch is returned when two inputs disagree on the
	// sample axis (voxels, vertices or grayordinates).
	ErrShapeMismatch = errors.New("roi: sample axis length mismatch")

	// ErrLabelFullyMasked is returned when applying the mask removed
	// every sample of at least one seed label.
	ErrLabelFullyMasked = errors.New("roi: mask removed every sample of a seed label")

	// ErrUnknownLabel is returned when the requested label does not
	// occur in the (masked) seed map.
	ErrUnknownLabel = errors.New("roi: requested label not present in seed map")
)
