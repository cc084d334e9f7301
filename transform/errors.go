package transform

import "errors"

// Canonical errors returned by the transform package. Callers match them
// with errors.Is; the returned errors carry extra context via %w.
var (
	// ErrInvalidArgument marks contradictory or malformed configuration/input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat marks an operation that needs byte pixel data
	// being handed a float feature vector.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrPreconditionFailed marks a random draw without a generator.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrDomain marks a contrast value at or past the 1.0 singularity.
	ErrDomain = errors.New("domain error")
	// ErrMalformedSample marks a record whose dimensions disagree with its
	// payload. Errors carrying it also match ErrInvalidArgument.
	ErrMalformedSample = errors.New("malformed sample")
)
