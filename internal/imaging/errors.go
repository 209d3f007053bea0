package imaging

import "errors"

var (
	// ErrInvalidInput is returned for empty or malformed images.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrInvalidBox is returned when a region does not lie within the frame.
	ErrInvalidBox = errors.New("invalid box")
)
