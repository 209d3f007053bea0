package segment

import (
	"errors"

	"github.com/ironsheep/meter-reader/internal/imaging"
)

var (
	// ErrInvalidInput is returned when the image to segment is empty.
	ErrInvalidInput = imaging.ErrInvalidInput

	// ErrModelLoad is returned when model artifacts cannot be loaded.
	ErrModelLoad = errors.New("model load failed")

	// ErrShape is returned when a runtime output does not match the expected
	// [classes][target][target] shape.
	ErrShape = errors.New("unexpected output shape")
)
