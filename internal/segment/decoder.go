package segment

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultTargetSize is the square input size of the segmentation network.
const DefaultTargetSize = 320

// Decoder drives a Runtime and decodes its output into a Mask.
type Decoder struct {
	runtime Runtime
	target  int
	norm    Normalization
}

// NewDecoder creates a decoder for a network with a target x target input.
// A non-positive target uses DefaultTargetSize.
func NewDecoder(rt Runtime, target int) *Decoder {
	if target <= 0 {
		target = DefaultTargetSize
	}
	return &Decoder{runtime: rt, target: target, norm: UnitScale}
}

// TargetSize returns the network input size.
func (d *Decoder) TargetSize() int {
	return d.target
}

// Run converts img into the network input and returns the normalized class
// volume.
//
// Images that are not target x target are resized bilinearly first. An empty
// image returns ErrInvalidInput without invoking the runtime. A runtime error
// is returned as is and no normalization is attempted.
func (d *Decoder) Run(ctx context.Context, img image.Image) (*Volume, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("segment: empty image: %w", ErrInvalidInput)
	}
	if b := img.Bounds(); b.Dx() != d.target || b.Dy() != d.target {
		img = imaging.Resize(img, d.target, d.target, imaging.Linear)
	}

	in, err := NewTensor(img, d.norm)
	if err != nil {
		return nil, err
	}

	v, err := d.runtime.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("segment: inference: %w", err)
	}
	if err := v.Validate(NumClasses, d.target, d.target); err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	if err := Softmax(v); err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return v, nil
}

// Segment runs the network on img and decodes the categorical mask.
func (d *Decoder) Segment(ctx context.Context, img image.Image) (*Mask, error) {
	v, err := d.Run(ctx, img)
	if err != nil {
		return nil, err
	}
	return DecodeMask(v)
}
