package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPadColor is the mid-gray fill used around letterboxed crops.
var DefaultPadColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Letterboxed is a square image produced by Letterbox together with the
// bookkeeping needed to map its coordinates back to the source crop.
type Letterboxed struct {
	// Image is the target x target result.
	Image *image.NRGBA

	// Scale is the uniform factor applied to the source before padding.
	Scale float64

	// Offset is the padding added on the left (X) and top (Y) edges.
	Offset image.Point

	// Size is the dimensions of the resized content before padding.
	Size image.Point
}

// ToSource maps a point in letterboxed space back into source coordinates.
func (l *Letterboxed) ToSource(x, y float64) (float64, float64) {
	return (x - float64(l.Offset.X)) / l.Scale, (y - float64(l.Offset.Y)) / l.Scale
}

// FromSource maps a point in source coordinates into letterboxed space.
func (l *Letterboxed) FromSource(x, y float64) (float64, float64) {
	return x*l.Scale + float64(l.Offset.X), y*l.Scale + float64(l.Offset.Y)
}

// Letterbox resizes img to fit a target x target square without changing its
// aspect ratio, then pads the rest with pad.
//
// The scale is min(target/height, target/width). The content is resized to
// round(width*scale) x round(height*scale) with an area-averaging (box) filter,
// and placed at ((target-w)/2, (target-h)/2); when the padding is odd the extra
// pixel lands on the right or bottom edge.
//
// # Errors
//
//   - ErrInvalidInput if img is nil or has no pixels
//   - ErrInvalidInput if target is not positive
func Letterbox(img image.Image, target int, pad color.Color) (*Letterboxed, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("letterbox: empty image: %w", ErrInvalidInput)
	}
	if target <= 0 {
		return nil, fmt.Errorf("letterbox: target size %d: %w", target, ErrInvalidInput)
	}
	if pad == nil {
		pad = DefaultPadColor
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	scale := math.Min(float64(target)/float64(srcH), float64(target)/float64(srcW))

	newW := clamp(int(math.Round(float64(srcW)*scale)), 1, target)
	newH := clamp(int(math.Round(float64(srcH)*scale)), 1, target)

	var resized *image.NRGBA
	if newW == srcW && newH == srcH {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, newW, newH, imaging.Box)
	}

	offset := image.Pt((target-newW)/2, (target-newH)/2)
	out := resized
	if newW < target || newH < target {
		out = imaging.Paste(imaging.New(target, target, pad), resized, offset)
	}

	return &Letterboxed{
		Image:  out,
		Scale:  scale,
		Offset: offset,
		Size:   image.Pt(newW, newH),
	}, nil
}

// ParsePadColor parses a "#RRGGBB" hex string into an opaque color.
func ParsePadColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid pad color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
