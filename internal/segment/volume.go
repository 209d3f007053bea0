package segment

import "fmt"

// Class ids produced by the segmentation network.
const (
	Background uint8 = 0
	Pointer    uint8 = 1
	Scale      uint8 = 2

	// NumClasses is the number of output planes the network produces.
	NumClasses = 3
)

// Volume is a dense [class][row][col] array of per-pixel class scores.
//
// Data is laid out plane by plane: the score of class c at (x, y) is
// Data[c*Height*Width + y*Width + x].
type Volume struct {
	Classes int
	Height  int
	Width   int
	Data    []float32
}

// NewVolume allocates a zeroed volume.
func NewVolume(classes, height, width int) *Volume {
	return &Volume{
		Classes: classes,
		Height:  height,
		Width:   width,
		Data:    make([]float32, classes*height*width),
	}
}

// At returns the score of class c at (x, y).
func (v *Volume) At(c, x, y int) float32 {
	return v.Data[c*v.Height*v.Width+y*v.Width+x]
}

// Set stores the score of class c at (x, y).
func (v *Volume) Set(c, x, y int, val float32) {
	v.Data[c*v.Height*v.Width+y*v.Width+x] = val
}

// Plane returns the scores of class c as a row-major slice sharing Data.
func (v *Volume) Plane(c int) []float32 {
	n := v.Height * v.Width
	return v.Data[c*n : (c+1)*n]
}

// Validate checks that the volume is shaped [classes][height][width].
func (v *Volume) Validate(classes, height, width int) error {
	if v == nil {
		return fmt.Errorf("nil volume: %w", ErrShape)
	}
	if v.Classes != classes || v.Height != height || v.Width != width {
		return fmt.Errorf("got [%d][%d][%d], want [%d][%d][%d]: %w",
			v.Classes, v.Height, v.Width, classes, height, width, ErrShape)
	}
	if len(v.Data) != classes*height*width {
		return fmt.Errorf("data length %d, want %d: %w", len(v.Data), classes*height*width, ErrShape)
	}
	return nil
}
