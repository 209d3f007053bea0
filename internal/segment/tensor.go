package segment

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
)

// Tensor is a planar [channel][row][col] float input for the network.
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// Normalization is the per-channel affine transform applied to 8-bit samples:
// value = (sample - Mean[c]) * Norm[c], channels in R, G, B order.
type Normalization struct {
	Mean [3]float32
	Norm [3]float32
}

// UnitScale maps samples from [0, 255] to [0, 1] on every channel.
var UnitScale = Normalization{
	Mean: [3]float32{0, 0, 0},
	Norm: [3]float32{1 / 255.0, 1 / 255.0, 1 / 255.0},
}

// NewTensor converts img into a normalized planar RGB tensor.
//
// Rows are converted in parallel. Alpha is ignored.
func NewTensor(img image.Image, norm Normalization) (*Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("tensor: empty image: %w", ErrInvalidInput)
	}

	rgba := clone.AsRGBA(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	n := w * h

	t := &Tensor{Channels: 3, Height: h, Width: w, Data: make([]float32, 3*n)}
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w; x++ {
				i := y*w + x
				for c := 0; c < 3; c++ {
					t.Data[c*n+i] = (float32(row[x*4+c]) - norm.Mean[c]) * norm.Norm[c]
				}
			}
		}
	})
	return t, nil
}
