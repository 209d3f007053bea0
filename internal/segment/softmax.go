package segment

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Softmax normalizes v in place so that at every location the class scores
// are non-negative and sum to 1.
//
// At each location the maximum score is subtracted before exponentiating,
// which keeps exp from overflowing and makes the result invariant to adding a
// constant to all of that location's scores.
//
// The work is split by class over a pool bounded by v.Classes. Each worker
// reads every class at a location, derives the max and sum itself, and writes
// only its own class plane of a fresh buffer, so no state is shared between
// workers. All workers join before v adopts the buffer.
func Softmax(v *Volume) error {
	if v == nil || v.Classes <= 0 || v.Height <= 0 || v.Width <= 0 {
		return fmt.Errorf("softmax: empty volume: %w", ErrShape)
	}
	if err := v.Validate(v.Classes, v.Height, v.Width); err != nil {
		return fmt.Errorf("softmax: %w", err)
	}

	n := v.Height * v.Width
	src := v.Data
	out := make([]float32, len(src))

	var g errgroup.Group
	g.SetLimit(v.Classes)
	for c := 0; c < v.Classes; c++ {
		c := c
		g.Go(func() error {
			softmaxPlane(src, out[c*n:(c+1)*n], c, v.Classes, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	v.Data = out
	return nil
}

// softmaxPlane writes the normalized scores of class c into dst.
func softmaxPlane(src, dst []float32, c, classes, n int) {
	for i := 0; i < n; i++ {
		max := float32(math.Inf(-1))
		for q := 0; q < classes; q++ {
			if s := src[q*n+i]; s > max {
				max = s
			}
		}

		var sum float64
		for q := 0; q < classes; q++ {
			sum += math.Exp(float64(src[q*n+i] - max))
		}
		dst[i] = float32(math.Exp(float64(src[c*n+i]-max)) / sum)
	}
}
