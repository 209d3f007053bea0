package pipeline

import (
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/meter-reader/internal/detection"
	"github.com/ironsheep/meter-reader/internal/segment"
)

// MeterResult is the outcome for one detected meter.
type MeterResult struct {
	// Index is the meter's position in the detector output.
	Index int

	// Object is the detection, in frame coordinates.
	Object detection.Object

	// Resized is the letterboxed crop. Nil if cropping or resizing failed.
	Resized *image.NRGBA

	// Scale and Offset map letterboxed coordinates back to the crop:
	// orig = (pixel - Offset) / Scale.
	Scale  float64
	Offset image.Point

	// Mask is the decoded categorical mask. Nil on failure.
	Mask *segment.Mask

	// Reading is the computed gauge value, valid when HasReading is true.
	Reading    float64
	HasReading bool

	// Err is the failure that stopped this meter, if any.
	Err error
}

// OK reports whether the meter produced a mask.
func (m *MeterResult) OK() bool {
	return m.Err == nil && m.Mask != nil
}

func (m MeterResult) fail(log logrus.FieldLogger, stage string, err error) MeterResult {
	m.Err = err
	log.WithError(err).WithField("stage", stage).Warn("meter skipped")
	return m
}

// Result is the outcome of processing one frame.
type Result struct {
	// FrameID identifies the frame in logs.
	FrameID uuid.UUID

	// Meters holds one entry per detection, in detector order, including
	// failed ones.
	Meters []MeterResult

	// Elapsed is the wall time spent in Process.
	Elapsed time.Duration
}

// NoMeters reports whether the detector found nothing.
func (r *Result) NoMeters() bool {
	return len(r.Meters) == 0
}

// Failed returns the number of meters that did not produce a mask.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Meters {
		if !r.Meters[i].OK() {
			n++
		}
	}
	return n
}

// Crops returns the letterboxed crops of successful meters, in order.
func (r *Result) Crops() []image.Image {
	idx := r.okIndices()
	crops := make([]image.Image, len(idx))
	for k, i := range idx {
		crops[k] = r.Meters[i].Resized
	}
	return crops
}

// Masks returns the masks of successful meters, in the same order as Crops.
func (r *Result) Masks() []*segment.Mask {
	idx := r.okIndices()
	masks := make([]*segment.Mask, len(idx))
	for k, i := range idx {
		masks[k] = r.Meters[i].Mask
	}
	return masks
}

// Readings returns the readings of meters that have one, in order.
func (r *Result) Readings() []float64 {
	var out []float64
	for i := range r.Meters {
		if r.Meters[i].HasReading {
			out = append(out, r.Meters[i].Reading)
		}
	}
	return out
}

func (r *Result) okIndices() []int {
	idx := make([]int, 0, len(r.Meters))
	for i := range r.Meters {
		if r.Meters[i].OK() {
			idx = append(idx, i)
		}
	}
	return idx
}
