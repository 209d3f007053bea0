package detection

import (
	"context"
	"image"

	"github.com/ironsheep/meter-reader/internal/imaging"
)

// Object is a single detection in frame coordinates.
type Object struct {
	// Label is the detector's category id.
	Label int `json:"label"`

	// Confidence is the detection score (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// Rect is the axis-aligned box. Min is inclusive, Max exclusive.
	Rect image.Rectangle `json:"rect"`
}

// Box converts the detection into the region type used by ROI extraction.
func (o Object) Box() imaging.Box {
	return imaging.Box{Label: o.Label, Confidence: o.Confidence, Rect: o.Rect}
}

// Boxes converts a list of detections, preserving order.
func Boxes(objs []Object) []imaging.Box {
	boxes := make([]imaging.Box, len(objs))
	for i, o := range objs {
		boxes[i] = o.Box()
	}
	return boxes
}

// Detector finds meters in a uniformly resized image.
//
// Returned boxes are in the coordinate space of img. Implementations drop
// boxes scoring below confThreshold and apply non-maximum suppression with
// nmsThreshold.
type Detector interface {
	Detect(ctx context.Context, img image.Image, confThreshold, nmsThreshold float64) ([]Object, error)
}
