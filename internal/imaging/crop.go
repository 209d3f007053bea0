package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Box is a detector region to extract, in frame coordinates.
//
// It mirrors the fields of a detection that the extractor needs without
// depending on the detection package.
type Box struct {
	Label      int
	Confidence float32
	Rect       image.Rectangle
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the region r of frame.
//
// The result is a view sharing pixels with frame when the frame type supports
// SubImage (all of the standard image types do); otherwise the region is copied.
// The rectangle must lie within frame bounds and must not have negative size.
// A zero-area rectangle inside the frame yields an empty image, which later
// stages reject with ErrInvalidInput.
func Crop(frame image.Image, r image.Rectangle) (image.Image, error) {
	if frame == nil {
		return nil, fmt.Errorf("crop: %w", ErrInvalidInput)
	}
	bounds := frame.Bounds()

	if r.Min.X > r.Max.X || r.Min.Y > r.Max.Y {
		return nil, fmt.Errorf("crop region %v has negative size: %w", r, ErrInvalidBox)
	}
	if r.Min.X < bounds.Min.X || r.Min.Y < bounds.Min.Y || r.Max.X > bounds.Max.X || r.Max.Y > bounds.Max.Y {
		return nil, fmt.Errorf("crop region %v outside image bounds %v: %w", r, bounds, ErrInvalidBox)
	}

	if si, ok := frame.(subImager); ok {
		return si.SubImage(r), nil
	}
	if r.Empty() {
		return image.NewNRGBA(image.Rectangle{}), nil
	}
	return imaging.Crop(frame, r), nil
}

// CropBox logs b at debug level and crops its region out of frame.
func CropBox(frame image.Image, index int, b Box, log logrus.FieldLogger) (image.Image, error) {
	logBox(log, index, b)
	return Crop(frame, b.Rect)
}

// ExtractROIs crops one region per box, preserving box order.
//
// The first box that does not lie within the frame aborts extraction with an
// error wrapping ErrInvalidBox; callers that need per-box isolation should use
// CropBox.
func ExtractROIs(frame image.Image, boxes []Box, log logrus.FieldLogger) ([]image.Image, error) {
	crops := make([]image.Image, 0, len(boxes))
	for i, b := range boxes {
		c, err := CropBox(frame, i, b, log)
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
		crops = append(crops, c)
	}
	return crops, nil
}

func logBox(log logrus.FieldLogger, index int, b Box) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"index":      index,
		"label":      b.Label,
		"confidence": fmt.Sprintf("%.5f", b.Confidence),
		"x":          b.Rect.Min.X,
		"y":          b.Rect.Min.Y,
		"w":          b.Rect.Dx(),
		"h":          b.Rect.Dy(),
	}).Debug("roi")
}
