package detection

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// EffectROI is the region of a uniformly resized canvas that holds image
// content; the rest of the canvas is fill.
type EffectROI struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ResizeUniform scales src into a size x size canvas without changing its
// aspect ratio.
//
// The longer side of src is scaled to size and the content is centered along
// the shorter side. The remaining canvas is black. Scaling uses bilinear
// interpolation.
//
// Returns the canvas and the placed content region. A nil or empty src, or a
// non-positive size, yields a nil canvas and a zero EffectROI.
func ResizeUniform(src image.Image, size int) (*image.RGBA, EffectROI) {
	if src == nil || src.Bounds().Empty() || size <= 0 {
		return nil, EffectROI{}
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var roi EffectROI
	ratioSrc := float64(w) / float64(h)
	if ratioSrc > 1 {
		roi.Width = size
		roi.Height = int(math.Floor(float64(size)/ratioSrc + 0.5))
		roi.Y = (size - roi.Height) / 2
	} else if ratioSrc < 1 {
		roi.Height = size
		roi.Width = int(math.Floor(float64(size)*ratioSrc + 0.5))
		roi.X = (size - roi.Width) / 2
	} else {
		roi.Width, roi.Height = size, size
	}
	if roi.Width < 1 {
		roi.Width = 1
	}
	if roi.Height < 1 {
		roi.Height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	dr := image.Rect(roi.X, roi.Y, roi.X+roi.Width, roi.Y+roi.Height)
	draw.BiLinear.Scale(dst, dr, src, b, draw.Src, nil)

	return dst, roi
}

// ConvertBoxes maps boxes from a uniformly resized canvas back to the frame
// they were resized from.
//
// srcW and srcH are the original frame dimensions and roi is the EffectROI
// returned by ResizeUniform. Mapped boxes are clamped to the frame, so a box
// lying entirely in the fill collapses to zero area; it is kept so that the
// output stays aligned with the detector's list. Order is preserved.
func ConvertBoxes(objs []Object, roi EffectROI, srcW, srcH int) []Object {
	if roi.Width <= 0 || roi.Height <= 0 {
		return nil
	}
	widthRatio := float64(srcW) / float64(roi.Width)
	heightRatio := float64(srcH) / float64(roi.Height)

	out := make([]Object, 0, len(objs))
	for _, o := range objs {
		x1 := clampFloat(float64(o.Rect.Min.X-roi.X)*widthRatio, 0, float64(srcW))
		y1 := clampFloat(float64(o.Rect.Min.Y-roi.Y)*heightRatio, 0, float64(srcH))
		x2 := clampFloat(float64(o.Rect.Max.X-roi.X)*widthRatio, 0, float64(srcW))
		y2 := clampFloat(float64(o.Rect.Max.Y-roi.Y)*heightRatio, 0, float64(srcH))

		r := image.Rect(int(math.Round(x1)), int(math.Round(y1)), int(math.Round(x2)), int(math.Round(y2)))
		out = append(out, Object{Label: o.Label, Confidence: o.Confidence, Rect: r})
	}
	return out
}

// clampFloat constrains a value to the range [min, max].
func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
