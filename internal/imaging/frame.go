package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
)

// Frame is a packed buffer of 8-bit samples.
//
// Samples are stored row-major with Channels bytes per pixel and no row
// padding, so len(Pix) == Width*Height*Channels for a well-formed frame.
// Three-channel frames use B, G, R sample order.
type Frame struct {
	// Width is the frame width in pixels.
	Width int

	// Height is the frame height in pixels.
	Height int

	// Channels is the number of samples per pixel (3 for color, 1 for gray).
	Channels int

	// Pix holds the packed samples.
	Pix []byte
}

// Empty reports whether the frame has no pixels or an inconsistent buffer.
func (f *Frame) Empty() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 || f.Channels <= 0 {
		return true
	}
	return len(f.Pix) != f.Width*f.Height*f.Channels
}

// FrameFromImage packs an image into a 3-channel BGR frame.
//
// Alpha is discarded. The frame origin is the image's Bounds().Min.
func FrameFromImage(img image.Image) *Frame {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()

	f := &Frame{Width: w, Height: h, Channels: 3, Pix: make([]byte, w*h*3)}
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		dst := f.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3+0] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+0]
		}
	}
	return f
}

// FrameFromGray packs a grayscale image into a 1-channel frame.
func FrameFromGray(img *image.Gray) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	f := &Frame{Width: w, Height: h, Channels: 1, Pix: make([]byte, w*h)}
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(f.Pix[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return f
}

// FitFrame resizes img to exactly width x height and packs it as BGR.
// The aspect ratio is not preserved.
func FitFrame(img image.Image, width, height int) *Frame {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return FrameFromImage(img)
	}
	return FrameFromImage(imaging.Resize(img, width, height, imaging.Linear))
}
