package detection

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestResizeUniform(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantROI EffectROI
	}{
		{"landscape", 640, 320, EffectROI{X: 0, Y: 80, Width: 320, Height: 160}},
		{"portrait", 100, 400, EffectROI{X: 120, Y: 0, Width: 80, Height: 320}},
		{"square", 500, 500, EffectROI{X: 0, Y: 0, Width: 320, Height: 320}},
		{"hd frame", 1280, 720, EffectROI{X: 0, Y: 70, Width: 320, Height: 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := createInMemoryImage(tt.w, tt.h, color.RGBA{200, 100, 50, 255})
			dst, roi := ResizeUniform(src, 320)
			if dst == nil {
				t.Fatal("ResizeUniform returned nil canvas")
			}
			if dst.Bounds() != image.Rect(0, 0, 320, 320) {
				t.Errorf("canvas bounds: got %v", dst.Bounds())
			}
			if roi != tt.wantROI {
				t.Errorf("roi: got %+v, want %+v", roi, tt.wantROI)
			}

			// Content inside the ROI, black fill outside it.
			cx, cy := roi.X+roi.Width/2, roi.Y+roi.Height/2
			if got := dst.RGBAAt(cx, cy); got != (color.RGBA{200, 100, 50, 255}) {
				t.Errorf("content at (%d,%d): got %v", cx, cy, got)
			}
			if roi.Y > 0 {
				if got := dst.RGBAAt(cx, 0); got != (color.RGBA{0, 0, 0, 255}) {
					t.Errorf("fill at top: got %v, want black", got)
				}
			}
			if roi.X > 0 {
				if got := dst.RGBAAt(0, cy); got != (color.RGBA{0, 0, 0, 255}) {
					t.Errorf("fill at left: got %v, want black", got)
				}
			}
		})
	}
}

func TestResizeUniform_InvalidInput(t *testing.T) {
	if dst, roi := ResizeUniform(nil, 320); dst != nil || roi != (EffectROI{}) {
		t.Error("nil source should yield nil canvas")
	}
	if dst, _ := ResizeUniform(image.NewRGBA(image.Rect(0, 0, 0, 0)), 320); dst != nil {
		t.Error("empty source should yield nil canvas")
	}
	if dst, _ := ResizeUniform(createInMemoryImage(4, 4, color.White), 0); dst != nil {
		t.Error("zero size should yield nil canvas")
	}
}

func TestConvertBoxes(t *testing.T) {
	// 1280x720 frame resized to 320: content 320x180 at y=70, ratio 4.
	roi := EffectROI{X: 0, Y: 70, Width: 320, Height: 180}
	objs := []Object{
		{Label: 0, Confidence: 0.9, Rect: image.Rect(10, 80, 60, 130)},
		{Label: 1, Confidence: 0.5, Rect: image.Rect(300, 240, 330, 260)},
		{Label: 0, Confidence: 0.4, Rect: image.Rect(10, 0, 50, 60)},
	}

	got := ConvertBoxes(objs, roi, 1280, 720)
	if len(got) != 3 {
		t.Fatalf("got %d boxes, want 3: %+v", len(got), got)
	}

	if got[0].Rect != image.Rect(40, 40, 240, 240) {
		t.Errorf("box 0: got %v, want (40,40)-(240,240)", got[0].Rect)
	}
	if got[0].Label != 0 || got[0].Confidence != 0.9 {
		t.Errorf("box 0 metadata not preserved: %+v", got[0])
	}

	// Clamped to the frame's right and bottom edges.
	if got[1].Rect != image.Rect(1200, 680, 1280, 720) {
		t.Errorf("box 1: got %v, want (1200,680)-(1280,720)", got[1].Rect)
	}

	// Entirely in the top fill: kept, but with zero area.
	if !got[2].Rect.Empty() {
		t.Errorf("box 2: got %v, want empty", got[2].Rect)
	}
}

func TestConvertBoxes_RoundTripWithResize(t *testing.T) {
	src := createInMemoryImage(600, 200, color.White)
	_, roi := ResizeUniform(src, 300)

	// A box covering the whole content maps to the whole frame.
	objs := []Object{{Rect: image.Rect(roi.X, roi.Y, roi.X+roi.Width, roi.Y+roi.Height)}}
	got := ConvertBoxes(objs, roi, 600, 200)
	if len(got) != 1 || got[0].Rect != image.Rect(0, 0, 600, 200) {
		t.Errorf("got %+v, want full frame", got)
	}
}

func TestConvertBoxes_ZeroROI(t *testing.T) {
	if got := ConvertBoxes([]Object{{Rect: image.Rect(0, 0, 5, 5)}}, EffectROI{}, 10, 10); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestBoxes(t *testing.T) {
	objs := []Object{
		{Label: 2, Confidence: 0.25, Rect: image.Rect(1, 2, 3, 4)},
		{Label: 0, Confidence: 0.75, Rect: image.Rect(5, 6, 7, 8)},
	}
	boxes := Boxes(objs)
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	for i := range objs {
		if boxes[i].Label != objs[i].Label || boxes[i].Confidence != objs[i].Confidence || boxes[i].Rect != objs[i].Rect {
			t.Errorf("box %d: got %+v, want %+v", i, boxes[i], objs[i])
		}
	}
}
