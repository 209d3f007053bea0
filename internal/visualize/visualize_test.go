package visualize

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/meter-reader/internal/detection"
	"github.com/ironsheep/meter-reader/internal/pipeline"
	"github.com/ironsheep/meter-reader/internal/segment"
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

func testResult() *pipeline.Result {
	return &pipeline.Result{Meters: []pipeline.MeterResult{
		{
			Index:      0,
			Object:     detection.Object{Rect: image.Rect(20, 40, 120, 140)},
			Mask:       &segment.Mask{Width: 1, Height: 1, Pix: []uint8{0}},
			Reading:    0.42,
			HasReading: true,
		},
		{
			Index:  1,
			Object: detection.Object{Rect: image.Rect(150, 40, 190, 80)},
			Err:    errors.New("segment failed"),
		},
	}}
}

func TestRender(t *testing.T) {
	frame := createInMemoryImage(200, 160, color.White)
	out := Render(frame, testResult())

	if out.Bounds() != frame.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), frame.Bounds())
	}

	if got := out.NRGBAAt(20, 100); got != okColor {
		t.Errorf("ok outline: got %v", got)
	}
	if got := out.NRGBAAt(189, 60); got != failColor {
		t.Errorf("failed outline: got %v", got)
	}
	if got := out.NRGBAAt(70, 90); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("box interior changed: got %v", got)
	}

	// Label background sits above the first box.
	if got := out.NRGBAAt(21, 30); got == (color.NRGBA{255, 255, 255, 255}) {
		t.Error("expected a label above the first box")
	}

	// Source untouched.
	if frame.RGBAAt(20, 100) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("Render modified its input")
	}
}

func TestRender_NilResult(t *testing.T) {
	frame := createInMemoryImage(10, 10, color.Black)
	if out := Render(frame, nil); out.Bounds() != frame.Bounds() {
		t.Errorf("got %v", out.Bounds())
	}
}

func TestFormatReading(t *testing.T) {
	if got := FormatReading(0.4213); got != "0.421 Mpa" {
		t.Errorf("got %q", got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, 3, createInMemoryImage(200, 160, color.White), testResult())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(dir, "3_processed_image.jpg") {
		t.Errorf("path: got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file missing: %v", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("saved file does not decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 160 {
		t.Errorf("saved size: got %v", img.Bounds())
	}
}

func TestSave_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	if _, err := Save(dir, 0, createInMemoryImage(4, 4, color.White), nil); err == nil {
		t.Error("Save into a missing directory should fail")
	}
}
