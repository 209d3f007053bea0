package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// plainImage hides the SubImage method of the wrapped image.
type plainImage struct {
	image.Image
}

func TestCrop_ReturnsView(t *testing.T) {
	frame := createPatternImage(100, 100)

	crop, err := Crop(frame, image.Rect(60, 10, 90, 40))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if crop.Bounds() != image.Rect(60, 10, 90, 40) {
		t.Errorf("bounds: got %v, want (60,10)-(90,40)", crop.Bounds())
	}

	// The crop shares pixels with the frame.
	frame.Set(70, 20, color.RGBA{1, 2, 3, 255})
	r, g, b, _ := crop.At(70, 20).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("crop is not a view: got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCrop_CopiesWhenNoSubImage(t *testing.T) {
	frame := plainImage{createPatternImage(100, 100)}

	crop, err := Crop(frame, image.Rect(0, 50, 50, 100))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	b := crop.Bounds()
	if b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", b.Dx(), b.Dy())
	}
	r, g, bl, _ := crop.At(b.Min.X+10, b.Min.Y+10).RGBA()
	if r != 0 || g != 0 || bl>>8 != 255 {
		t.Errorf("expected blue quadrant, got (%d,%d,%d)", r>>8, g>>8, bl>>8)
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	frame := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"x1 negative", image.Rect(-1, 0, 50, 50)},
		{"y1 negative", image.Rect(0, -1, 50, 50)},
		{"x2 too large", image.Rect(0, 0, 101, 50)},
		{"y2 too large", image.Rect(0, 0, 50, 101)},
		{"all out of bounds", image.Rect(-1, -1, 200, 200)},
		{"negative width", image.Rectangle{Min: image.Pt(50, 0), Max: image.Pt(40, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(frame, tt.r)
			if !errors.Is(err, ErrInvalidBox) {
				t.Errorf("got %v, want ErrInvalidBox", err)
			}
		})
	}
}

func TestCrop_EmptyRegionInsideFrame(t *testing.T) {
	frame := createInMemoryImage(100, 100, color.White)

	crop, err := Crop(frame, image.Rect(10, 10, 10, 40))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if !crop.Bounds().Empty() {
		t.Errorf("expected empty crop, got %v", crop.Bounds())
	}

	if _, err := Letterbox(crop, 320, DefaultPadColor); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("letterbox of empty crop: got %v, want ErrInvalidInput", err)
	}
}

func TestExtractROIs_PreservesOrder(t *testing.T) {
	frame := createPatternImage(100, 100)
	boxes := []Box{
		{Label: 0, Confidence: 0.9, Rect: image.Rect(50, 50, 100, 100)},
		{Label: 0, Confidence: 0.8, Rect: image.Rect(0, 0, 50, 50)},
		{Label: 1, Confidence: 0.7, Rect: image.Rect(50, 0, 100, 50)},
	}

	crops, err := ExtractROIs(frame, boxes, nil)
	if err != nil {
		t.Fatalf("ExtractROIs failed: %v", err)
	}
	if len(crops) != len(boxes) {
		t.Fatalf("got %d crops, want %d", len(crops), len(boxes))
	}

	want := []color.RGBA{
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{0, 255, 0, 255},
	}
	for i, c := range crops {
		if c.Bounds() != boxes[i].Rect {
			t.Errorf("crop %d bounds: got %v, want %v", i, c.Bounds(), boxes[i].Rect)
		}
		got := color.RGBAModel.Convert(c.At(c.Bounds().Min.X+5, c.Bounds().Min.Y+5)).(color.RGBA)
		if got != want[i] {
			t.Errorf("crop %d color: got %v, want %v", i, got, want[i])
		}
	}
}

func TestExtractROIs_InvalidBox(t *testing.T) {
	frame := createPatternImage(100, 100)
	boxes := []Box{
		{Rect: image.Rect(0, 0, 10, 10)},
		{Rect: image.Rect(90, 90, 110, 110)},
	}

	if _, err := ExtractROIs(frame, boxes, nil); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("got %v, want ErrInvalidBox", err)
	}
}

func TestExtractROIs_NoBoxes(t *testing.T) {
	crops, err := ExtractROIs(createPatternImage(10, 10), nil, nil)
	if err != nil {
		t.Fatalf("ExtractROIs failed: %v", err)
	}
	if len(crops) != 0 {
		t.Errorf("got %d crops, want 0", len(crops))
	}
}
