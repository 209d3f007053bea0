package segment

import (
	"fmt"
	"image"
)

// Mask is a per-pixel class label map.
type Mask struct {
	Width  int
	Height int

	// Pix holds one class id per pixel, row-major.
	Pix []uint8
}

// At returns the class at (x, y).
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Count returns the number of pixels labelled class.
func (m *Mask) Count(class uint8) int {
	n := 0
	for _, p := range m.Pix {
		if p == class {
			n++
		}
	}
	return n
}

// Gray returns the mask as a grayscale image whose sample values are the
// class ids.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}

// DecodeMask labels each location of a normalized volume.
//
// A location is Pointer only if its pointer score strictly exceeds both the
// background and scale scores, Scale only if its scale score strictly exceeds
// both others, and Background otherwise. Ties therefore resolve to
// Background.
func DecodeMask(v *Volume) (*Mask, error) {
	if v == nil || v.Classes != NumClasses {
		return nil, fmt.Errorf("decode mask: need %d classes: %w", NumClasses, ErrShape)
	}
	if err := v.Validate(NumClasses, v.Height, v.Width); err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}

	bg := v.Plane(int(Background))
	ptr := v.Plane(int(Pointer))
	sc := v.Plane(int(Scale))

	m := &Mask{Width: v.Width, Height: v.Height, Pix: make([]uint8, v.Width*v.Height)}
	for i := range m.Pix {
		switch {
		case ptr[i] > sc[i] && ptr[i] > bg[i]:
			m.Pix[i] = Pointer
		case sc[i] > ptr[i] && sc[i] > bg[i]:
			m.Pix[i] = Scale
		default:
			m.Pix[i] = Background
		}
	}
	return m, nil
}
