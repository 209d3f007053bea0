// Package visualize draws per-meter results onto a frame.
//
// Each detected meter gets a box outline: green when it produced a mask, red
// when it failed. Meters with a reading are labelled with the value in Mpa
// above the box, or inside it when the box touches the top edge.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/meter-reader/internal/pipeline"
)

var (
	okColor    = color.NRGBA{R: 0, G: 220, B: 0, A: 255}
	failColor  = color.NRGBA{R: 230, G: 30, B: 30, A: 255}
	labelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelBG    = color.NRGBA{R: 0, G: 0, B: 0, A: 200}
)

const thickness = 2

// Render returns a copy of frame with res drawn on it.
func Render(frame image.Image, res *pipeline.Result) *image.NRGBA {
	out := imaging.Clone(frame)
	if res == nil {
		return out
	}
	// Clone rebases to the origin; boxes are in frame coordinates.
	shift := frame.Bounds().Min

	for i := range res.Meters {
		m := &res.Meters[i]
		r := m.Object.Rect.Sub(shift).Intersect(out.Bounds())
		if r.Empty() {
			continue
		}
		c := okColor
		if !m.OK() {
			c = failColor
		}
		outline(out, r, c)
		if m.HasReading {
			label(out, r, FormatReading(m.Reading))
		}
	}
	return out
}

// FormatReading formats a gauge value the way results are printed.
func FormatReading(v float64) string {
	return fmt.Sprintf("%.3f Mpa", v)
}

// Save renders res onto frame and writes it to dir as
// <index>_processed_image.jpg, returning the path.
func Save(dir string, index int, frame image.Image, res *pipeline.Result) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d_processed_image.jpg", index))
	if err := imaging.Save(Render(frame, res), path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

func outline(dst draw.Image, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	t := thickness
	if r.Dx() < 2*t || r.Dy() < 2*t {
		draw.Draw(dst, r, src, image.Point{}, draw.Src)
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

func label(dst draw.Image, r image.Rectangle, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelColor), Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Height

	top := r.Min.Y - h - 2
	if top < dst.Bounds().Min.Y {
		top = r.Min.Y + thickness
	}
	bg := image.Rect(r.Min.X, top, r.Min.X+w+4, top+h+2).Intersect(dst.Bounds())
	draw.Draw(dst, bg, image.NewUniform(labelBG), image.Point{}, draw.Over)

	d.Dot = fixed.P(r.Min.X+2, top+face.Ascent+1)
	d.DrawString(text)
}
