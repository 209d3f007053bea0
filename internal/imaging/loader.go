package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"

	"github.com/anthonynsimon/bild/imgio"
)

// Load decodes the image file at path.
//
// Any format registered with the image package decodes; imgio registers PNG
// and JPEG. An image that decodes to zero pixels is reported
// as ErrInvalidInput so callers can treat it like an unreadable file.
func Load(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image %s: %w", path, ErrInvalidInput)
	}
	return img, nil
}

// Glob returns the sorted paths of all *.jpg files directly inside dir.
//
// An empty slice (not an error) is returned when nothing matches.
func Glob(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
