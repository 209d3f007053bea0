// Package imaging provides the image handling stages of the meter reading pipeline.
//
// This package implements frame loading, region-of-interest extraction from
// detector boxes, and the scale-preserving letterbox resize that prepares each
// meter crop for segmentation. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// # Letterboxing
//
// Letterbox scales a crop uniformly so it fits a square target, then pads the
// remainder with a fill color. The returned Letterboxed value keeps the scale
// factor and padding offset so that any point found in letterboxed space can be
// mapped back into the crop:
//
//	orig = (pixel - offset) / scale
//
// When the padding cannot be split evenly, the extra pixel goes to the right
// or bottom edge.
//
// # Ownership
//
// Crops returned by Crop are views into the source frame whenever the frame
// type supports SubImage; they must not be mutated. Letterbox always returns a
// newly allocated image owned by the caller.
//
// # Frames
//
// Frame is a packed 8-bit sample buffer used at the transport boundary.
// Three-channel frames store samples in B, G, R order, row-major, with no
// row padding.
//
// # Error Handling
//
// Functions return errors wrapping ErrInvalidInput for empty images and
// ErrInvalidBox for regions that fall outside the frame. Use errors.Is to test
// for them.
package imaging
