// Package detection defines the boundary to the meter object detector.
//
// The detector itself is an external collaborator: it receives a square,
// uniformly resized copy of the frame and returns labelled boxes in that
// resized space. This package provides the types that cross that boundary,
// the uniform resize used to build the detector input, and the remap that
// brings the detector's boxes back into original frame coordinates.
//
// # Pipeline
//
// A typical detection pass is:
//
//  1. ResizeUniform: scale the frame into a size x size canvas without
//     changing its aspect ratio, remembering the placed content as an EffectROI
//  2. Detector.Detect: run the external detector on the canvas
//  3. ConvertBoxes: map each box from canvas space back to the frame and clamp
//     it to the frame bounds
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rectangles use inclusive Min and exclusive Max
//
// # Confidence Scores
//
// Confidence is the detector's score for the box, from 0.0 to 1.0. Boxes below
// the confidence threshold passed to Detect are dropped by the detector, as
// are boxes suppressed by non-maximum suppression.
package detection
