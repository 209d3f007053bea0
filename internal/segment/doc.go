// Package segment turns a letterboxed meter crop into a categorical mask.
//
// Decoding runs in three steps:
//
//  1. Inference: the crop is converted to a planar RGB float tensor, scaled by
//     1/255 per channel, and passed to a Runtime, which returns a raw
//     probability Volume shaped [classes][rows][cols].
//  2. Softmax: each location's class scores are normalized so they are
//     non-negative and sum to 1. Normalization fans out one worker per class
//     from a pool bounded by the class count and joins them before decoding.
//  3. Arg-max: each location is labelled with the class whose score strictly
//     exceeds both others; ties fall back to background.
//
// # Classes
//
// The network distinguishes three classes: Background (0), Pointer (1) and
// Scale (2).
//
// # Thread Safety
//
// Decoder is safe for concurrent use if its Runtime is. Volume and Mask values
// are not synchronized.
package segment
