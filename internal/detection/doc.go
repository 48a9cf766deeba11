// Package detection finds straight line segments in binary edge maps.
//
// The only detector is a progressive probabilistic Hough transform
// (DetectSegments). It is tuned for lane markings but knows nothing about
// lanes: it takes an edge map and returns segments.
//
// # Algorithm Overview
//
// Unlike the classic Hough transform, which fills the whole accumulator and
// then searches it for peaks, the progressive variant interleaves voting and
// extraction:
//
//  1. Visit edge pixels in a random order
//  2. Vote each pixel into the (rho, theta) accumulator
//  3. As soon as a bin reaches the vote threshold, trace that line through
//     the edge map and cut out the segment
//  4. Withdraw the votes of the pixels consumed by the segment
//
// This finds long lines after seeing only a fraction of their pixels and
// yields endpoints directly rather than infinite lines.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Segments are reported in the coordinate space of the edge map's bounds, so
// a sub-image yields coordinates of its parent.
//
// # Determinism
//
// The visiting order comes from a PCG generator seeded by HoughParams.Seed.
// The same edge map and parameters always produce the same segments.
//
// # Performance Considerations
//
// Each visited pixel costs one accumulator update per angle (180 for the
// default 1 degree resolution). Restricting the edge map to a region of
// interest before detection is by far the cheapest optimisation.
package detection
