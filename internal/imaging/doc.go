// Package imaging provides the raster operations behind lane extraction.
//
// This package implements the pixel-level building blocks used by the lane
// pipeline: frame decoding and caching, grayscale conversion and Gaussian
// smoothing, region-of-interest mask rasterisation, masking, Canny edge
// detection, and overlay drawing. All operations work with standard Go
// image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Image Types
//
// Frames are *image.RGBA with their origin at (0,0) and are the only images
// mutated in place (by DrawLine). Grayscale images, masks and edge maps are
// *image.Gray of the same dimensions:
//   - Masks hold exactly two values, MaskInside (255) and MaskOutside (0)
//   - Edge maps hold EdgeOn (255) and EdgeOff (0)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// and must not be mutated; ImageCache.Frame returns a private copy. All other
// functions are stateless and can be called concurrently on different images.
//
// # Libraries
//
// Grayscale conversion and blur come from bild, decoding, encoding and
// resizing from disintegration/imaging, polygon filling and line stroking
// from gg, and colour parsing from go-colorful.
package imaging
