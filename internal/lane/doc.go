// Package lane extracts the left and right lane boundaries from camera frames.
//
// A Pipeline chains the per-frame stages:
//
//  1. Grayscale and Gaussian smoothing
//  2. ROI mask of the road ahead (ROI)
//  3. Canny edges, masked before or after detection (EdgeOrder)
//  4. Probabilistic Hough segments
//  5. Removal of segments traced along the mask outline (FilterBorder)
//  6. Left/right classification by slope and position (Classify)
//  7. Fallback to the last seen segments of an empty side (Memory)
//  8. Least-squares line per side (Fit) drawn between the frame bottom and
//     the ROI top (Render)
//
// # Coordinate System
//
// Image coordinates: origin top-left, y grows downward. A left lane boundary
// therefore has a negative slope and a right boundary a positive one.
//
// # State
//
// Memory is the only state carried between frames and is passed in and
// returned explicitly:
//
//	var mem lane.Memory
//	for frame := range frames {
//		res, mem, err = p.Process(frame, mem)
//		...
//	}
//
// Frames must be processed in order; a video cannot be split across
// goroutines without giving each part its own Memory.
package lane
