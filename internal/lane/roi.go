package lane

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// ROIMode selects how ROI corners are interpreted.
type ROIMode string

const (
	// ROIFraction expresses corners as fractions of frame width and height.
	ROIFraction ROIMode = "fraction"

	// ROIPixels expresses corners as fixed pixel coordinates.
	ROIPixels ROIMode = "pixels"
)

// Vertex is one ROI corner, either a fraction of the frame size or a pixel
// position depending on the ROI mode.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ROI is the trapezoidal region of the road ahead of the vehicle.
//
// Corners are ordered bottom-left, top-left, top-right, bottom-right.
// TopY, when set, overrides the y of both top corners in pixels; it is the
// single value used both to build the mask and as the upper end of drawn
// lane lines.
type ROI struct {
	Mode    ROIMode   `json:"mode"`
	Corners [4]Vertex `json:"corners"`
	TopY    *int      `json:"top_y,omitempty"`
}

// DefaultROI returns the proportional trapezoid (0.10W,H) (0.45W,0.6H)
// (0.55W,0.6H) (0.90W,H).
func DefaultROI() ROI {
	return ROI{
		Mode: ROIFraction,
		Corners: [4]Vertex{
			{X: 0.10, Y: 1.0},
			{X: 0.45, Y: 0.6},
			{X: 0.55, Y: 0.6},
			{X: 0.90, Y: 1.0},
		},
	}
}

// Validate rejects unknown modes, fractions outside [0, 1] and negative
// pixel coordinates. A degenerate trapezoid is not detected here.
func (r ROI) Validate() error {
	switch r.Mode {
	case ROIFraction:
		for i, c := range r.Corners {
			if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 {
				return fmt.Errorf("roi corner %d: fraction (%v,%v) outside [0,1]", i, c.X, c.Y)
			}
		}
	case ROIPixels:
		for i, c := range r.Corners {
			if c.X < 0 || c.Y < 0 {
				return fmt.Errorf("roi corner %d: negative pixel coordinate (%v,%v)", i, c.X, c.Y)
			}
		}
	default:
		return fmt.Errorf("unknown roi mode %q", r.Mode)
	}
	if r.TopY != nil && *r.TopY < 0 {
		return fmt.Errorf("roi top_y must be >= 0, got %d", *r.TopY)
	}
	return nil
}

// Polygon returns the ROI corners in pixel coordinates for a frame of the
// given size.
func (r ROI) Polygon(width, height int) []image.Point {
	poly := make([]image.Point, len(r.Corners))
	for i, c := range r.Corners {
		if r.Mode == ROIPixels {
			poly[i] = image.Point{X: int(c.X), Y: int(c.Y)}
		} else {
			poly[i] = image.Point{
				X: int(math.Floor(float64(width) * c.X)),
				Y: int(math.Floor(float64(height) * c.Y)),
			}
		}
	}
	if r.TopY != nil {
		poly[1].Y = *r.TopY
		poly[2].Y = *r.TopY
	}
	return poly
}

// TopY returns the height of the ROI's top edge, the smallest y of its
// polygon. Fitted lines are drawn up to this height.
func (r ROI) TopY(width, height int) int {
	poly := r.Polygon(width, height)
	top := poly[0].Y
	for _, p := range poly[1:] {
		if p.Y < top {
			top = p.Y
		}
	}
	return top
}

// Mask rasterises the ROI for a frame of the given size.
func (r ROI) Mask(width, height int) *image.Gray {
	return imaging.PolygonMask(width, height, r.Polygon(width, height))
}
