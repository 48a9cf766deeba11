package lane

import (
	"image"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// DefaultBorderMargin is the half-size in pixels of the window inspected
// around segment endpoints.
const DefaultBorderMargin = 3

// NearBoundary reports whether (x, y) lies within r pixels of the mask's
// inside/outside boundary: the window [x-r, x+r] × [y-r, y+r], clamped to the
// mask, contains both MaskInside and MaskOutside pixels.
func NearBoundary(mask *image.Gray, x, y, r int) bool {
	b := mask.Bounds()
	xMin := max(x-r, b.Min.X)
	xMax := min(x+r, b.Max.X-1)
	yMin := max(y-r, b.Min.Y)
	yMax := min(y+r, b.Max.Y-1)

	var inside, outside bool
	for py := yMin; py <= yMax; py++ {
		row := mask.Pix[(py-b.Min.Y)*mask.Stride:]
		for px := xMin; px <= xMax; px++ {
			switch row[px-b.Min.X] {
			case imaging.MaskInside:
				inside = true
			case imaging.MaskOutside:
				outside = true
			}
			if inside && outside {
				return true
			}
		}
	}
	return false
}

// FilterBorder drops every segment with an endpoint near the mask boundary.
// Such segments are usually traced along the edge the mask itself creates.
func FilterBorder(mask *image.Gray, segs []Segment, r int) []Segment {
	kept := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if NearBoundary(mask, s.X1, s.Y1, r) || NearBoundary(mask, s.X2, s.Y2, r) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
