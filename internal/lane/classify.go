package lane

import "math"

// DefaultSlopeThreshold is the smallest |slope| accepted as lane-like.
const DefaultSlopeThreshold = 0.5

// ClassifySegment assigns a segment to a lane side from its slope, its
// horizontal midpoint and the frame width alone.
//
// Image y grows downward, so the left boundary of a lane seen from a centred
// forward camera rises to the right (negative slope) and sits left of
// centre; the right boundary mirrors it. Vertical segments, segments flatter
// than slopeThreshold and segments whose slope contradicts their position
// are SideNone.
func ClassifySegment(s Segment, width int, slopeThreshold float64) Side {
	if s.X1 == s.X2 {
		return SideNone
	}
	slope := float64(s.Y2-s.Y1) / float64(s.X2-s.X1)
	if math.Abs(slope) < slopeThreshold {
		return SideNone
	}

	mid := float64(s.X1+s.X2) / 2
	centre := float64(width) / 2
	switch {
	case slope < 0 && mid < centre:
		return SideLeft
	case slope > 0 && mid > centre:
		return SideRight
	}
	return SideNone
}

// Classify splits segments into left and right candidate sets.
func Classify(segs []Segment, width int, slopeThreshold float64) Candidates {
	var c Candidates
	for _, s := range segs {
		switch ClassifySegment(s, width, slopeThreshold) {
		case SideLeft:
			c.Left = append(c.Left, s)
		case SideRight:
			c.Right = append(c.Right, s)
		}
	}
	return c
}
