package lane

import "github.com/ironsheep/lane-tools/internal/detection"

// Segment is a detected line segment in frame pixel coordinates.
type Segment = detection.Segment

// Side identifies which lane boundary a segment or line belongs to.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidates holds the segments attributed to each side for one frame.
// The slices are not modified once built, so they can be retained in Memory.
type Candidates struct {
	Left  []Segment `json:"left"`
	Right []Segment `json:"right"`
}

// Side returns the candidate set for side; SideNone yields nil.
func (c Candidates) Side(side Side) []Segment {
	switch side {
	case SideLeft:
		return c.Left
	case SideRight:
		return c.Right
	}
	return nil
}
