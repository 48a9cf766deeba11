package lane

// Memory carries the last non-empty candidate set of each side from one
// frame to the next. The zero value is the empty memory a video starts with;
// create it once before the first frame and thread the returned value
// through every later frame.
type Memory struct {
	Left  []Segment `json:"left,omitempty"`
	Right []Segment `json:"right,omitempty"`
}

// Empty reports whether neither side has been seen yet.
func (m Memory) Empty() bool {
	return len(m.Left) == 0 && len(m.Right) == 0
}

// Resolve picks the candidate sets to fit for this frame and returns the
// memory for the next one. A side with candidates uses them and replaces its
// memory; a side without candidates falls back to its memory, which stays
// unchanged. Sides are handled independently.
func (m Memory) Resolve(c Candidates) (Candidates, Memory) {
	used, next := c, m
	if len(c.Left) > 0 {
		next.Left = c.Left
	} else {
		used.Left = m.Left
	}
	if len(c.Right) > 0 {
		next.Right = c.Right
	} else {
		used.Right = m.Right
	}
	return used, next
}
