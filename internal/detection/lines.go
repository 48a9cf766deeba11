package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
)

// Segment is a detected straight line piece in pixel coordinates.
// Segments are values and are never modified after detection.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	dx := float64(s.X2 - s.X1)
	dy := float64(s.Y2 - s.Y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// HoughParams tunes the probabilistic Hough transform.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64 `json:"rho"`

	// Theta is the angular resolution of the accumulator in radians.
	Theta float64 `json:"theta"`

	// Threshold is the minimum number of votes a line needs before it is
	// traced.
	Threshold int `json:"threshold"`

	// MinLength is the minimum horizontal or vertical extent of a segment.
	MinLength int `json:"min_length"`

	// MaxGap is the largest run of missing pixels bridged while tracing.
	MaxGap int `json:"max_gap"`

	// Seed fixes the random visiting order so results are reproducible.
	Seed uint64 `json:"seed"`

	// MaxSegments caps the number of segments returned; 0 means no cap.
	MaxSegments int `json:"max_segments"`
}

// DefaultHoughParams returns the tuning used for lane markings: 1 px,
// 1 degree, 20 votes, 40 px minimum length, 100 px maximum gap.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:       1,
		Theta:     math.Pi / 180,
		Threshold: 20,
		MinLength: 40,
		MaxGap:    100,
		Seed:      1,
	}
}

// ErrInvalidParams is returned for non-positive resolutions or thresholds.
var ErrInvalidParams = errors.New("invalid hough parameters")

// Validate reports whether the parameters can drive the transform.
func (p HoughParams) Validate() error {
	switch {
	case !(p.Rho > 0):
		return fmt.Errorf("%w: rho must be > 0, got %v", ErrInvalidParams, p.Rho)
	case !(p.Theta > 0) || p.Theta > math.Pi:
		return fmt.Errorf("%w: theta must be in (0, pi], got %v", ErrInvalidParams, p.Theta)
	case p.Threshold < 1:
		return fmt.Errorf("%w: threshold must be >= 1, got %d", ErrInvalidParams, p.Threshold)
	case p.MinLength < 0:
		return fmt.Errorf("%w: min length must be >= 0, got %d", ErrInvalidParams, p.MinLength)
	case p.MaxGap < 0:
		return fmt.Errorf("%w: max gap must be >= 0, got %d", ErrInvalidParams, p.MaxGap)
	case p.MaxSegments < 0:
		return fmt.Errorf("%w: max segments must be >= 0, got %d", ErrInvalidParams, p.MaxSegments)
	}
	return nil
}

// DetectSegments finds straight segments in a binary edge map using the
// progressive probabilistic Hough transform.
//
// Any non-zero pixel of edges counts as an edge. An empty result is not an
// error; only invalid parameters are.
//
// # Algorithm
//
//  1. Edge pixels are visited once each in a random order fixed by Seed.
//  2. Each visited pixel votes for every angle in the (rho, theta)
//     accumulator. If its strongest bin stays below Threshold, move on.
//  3. Otherwise the line of that bin is traced in both directions from the
//     pixel, accepting edge pixels within one pixel across the line and
//     bridging up to MaxGap missing pixels.
//  4. Every pixel on the traced run is removed from further consideration.
//     If the run spans at least MinLength horizontally or vertically it
//     becomes a segment, and the votes its pixels cast are withdrawn.
func DetectSegments(edges *image.Gray, p HoughParams) ([]Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	segments := make([]Segment, 0)
	if width == 0 || height == 0 {
		return segments, nil
	}

	numAngle := int(math.Round(math.Pi / p.Theta))
	if numAngle < 1 {
		numAngle = 1
	}
	// |x*cos + y*sin| never exceeds the image diagonal, so the rho axis
	// covers [-maxRho, maxRho] and always has at least one bin.
	maxRho := int(math.Ceil(math.Hypot(float64(width), float64(height)) / p.Rho))
	numRho := 2*maxRho + 1
	rhoOffset := maxRho
	irho := 1 / p.Rho

	cosT := make([]float64, numAngle)
	sinT := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		angle := float64(n) * p.Theta
		cosT[n] = math.Cos(angle) * irho
		sinT[n] = math.Sin(angle) * irho
	}

	accumulator := make([]int, numAngle*numRho)
	binOf := func(x, y, n int) int {
		r := int(math.Round(float64(x)*cosT[n]+float64(y)*sinT[n])) + rhoOffset
		return n*numRho + r
	}

	// Collect edge pixels
	pending := make([]bool, width*height)
	voted := make([]bool, width*height)
	points := make([]image.Point, 0)
	for y := 0; y < height; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+width]
		for x, v := range row {
			if v != 0 {
				pending[y*width+x] = true
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	order := rng.Perm(len(points))

	for _, idx := range order {
		if p.MaxSegments > 0 && len(segments) >= p.MaxSegments {
			break
		}

		pt := points[idx]
		if !pending[pt.Y*width+pt.X] {
			continue
		}

		// Vote in Hough space
		maxVal := p.Threshold - 1
		maxN := 0
		for n := 0; n < numAngle; n++ {
			bin := binOf(pt.X, pt.Y, n)
			accumulator[bin]++
			if accumulator[bin] > maxVal {
				maxVal = accumulator[bin]
				maxN = n
			}
		}
		voted[pt.Y*width+pt.X] = true
		if maxVal < p.Threshold {
			continue
		}

		tr := newTracer(pt, -sinT[maxN], cosT[maxN], width, height)

		// First pass: find how far the line extends each way.
		var ends [2]image.Point
		var lastStep [2]int
		for k := 0; k < 2; k++ {
			ends[k] = pt
			gap := 0
			tr.walk(k, func(step int, cross [3]image.Point) bool {
				for _, c := range cross {
					if c.X >= 0 && pending[c.Y*width+c.X] {
						gap = 0
						ends[k] = c
						lastStep[k] = step
						return true
					}
				}
				gap++
				return gap <= p.MaxGap
			})
		}

		good := absInt(ends[1].X-ends[0].X) >= p.MinLength || absInt(ends[1].Y-ends[0].Y) >= p.MinLength

		// Second pass: retire the pixels up to each end.
		for k := 0; k < 2; k++ {
			tr.walk(k, func(step int, cross [3]image.Point) bool {
				for _, c := range cross {
					if c.X < 0 {
						continue
					}
					i := c.Y*width + c.X
					if !pending[i] {
						continue
					}
					if good && voted[i] {
						for n := 0; n < numAngle; n++ {
							accumulator[binOf(c.X, c.Y, n)]--
						}
					}
					pending[i] = false
				}
				return step < lastStep[k]
			})
		}

		if good {
			segments = append(segments, Segment{
				X1: ends[0].X + bounds.Min.X,
				Y1: ends[0].Y + bounds.Min.Y,
				X2: ends[1].X + bounds.Min.X,
				Y2: ends[1].Y + bounds.Min.Y,
			})
		}
	}

	return segments, nil
}

// tracer steps along a line one pixel at a time in its dominant axis.
type tracer struct {
	start         image.Point
	dx, dy        float64
	xMajor        bool
	width, height int
}

func newTracer(start image.Point, a, b float64, width, height int) tracer {
	t := tracer{start: start, width: width, height: height}
	if math.Abs(a) > math.Abs(b) {
		t.xMajor = true
		t.dx = 1
		if a < 0 {
			t.dx = -1
		}
		t.dy = b / math.Abs(a)
	} else {
		t.dy = 1
		if b < 0 {
			t.dy = -1
		}
		t.dx = a / math.Abs(b)
	}
	return t
}

// walk visits pixels from the start point in direction k (0 forward,
// 1 backward) until visit returns false or the image edge is reached.
// step counts pixels from the start point. cross holds the pixel on the
// line first, then its two neighbours across the line; entries outside the
// image have X = -1.
func (t tracer) walk(k int, visit func(step int, cross [3]image.Point) bool) {
	dx, dy := t.dx, t.dy
	if k > 0 {
		dx, dy = -dx, -dy
	}
	fx, fy := float64(t.start.X), float64(t.start.Y)
	for step := 0; ; step++ {
		x := int(math.Floor(fx + 0.5))
		y := int(math.Floor(fy + 0.5))
		if x < 0 || x >= t.width || y < 0 || y >= t.height {
			return
		}

		cross := [3]image.Point{{X: x, Y: y}, {X: -1}, {X: -1}}
		if t.xMajor {
			if y > 0 {
				cross[1] = image.Point{X: x, Y: y - 1}
			}
			if y < t.height-1 {
				cross[2] = image.Point{X: x, Y: y + 1}
			}
		} else {
			if x > 0 {
				cross[1] = image.Point{X: x - 1, Y: y}
			}
			if x < t.width-1 {
				cross[2] = image.Point{X: x + 1, Y: y}
			}
		}

		if !visit(step, cross) {
			return
		}
		fx += dx
		fy += dy
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
