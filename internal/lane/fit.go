package lane

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoCandidates is returned when a fit is requested for an empty
	// candidate set.
	ErrNoCandidates = errors.New("no candidate segments")

	// ErrDegenerateFit is returned when the candidate endpoints do not
	// define a usable line: all x equal, a flat or non-finite slope, or
	// draw endpoints too far outside any frame.
	ErrDegenerateFit = errors.New("degenerate line fit")
)

// minFitSlope is the smallest |slope| whose draw endpoints are computed.
// Flatter lines would put the endpoints arbitrarily far off-frame.
const minFitSlope = 1e-6

// maxCoordinate bounds the draw endpoint x values.
const maxCoordinate = 1 << 24

// FittedLine is the line y = Slope*x + Intercept in frame pixels.
type FittedLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Fit performs an ordinary least-squares fit of y on x over both endpoints
// of every segment.
func Fit(segs []Segment) (FittedLine, error) {
	if len(segs) == 0 {
		return FittedLine{}, ErrNoCandidates
	}

	xs := make([]float64, 0, 2*len(segs))
	ys := make([]float64, 0, 2*len(segs))
	for _, s := range segs {
		xs = append(xs, float64(s.X1), float64(s.X2))
		ys = append(ys, float64(s.Y1), float64(s.Y2))
	}

	if stat.Variance(xs, nil) == 0 {
		return FittedLine{}, fmt.Errorf("%w: all x coordinates equal", ErrDegenerateFit)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	line := FittedLine{Slope: slope, Intercept: intercept}
	if !line.finite() {
		return FittedLine{}, fmt.Errorf("%w: non-finite coefficients", ErrDegenerateFit)
	}
	if math.Abs(slope) < minFitSlope {
		return FittedLine{}, fmt.Errorf("%w: slope %g too flat", ErrDegenerateFit, slope)
	}
	return line, nil
}

// X returns the x at which the line reaches height y.
func (l FittedLine) X(y float64) float64 {
	return (y - l.Intercept) / l.Slope
}

// Endpoints returns the draw points of the line at heights bottomY and topY,
// rounded to the nearest pixel.
func (l FittedLine) Endpoints(bottomY, topY int) (image.Point, image.Point, error) {
	if !l.finite() || math.Abs(l.Slope) < minFitSlope {
		return image.Point{}, image.Point{}, ErrDegenerateFit
	}
	xb := l.X(float64(bottomY))
	xt := l.X(float64(topY))
	if math.Abs(xb) > maxCoordinate || math.Abs(xt) > maxCoordinate {
		return image.Point{}, image.Point{}, fmt.Errorf("%w: endpoint out of range", ErrDegenerateFit)
	}
	bottom := image.Point{X: int(math.Round(xb)), Y: bottomY}
	top := image.Point{X: int(math.Round(xt)), Y: topY}
	return bottom, top, nil
}

func (l FittedLine) finite() bool {
	return !math.IsNaN(l.Slope) && !math.IsInf(l.Slope, 0) &&
		!math.IsNaN(l.Intercept) && !math.IsInf(l.Intercept, 0)
}
