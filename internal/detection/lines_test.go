package detection

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// createEdgeMap creates an empty binary edge map
func createEdgeMap(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// drawEdgeLine sets edge pixels along a straight line using DDA stepping
func drawEdgeLine(img *image.Gray, x1, y1, x2, y2 int) {
	dx := x2 - x1
	dy := y2 - y1
	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		img.SetGray(x1, y1, color.Gray{255})
		return
	}
	for i := 0; i <= steps; i++ {
		x := x1 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y1 + int(math.Round(float64(dy*i)/float64(steps)))
		img.SetGray(x, y, color.Gray{255})
	}
}

// spans returns the horizontal and vertical extent of a segment
func spans(s Segment) (int, int) {
	return absInt(s.X2 - s.X1), absInt(s.Y2 - s.Y1)
}

func TestDetectSegments_Horizontal(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawEdgeLine(edges, 10, 50, 89, 50)

	segs, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}

	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(segs), segs)
	}
	s := segs[0]
	if s.Y1 != 50 || s.Y2 != 50 {
		t.Errorf("segment should lie on y=50, got %+v", s)
	}
	if w, _ := spans(s); w < 75 {
		t.Errorf("segment should cover most of the line, got width %d", w)
	}
}

func TestDetectSegments_Vertical(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawEdgeLine(edges, 30, 5, 30, 94)

	segs, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}

	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(segs), segs)
	}
	if segs[0].X1 != 30 || segs[0].X2 != 30 {
		t.Errorf("segment should lie on x=30, got %+v", segs[0])
	}
}

func TestDetectSegments_Diagonal(t *testing.T) {
	edges := createEdgeMap(120, 120)
	drawEdgeLine(edges, 10, 100, 90, 20)

	segs, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}

	if len(segs) == 0 {
		t.Fatal("diagonal line was not detected")
	}
	for _, s := range segs {
		// Every endpoint must be on (or next to) x + y = 110
		for _, sum := range []int{s.X1 + s.Y1, s.X2 + s.Y2} {
			if absInt(sum-110) > 1 {
				t.Errorf("endpoint off the line: %+v", s)
			}
		}
	}
	w, h := spans(segs[0])
	if w < 40 && h < 40 {
		t.Errorf("segment shorter than MinLength: %+v", segs[0])
	}
}

func TestDetectSegments_TwoLines(t *testing.T) {
	edges := createEdgeMap(200, 150)
	drawEdgeLine(edges, 20, 140, 90, 70)
	drawEdgeLine(edges, 110, 70, 180, 140)

	segs, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}

	var neg, pos bool
	for _, s := range segs {
		if s.X1 == s.X2 {
			continue
		}
		slope := float64(s.Y2-s.Y1) / float64(s.X2-s.X1)
		if slope < 0 {
			neg = true
		} else if slope > 0 {
			pos = true
		}
	}
	if !neg || !pos {
		t.Errorf("expected one rising and one falling segment, got %v", segs)
	}
}

func TestDetectSegments_ShortLineFiltered(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawEdgeLine(edges, 40, 50, 65, 50) // 26 px, enough votes but too short

	segs, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if len(segs) != 0 {
		t.Errorf("expected no segments for a short line, got %v", segs)
	}
}

func TestDetectSegments_Empty(t *testing.T) {
	segs, err := DetectSegments(createEdgeMap(50, 50), DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if segs == nil || len(segs) != 0 {
		t.Errorf("expected empty non-nil result, got %v", segs)
	}

	segs, err = DetectSegments(createEdgeMap(0, 0), DefaultHoughParams())
	if err != nil || len(segs) != 0 {
		t.Errorf("zero-sized map: got %v, %v", segs, err)
	}
}

func TestDetectSegments_CoarseRho(t *testing.T) {
	// A rho step wider than the image collapses the rho axis to a few bins.
	for _, size := range []int{2, 5, 10, 40} {
		for _, rho := range []float64{20, 100, 1000, 1e9} {
			edges := createEdgeMap(size, size)
			drawEdgeLine(edges, 0, 0, size-1, size-1)

			p := DefaultHoughParams()
			p.Rho = rho
			p.Threshold = 1
			p.MinLength = 0

			if _, err := DetectSegments(edges, p); err != nil {
				t.Errorf("size=%d rho=%v: unexpected error: %v", size, rho, err)
			}
		}
	}
}

func TestDetectSegments_GapBridging(t *testing.T) {
	edges := createEdgeMap(120, 40)
	drawEdgeLine(edges, 5, 20, 50, 20)
	drawEdgeLine(edges, 60, 20, 110, 20)

	p := DefaultHoughParams()
	p.MaxGap = 20
	segs, err := DetectSegments(edges, p)
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("gap of 9 px should be bridged into one segment, got %v", segs)
	}
	if w, _ := spans(segs[0]); w < 100 {
		t.Errorf("bridged segment too short: %+v", segs[0])
	}

	p.MaxGap = 2
	segs, err = DetectSegments(edges, p)
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if len(segs) != 2 {
		t.Errorf("gap of 9 px should split with MaxGap=2, got %v", segs)
	}
}

func TestDetectSegments_Deterministic(t *testing.T) {
	edges := createEdgeMap(200, 150)
	drawEdgeLine(edges, 20, 140, 90, 70)
	drawEdgeLine(edges, 110, 70, 180, 140)
	drawEdgeLine(edges, 0, 10, 199, 10)

	a, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	b, err := DetectSegments(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("same seed gave %d and %d segments", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("segment %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDetectSegments_MaxSegments(t *testing.T) {
	edges := createEdgeMap(200, 200)
	for y := 10; y < 200; y += 20 {
		drawEdgeLine(edges, 0, y, 199, y)
	}

	p := DefaultHoughParams()
	p.MaxSegments = 3
	segs, err := DetectSegments(edges, p)
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if len(segs) != 3 {
		t.Errorf("expected 3 segments, got %d", len(segs))
	}
}

func TestDetectSegments_SubImageOffset(t *testing.T) {
	full := createEdgeMap(200, 200)
	drawEdgeLine(full, 110, 150, 190, 150)
	sub := full.SubImage(image.Rect(100, 100, 200, 200)).(*image.Gray)

	segs, err := DetectSegments(sub, DefaultHoughParams())
	if err != nil {
		t.Fatalf("DetectSegments failed: %v", err)
	}
	if len(segs) != 1 || segs[0].Y1 != 150 {
		t.Errorf("segments should be reported in the parent's coordinates, got %v", segs)
	}
}

func TestHoughParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HoughParams)
	}{
		{"zero rho", func(p *HoughParams) { p.Rho = 0 }},
		{"zero theta", func(p *HoughParams) { p.Theta = 0 }},
		{"NaN theta", func(p *HoughParams) { p.Theta = math.NaN() }},
		{"zero threshold", func(p *HoughParams) { p.Threshold = 0 }},
		{"negative min length", func(p *HoughParams) { p.MinLength = -1 }},
		{"negative gap", func(p *HoughParams) { p.MaxGap = -1 }},
		{"negative max segments", func(p *HoughParams) { p.MaxSegments = -1 }},
	}

	if err := DefaultHoughParams().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultHoughParams()
			tt.mutate(&p)
			_, err := DetectSegments(createEdgeMap(10, 10), p)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestSegment_Length(t *testing.T) {
	s := Segment{X1: 0, Y1: 0, X2: 3, Y2: 4}
	if s.Length() != 5 {
		t.Errorf("Length: got %v, want 5", s.Length())
	}
}
