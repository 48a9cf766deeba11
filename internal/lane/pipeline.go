package lane

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/lane-tools/internal/detection"
	"github.com/ironsheep/lane-tools/internal/imaging"
)

// EdgeOrder selects whether the ROI mask is applied before or after edge
// extraction.
type EdgeOrder string

const (
	// MaskFirst masks the smoothed grayscale frame and runs Canny on the
	// result. The mask outline itself becomes an edge, which the border
	// filter removes.
	MaskFirst EdgeOrder = "mask-first"

	// MaskAfter runs Canny on the whole frame and masks the edge map.
	MaskAfter EdgeOrder = "mask-after"
)

// Logger is the logging surface the pipeline needs. logs.Log satisfies it.
type Logger interface {
	Debugf(format string, a ...any)
	Warnf(format string, a ...any)
}

// Params configures every stage of the pipeline.
type Params struct {
	ROI            ROI
	CannyLow       int
	CannyHigh      int
	BlurRadius     float64
	EdgeOrder      EdgeOrder
	Hough          detection.HoughParams
	SlopeThreshold float64
	BorderMargin   int
	BorderFilter   bool
	MemoryFallback bool
	Style          Style
}

// DefaultParams returns the tuning used for 960x540 dash-camera footage.
func DefaultParams() Params {
	return Params{
		ROI:            DefaultROI(),
		CannyLow:       imaging.DefaultCannyLow,
		CannyHigh:      imaging.DefaultCannyHigh,
		BlurRadius:     imaging.DefaultBlurRadius,
		EdgeOrder:      MaskFirst,
		Hough:          detection.DefaultHoughParams(),
		SlopeThreshold: DefaultSlopeThreshold,
		BorderMargin:   DefaultBorderMargin,
		BorderFilter:   true,
		MemoryFallback: true,
		Style:          DefaultStyle(),
	}
}

// Validate checks every stage's parameters.
func (p Params) Validate() error {
	if err := p.ROI.Validate(); err != nil {
		return err
	}
	if p.CannyLow < 0 || p.CannyHigh < 0 {
		return fmt.Errorf("canny thresholds must be >= 0, got %d/%d", p.CannyLow, p.CannyHigh)
	}
	if p.BlurRadius < 0 {
		return fmt.Errorf("blur radius must be >= 0, got %v", p.BlurRadius)
	}
	if p.EdgeOrder != MaskFirst && p.EdgeOrder != MaskAfter {
		return fmt.Errorf("unknown edge order %q", p.EdgeOrder)
	}
	if err := p.Hough.Validate(); err != nil {
		return err
	}
	if p.SlopeThreshold < 0 {
		return fmt.Errorf("slope threshold must be >= 0, got %v", p.SlopeThreshold)
	}
	if p.BorderFilter && p.BorderMargin < 1 {
		return fmt.Errorf("border margin must be >= 1 when the border filter is on, got %d", p.BorderMargin)
	}
	if p.Style.Width <= 0 {
		return fmt.Errorf("line width must be > 0, got %v", p.Style.Width)
	}
	return nil
}

// LaneLine is the fitted line of one side together with its draw endpoints.
type LaneLine struct {
	Side       Side        `json:"side"`
	Line       FittedLine  `json:"line"`
	Bottom     image.Point `json:"bottom"`
	Top        image.Point `json:"top"`
	FromMemory bool        `json:"from_memory"`
}

// Result describes what the pipeline found in one frame.
type Result struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Segments   []Segment  `json:"segments"`
	Candidates Candidates `json:"candidates"`
	Used       Candidates `json:"used"`
	Left       *LaneLine  `json:"left,omitempty"`
	Right      *LaneLine  `json:"right,omitempty"`
}

// Lines returns the sides that produced a line, left first.
func (r *Result) Lines() []*LaneLine {
	var lines []*LaneLine
	if r.Left != nil {
		lines = append(lines, r.Left)
	}
	if r.Right != nil {
		lines = append(lines, r.Right)
	}
	return lines
}

// Stages holds the intermediate images of one frame.
type Stages struct {
	Gray  *image.Gray
	Mask  *image.Gray
	Edges *image.Gray
}

// Pipeline runs the lane extraction stages over frames. It holds no
// cross-frame state besides a cache of ROI masks keyed by frame size, so one
// Pipeline may serve several videos; each video threads its own Memory.
type Pipeline struct {
	params Params
	log    Logger

	mu    sync.Mutex
	masks map[image.Point]*image.Gray
}

// New validates params and returns a pipeline.
func New(params Params, log Logger) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline parameters: %w", err)
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Pipeline{
		params: params,
		log:    log,
		masks:  make(map[image.Point]*image.Gray),
	}, nil
}

// Params returns the pipeline's configuration.
func (p *Pipeline) Params() Params {
	return p.params
}

// Mask returns the ROI mask for a frame size. Masks are built once per size
// and must not be modified by callers.
func (p *Pipeline) Mask(width, height int) *image.Gray {
	key := image.Point{X: width, Y: height}
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.masks[key]; ok {
		return m
	}
	m := p.params.ROI.Mask(width, height)
	p.masks[key] = m
	return m
}

// Stages computes the grayscale, mask and edge images of a frame.
func (p *Pipeline) Stages(frame image.Image) *Stages {
	b := frame.Bounds()
	gray := imaging.Preprocess(frame, p.params.BlurRadius)
	mask := p.Mask(b.Dx(), b.Dy())

	var edges *image.Gray
	switch p.params.EdgeOrder {
	case MaskAfter:
		edges = imaging.ApplyMask(imaging.Canny(gray, p.params.CannyLow, p.params.CannyHigh), mask)
	default:
		edges = imaging.Canny(imaging.ApplyMask(gray, mask), p.params.CannyLow, p.params.CannyHigh)
	}
	return &Stages{Gray: gray, Mask: mask, Edges: edges}
}

// ProcessEdges runs detection, filtering, classification, memory and fitting
// on a prepared edge map. mask must have the edge map's size.
func (p *Pipeline) ProcessEdges(edges, mask *image.Gray, mem Memory) (*Result, Memory, error) {
	b := edges.Bounds()
	res := &Result{Width: b.Dx(), Height: b.Dy()}

	segs, err := detection.DetectSegments(edges, p.params.Hough)
	if err != nil {
		return nil, mem, err
	}
	res.Segments = segs

	if p.params.BorderFilter {
		segs = FilterBorder(mask, segs, p.params.BorderMargin)
	}
	res.Candidates = Classify(segs, res.Width, p.params.SlopeThreshold)

	used, next := res.Candidates, mem
	if p.params.MemoryFallback {
		used, next = mem.Resolve(res.Candidates)
	}
	res.Used = used

	topY := p.params.ROI.TopY(res.Width, res.Height)
	res.Left = p.fitSide(SideLeft, used.Left, len(res.Candidates.Left) == 0, res.Height, topY)
	res.Right = p.fitSide(SideRight, used.Right, len(res.Candidates.Right) == 0, res.Height, topY)
	return res, next, nil
}

func (p *Pipeline) fitSide(side Side, segs []Segment, fromMemory bool, bottomY, topY int) *LaneLine {
	if len(segs) == 0 {
		return nil
	}
	if fromMemory {
		p.log.Debugf("lane: %v side empty, using %d remembered segments", side, len(segs))
	}

	line, err := Fit(segs)
	if err == nil {
		var bottom, top image.Point
		bottom, top, err = line.Endpoints(bottomY, topY)
		if err == nil {
			return &LaneLine{Side: side, Line: line, Bottom: bottom, Top: top, FromMemory: fromMemory}
		}
	}
	if errors.Is(err, ErrDegenerateFit) {
		p.log.Debugf("lane: %v side skipped: %v", side, err)
	} else {
		p.log.Warnf("lane: %v side fit failed: %v", side, err)
	}
	return nil
}

// Detect runs every stage except rendering and returns the result and the
// memory for the next frame.
func (p *Pipeline) Detect(frame image.Image, mem Memory) (*Result, Memory, error) {
	st := p.Stages(frame)
	return p.ProcessEdges(st.Edges, st.Mask, mem)
}

// Process runs the full pipeline and draws the lane lines onto frame.
func (p *Pipeline) Process(frame *image.RGBA, mem Memory) (*Result, Memory, error) {
	res, next, err := p.Detect(frame, mem)
	if err != nil {
		return nil, mem, err
	}
	Render(frame, p.params.Style, res.Lines()...)
	return res, next, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
