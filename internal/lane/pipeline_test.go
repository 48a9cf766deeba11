package lane

import (
	"image"
	"image/color"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

const (
	testWidth  = 400
	testHeight = 300
)

// The default ROI on a 400x300 frame spans x 40..360 along the bottom and
// x 180..220 at y = 180.

// leftStroke lies on y = -x + 400 and rightStroke on y = x, both well inside
// the default ROI.
func leftStroke(edges *image.Gray) {
	for y := 210; y <= 270; y++ {
		edges.SetGray(400-y, y, color.Gray{Y: imaging.EdgeOn})
	}
}

func rightStroke(edges *image.Gray) {
	for y := 210; y <= 270; y++ {
		edges.SetGray(y, y, color.Gray{Y: imaging.EdgeOn})
	}
}

func newEdgeMap(strokes ...func(*image.Gray)) *image.Gray {
	edges := image.NewGray(image.Rect(0, 0, testWidth, testHeight))
	for _, s := range strokes {
		s(edges)
	}
	return edges
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(DefaultParams(), logs.NewTestingLog(t))
	require.NoError(t, err)
	return p
}

func TestPipeline_EndToEndEdgeMap(t *testing.T) {
	p := newTestPipeline(t)
	mask := p.Mask(testWidth, testHeight)
	poly := p.Params().ROI.Polygon(testWidth, testHeight)

	res, mem, err := p.ProcessEdges(newEdgeMap(leftStroke, rightStroke), mask, Memory{})
	require.NoError(t, err)

	require.NotEmpty(t, res.Candidates.Left)
	require.NotEmpty(t, res.Candidates.Right)
	require.NotNil(t, res.Left)
	require.NotNil(t, res.Right)

	assert.InDelta(t, -1.0, res.Left.Line.Slope, 0.05)
	assert.InDelta(t, 1.0, res.Right.Line.Slope, 0.05)

	for _, l := range res.Lines() {
		assert.False(t, l.FromMemory)
		assert.Equal(t, testHeight, l.Bottom.Y)
		assert.Equal(t, p.Params().ROI.TopY(testWidth, testHeight), l.Top.Y)
		assert.GreaterOrEqual(t, l.Bottom.X, poly[0].X, "%v bottom left of ROI", l.Side)
		assert.LessOrEqual(t, l.Bottom.X, poly[3].X, "%v bottom right of ROI", l.Side)
	}
	assert.InDelta(t, 100, res.Left.Bottom.X, 3)
	assert.InDelta(t, 300, res.Right.Bottom.X, 3)

	assert.Equal(t, res.Candidates.Left, mem.Left)
	assert.Equal(t, res.Candidates.Right, mem.Right)
}

func TestPipeline_TemporalFallback(t *testing.T) {
	p := newTestPipeline(t)
	mask := p.Mask(testWidth, testHeight)

	first, mem, err := p.ProcessEdges(newEdgeMap(leftStroke, rightStroke), mask, Memory{})
	require.NoError(t, err)
	require.NotNil(t, first.Left)

	second, mem2, err := p.ProcessEdges(newEdgeMap(rightStroke), mask, mem)
	require.NoError(t, err)

	assert.Empty(t, second.Candidates.Left)
	require.NotNil(t, second.Left)
	assert.True(t, second.Left.FromMemory)
	assert.Equal(t, first.Left.Line, second.Left.Line)
	assert.Equal(t, first.Left.Bottom, second.Left.Bottom)
	assert.Equal(t, first.Left.Top, second.Left.Top)
	require.NotNil(t, second.Right)
	assert.False(t, second.Right.FromMemory)
	assert.Equal(t, mem.Left, mem2.Left)
}

func TestPipeline_NoDetectionsNoMemory(t *testing.T) {
	p := newTestPipeline(t)

	res, mem, err := p.ProcessEdges(newEdgeMap(), p.Mask(testWidth, testHeight), Memory{})
	require.NoError(t, err)

	assert.Nil(t, res.Left)
	assert.Nil(t, res.Right)
	assert.Empty(t, res.Lines())
	assert.True(t, mem.Empty())
}

func TestPipeline_MemoryFallbackDisabled(t *testing.T) {
	params := DefaultParams()
	params.MemoryFallback = false
	p, err := New(params, logs.NewTestingLog(t))
	require.NoError(t, err)
	mask := p.Mask(testWidth, testHeight)

	_, mem, err := p.ProcessEdges(newEdgeMap(leftStroke, rightStroke), mask, Memory{})
	require.NoError(t, err)
	assert.True(t, mem.Empty())

	res, _, err := p.ProcessEdges(newEdgeMap(rightStroke), mask, Memory{Left: []Segment{{X1: 130, Y1: 270, X2: 190, Y2: 210}}})
	require.NoError(t, err)
	assert.Nil(t, res.Left)
	assert.NotNil(t, res.Right)
}

func TestPipeline_BorderFilterRemovesMaskOutline(t *testing.T) {
	p := newTestPipeline(t)
	mask := p.Mask(testWidth, testHeight)
	poly := p.Params().ROI.Polygon(testWidth, testHeight)

	// Trace the left side of the ROI itself, as masking a bright frame would.
	edges := newEdgeMap()
	a, b := poly[0], poly[1]
	for y := b.Y; y < a.Y; y++ {
		x := a.X + (b.X-a.X)*(a.Y-y)/(a.Y-b.Y)
		edges.SetGray(x, y, color.Gray{Y: imaging.EdgeOn})
	}

	res, _, err := p.ProcessEdges(edges, mask, Memory{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Segments)
	assert.Empty(t, res.Candidates.Left)
	assert.Nil(t, res.Left)
}

func TestPipeline_Process(t *testing.T) {
	p := newTestPipeline(t)

	// A dark road with two bright diagonal markings.
	frame := image.NewRGBA(image.Rect(0, 0, testWidth, testHeight))
	for i := range frame.Pix {
		if i%4 == 3 {
			frame.Pix[i] = 255
		} else {
			frame.Pix[i] = 30
		}
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 200; y <= 280; y++ {
		for d := -3; d <= 3; d++ {
			frame.Set(400-y+d, y, white)
			frame.Set(y+d, y, white)
		}
	}

	res, mem, err := p.Process(frame, Memory{})
	require.NoError(t, err)
	require.NotNil(t, res.Left)
	require.NotNil(t, res.Right)
	assert.False(t, mem.Empty())

	// The overlay is drawn in the configured colour at the bottom endpoints.
	for _, l := range res.Lines() {
		x := min(max(l.Bottom.X, 0), testWidth-1)
		assert.Equal(t, p.Params().Style.Color, frame.RGBAAt(x, testHeight-2), "%v overlay", l.Side)
	}
}

func TestPipeline_StagesEdgeOrder(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, testWidth, testHeight))
	for i := range frame.Pix {
		frame.Pix[i] = 255
	}

	for _, order := range []EdgeOrder{MaskFirst, MaskAfter} {
		t.Run(string(order), func(t *testing.T) {
			params := DefaultParams()
			params.EdgeOrder = order
			p, err := New(params, nil)
			require.NoError(t, err)

			st := p.Stages(frame)
			require.Equal(t, frame.Bounds(), st.Edges.Bounds())

			on := 0
			for _, v := range st.Edges.Pix {
				if v == imaging.EdgeOn {
					on++
				}
			}
			if order == MaskFirst {
				assert.Positive(t, on, "masking a bright frame should outline the ROI")
			} else {
				assert.Zero(t, on, "a uniform frame has no edges")
			}
		})
	}
}

func TestPipeline_MaskIsCached(t *testing.T) {
	p := newTestPipeline(t)

	a := p.Mask(testWidth, testHeight)
	b := p.Mask(testWidth, testHeight)
	c := p.Mask(testWidth*2, testHeight*2)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"negative canny", func(p *Params) { p.CannyLow = -1 }},
		{"negative blur", func(p *Params) { p.BlurRadius = -1 }},
		{"unknown edge order", func(p *Params) { p.EdgeOrder = "sideways" }},
		{"bad hough", func(p *Params) { p.Hough.Threshold = 0 }},
		{"negative slope threshold", func(p *Params) { p.SlopeThreshold = -0.1 }},
		{"zero border margin", func(p *Params) { p.BorderMargin = 0 }},
		{"zero line width", func(p *Params) { p.Style.Width = 0 }},
		{"bad roi", func(p *Params) { p.ROI.Mode = "" }},
	}

	require.NoError(t, DefaultParams().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			tt.modify(&params)
			assert.Error(t, params.Validate())

			_, err := New(params, nil)
			assert.Error(t, err)
		})
	}

	params := DefaultParams()
	params.BorderFilter = false
	params.BorderMargin = 0
	assert.NoError(t, params.Validate(), "margin is unused without the border filter")
}
