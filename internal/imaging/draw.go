package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#RRGGBB" (or "#RGB") hex string into an opaque
// colour.
func ParseColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawLine strokes a straight segment from a to b onto frame in place.
// Parts of the segment outside the frame are clipped.
func DrawLine(frame *image.RGBA, a, b image.Point, c color.Color, width float64) {
	dc := gg.NewContextForRGBA(frame)
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapRound)
	dc.DrawLine(float64(a.X), float64(a.Y), float64(b.X), float64(b.Y))
	dc.Stroke()
}
