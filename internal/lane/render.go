package lane

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// Default overlay style.
const (
	DefaultLineColor = "#0000FF"
	DefaultLineWidth = 5.0
)

// Style is the colour and stroke width of lane overlays.
type Style struct {
	Color color.RGBA
	Width float64
}

// DefaultStyle returns a 5 px blue stroke.
func DefaultStyle() Style {
	return Style{Color: color.RGBA{B: 0xFF, A: 0xFF}, Width: DefaultLineWidth}
}

// ParseStyle builds a Style from a hex colour string and a stroke width.
func ParseStyle(hex string, width float64) (Style, error) {
	c, err := imaging.ParseColor(hex)
	if err != nil {
		return Style{}, err
	}
	if width <= 0 {
		return Style{}, fmt.Errorf("line width must be > 0, got %v", width)
	}
	return Style{Color: c, Width: width}, nil
}

// Render draws each present lane line onto frame in place.
func Render(frame *image.RGBA, style Style, lines ...*LaneLine) {
	for _, l := range lines {
		if l == nil {
			continue
		}
		imaging.DrawLine(frame, l.Bottom, l.Top, style.Color, style.Width)
	}
}
