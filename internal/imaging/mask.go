package imaging

import (
	"image"

	"github.com/fogleman/gg"
)

// Mask pixel values.
const (
	MaskInside  uint8 = 255
	MaskOutside uint8 = 0
)

// PolygonMask rasterises a closed polygon into a binary mask of the given
// size: MaskInside where the polygon covers a pixel, MaskOutside elsewhere.
//
// Vertices are pixel coordinates and are placed on pixel centres, so a vertex
// at y = height lies just below the last row. The polygon is filled
// anti-aliased and then thresholded at half coverage, which keeps the mask
// strictly two-valued. Fewer than three vertices yield an all-outside mask.
func PolygonMask(width, height int, polygon []image.Point) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	if len(polygon) < 3 || width <= 0 || height <= 0 {
		return mask
	}

	dc := gg.NewContext(width, height)
	dc.MoveTo(float64(polygon[0].X)+0.5, float64(polygon[0].Y)+0.5)
	for _, p := range polygon[1:] {
		dc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
	}
	dc.ClosePath()
	dc.SetRGB(1, 1, 1)
	dc.Fill()

	coverage := ToRGBA(dc.Image())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := coverage.Pix[y*coverage.Stride+x*4+3]
			if a >= 0x80 {
				mask.Pix[y*mask.Stride+x] = MaskInside
			}
		}
	}
	return mask
}
