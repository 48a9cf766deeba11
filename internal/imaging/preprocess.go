package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// DefaultBlurRadius gives a 5x5 Gaussian kernel.
const DefaultBlurRadius = 2.0

// Preprocess converts a frame to grayscale and smooths it with a Gaussian
// blur to suppress spurious high-frequency edges.
//
// A blurRadius of zero or less skips the blur. The kernel side is
// 2*blurRadius+1 pixels, so the default radius of 2 matches the 5x5 kernel
// usually paired with Canny.
func Preprocess(frame image.Image, blurRadius float64) *image.Gray {
	gray := effect.Grayscale(frame)
	if blurRadius <= 0 {
		return gray
	}
	return effect.Grayscale(blur.Gaussian(gray, blurRadius))
}

// ApplyMask returns a copy of gray where every pixel outside the mask is
// zeroed (a bitwise AND against a 0/255 mask).
//
// gray and mask must have the same dimensions; pixels beyond the smaller of
// the two are treated as outside the mask.
func ApplyMask(gray, mask *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	mb := mask.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		if y >= mb.Dy() {
			break
		}
		srcRow := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		maskRow := mask.Pix[y*mask.Stride : y*mask.Stride+mb.Dx()]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+bounds.Dx()]
		for x := range dstRow {
			if x < len(maskRow) {
				dstRow[x] = srcRow[x] & maskRow[x]
			}
		}
	}
	return out
}

// ToRGBA returns img as an *image.RGBA with its origin at (0, 0). If img
// already is one with that origin it is returned as is, so annotations land
// on the caller's frame.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FitFrame downscales img so that its width does not exceed maxWidth,
// preserving aspect ratio. Images already narrow enough, or a maxWidth of
// zero or less, are only converted to RGBA.
func FitFrame(img image.Image, maxWidth int) *image.RGBA {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return ToRGBA(img)
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	return ToRGBA(imaging.Resize(img, maxWidth, height, imaging.Lanczos))
}
