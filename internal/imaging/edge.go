package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
)

// Edge map pixel values. Canny writes EdgeOn where an edge was kept and
// leaves everything else at EdgeOff.
const (
	EdgeOn  uint8 = 255
	EdgeOff uint8 = 0
)

// Default hysteresis thresholds, expressed on the 0-255 gradient scale.
const (
	DefaultCannyLow  = 80
	DefaultCannyHigh = 150
)

// EncodedImage is a PNG rendering of an intermediate or annotated image.
type EncodedImage struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Canny performs Canny edge detection on an already smoothed grayscale image.
//
// The result has the same bounds as gray. Edge pixels are EdgeOn (255), all
// other pixels EdgeOff (0).
//
// Parameters:
//   - gray: Smoothed grayscale input. Smoothing is the caller's job (see
//     Preprocess) so the same blurred image can feed both masking and edge
//     extraction.
//   - thresholdLow: Gradient magnitudes below this are discarded. Typical: 80.
//   - thresholdHigh: Gradient magnitudes at or above this are strong edges.
//     Typical: 150.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients on the
//     0-255 intensity scale, magnitude = sqrt(Gx² + Gy²)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis thresholding:
//     - Pixels at or above thresholdHigh are strong edges (always kept)
//     - Pixels between thresholdLow and thresholdHigh are weak edges, kept
//     only when 8-connected (directly or through other weak edges) to a
//     strong edge
//     - Pixels below thresholdLow are discarded
//
// Swapped thresholds are reordered rather than rejected.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	if thresholdLow > thresholdHigh {
		thresholdLow, thresholdHigh = thresholdHigh, thresholdLow
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(bounds)
	if width == 0 || height == 0 {
		return result
	}

	// Coordinates below are relative to bounds.Min; Pix starts there.
	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(clamp(x+kx, 0, width-1), clamp(y+ky, 0, height-1))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			magnitude[i] = math.Sqrt(gx*gx + gy*gy)
			direction[i] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis: seed from strong pixels, grow through weak ones.
	low := float64(thresholdLow)
	high := float64(thresholdHigh)
	kept := make([]bool, width*height)
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v > 0 && v >= high {
			kept[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				px, py := x+kx, y+ky
				if px < 0 || px >= width || py < 0 || py >= height {
					continue
				}
				j := py*width + px
				if kept[j] || suppressed[j] == 0 || suppressed[j] < low {
					continue
				}
				kept[j] = true
				stack = append(stack, j)
			}
		}
	}

	for i, k := range kept {
		if k {
			result.Pix[(i/width)*result.Stride+i%width] = EdgeOn
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution and window operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
