//go:build !gocv

package video

import (
	"errors"
	"fmt"
)

// ErrCaptureUnsupported is returned for video files in builds without OpenCV.
var ErrCaptureUnsupported = errors.New("video decoding requires building with -tags gocv")

// CaptureSupported reports whether video files can be decoded.
const CaptureSupported = false

// OpenCapture always fails in builds without OpenCV.
func OpenCapture(path string, maxWidth int) (Source, error) {
	return nil, fmt.Errorf("%s: %w", path, ErrCaptureUnsupported)
}
