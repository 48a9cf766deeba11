//go:build gocv

package video

import (
	"context"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// CaptureSource decodes a video file through OpenCV.
type CaptureSource struct {
	vc       *gocv.VideoCapture
	mat      gocv.Mat
	maxWidth int
	next     int
}

// CaptureSupported reports whether video files can be decoded.
const CaptureSupported = true

// OpenCapture opens a video file for frame-by-frame decoding.
func OpenCapture(path string, maxWidth int) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: cannot decode %s", ErrNoFrames, path)
	}
	return &CaptureSource{vc: vc, mat: gocv.NewMat(), maxWidth: maxWidth}, nil
}

// Next decodes the next frame, returning io.EOF at the end of the stream.
func (s *CaptureSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		if s.next == 0 {
			return nil, ErrNoFrames
		}
		return nil, io.EOF
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", s.next, err)
	}

	f := &Frame{
		Index: s.next,
		Name:  fmt.Sprintf("frame_%05d", s.next),
		Image: imaging.CloneFrame(img, s.maxWidth),
	}
	s.next++
	return f, nil
}

// Close releases the decoder.
func (s *CaptureSource) Close() error {
	s.mat.Close()
	return s.vc.Close()
}
