package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// ErrNoFrames is returned when a source has no frames at all.
var ErrNoFrames = errors.New("no frames found")

// Frame is one decoded frame of a sequence.
type Frame struct {
	// Index is the zero-based position of the frame in its source.
	Index int

	// Name identifies the frame for output naming, without extension.
	Name string

	// Image is a private copy the caller may draw on.
	Image *image.RGBA
}

// Source yields frames in order. Next returns io.EOF after the last frame.
type Source interface {
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// imageExtensions are the still-image formats a directory source reads.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether path has a supported still-image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// DirSource reads the image files of a directory as a frame sequence, in
// lexical file-name order.
type DirSource struct {
	paths    []string
	maxWidth int
	next     int
}

// NewDirSource lists the image files in dir. Frames wider than maxWidth are
// downscaled when maxWidth > 0.
func NewDirSource(dir string, maxWidth int) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	sort.Strings(paths)

	return &DirSource{paths: paths, maxWidth: maxWidth}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Next decodes the next frame.
func (s *DirSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.next]
	img, err := imaging.LoadFrame(path, s.maxWidth)
	if err != nil {
		return nil, fmt.Errorf("frame %d (%s): %w", s.next, path, err)
	}

	f := &Frame{
		Index: s.next,
		Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Image: img,
	}
	s.next++
	return f, nil
}

// Close releases nothing; it exists to satisfy Source.
func (s *DirSource) Close() error {
	return nil
}

// Open returns a directory source when path is a directory and a video
// capture source otherwise.
func Open(path string, maxWidth int) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if info.IsDir() {
		return NewDirSource(path, maxWidth)
	}
	return OpenCapture(path, maxWidth)
}
