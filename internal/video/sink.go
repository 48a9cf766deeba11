package video

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// DirSink writes annotated frames into a directory as PNG files.
type DirSink struct {
	dir     string
	written int
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Path returns the file a frame is written to: the frame's name with a .png
// extension, or frame_NNNNN.png for unnamed frames.
func (s *DirSink) Path(f *Frame) string {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("frame_%05d", f.Index)
	}
	return filepath.Join(s.dir, name+".png")
}

// Write saves f and returns the path written.
func (s *DirSink) Write(f *Frame) (string, error) {
	path := s.Path(f)
	if err := imaging.SaveFrame(f.Image, path); err != nil {
		return "", err
	}
	s.written++
	return path, nil
}

// Written returns the number of frames saved so far.
func (s *DirSink) Written() int {
	return s.written
}
