package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded images to avoid
// redundant disk reads.
//
// The cache stores decoded image.Image values keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O.
//
// Cached images are shared and must be treated as read-only. Use Frame to
// obtain a private, mutable copy suitable for overlay drawing.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	frame, err := cache.Frame("/path/to/frame_0001.png", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Annotate frame...
//	cache.Evict("/path/to/frame_0001.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not
// cached. PNG, JPEG, GIF, BMP and TIFF are supported; EXIF orientation is
// applied on decode.
//
// The image is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Frame loads path through the cache and returns a private RGBA copy of it,
// downscaled to maxWidth when maxWidth > 0.
func (c *ImageCache) Frame(path string, maxWidth int) (*image.RGBA, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return CloneFrame(img, maxWidth), nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Open decodes an image file from disk.
func Open(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// LoadFrame decodes an image file into a fresh RGBA frame, downscaled to
// maxWidth when maxWidth > 0.
func LoadFrame(path string, maxWidth int) (*image.RGBA, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return CloneFrame(img, maxWidth), nil
}

// SaveFrame encodes frame to path; the format follows the file extension.
func SaveFrame(frame image.Image, path string) error {
	if err := imaging.Save(frame, path); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}

// CloneFrame returns a new RGBA copy of img with its origin at (0, 0),
// downscaled to maxWidth when maxWidth > 0. The copy never aliases img.
func CloneFrame(img image.Image, maxWidth int) *image.RGBA {
	b := img.Bounds()
	if maxWidth > 0 && b.Dx() > maxWidth {
		// FitFrame already allocates a new image.
		return FitFrame(img, maxWidth)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FrameInfo describes the dimensions of a frame.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`
}

// Info returns the dimensions of img.
func Info(img image.Image) FrameInfo {
	b := img.Bounds()
	return FrameInfo{Width: b.Dx(), Height: b.Dy()}
}
