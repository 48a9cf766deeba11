package video

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools/internal/imaging"
)

// writeFrame saves a solid test frame of the given size to dir/name.
func writeFrame(t *testing.T, dir, name string, width, height int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(t, imaging.SaveFrame(img, filepath.Join(dir, name)))
}

func TestDirSource_Order(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame_002.png", 8, 6, color.RGBA{G: 255, A: 255})
	writeFrame(t, dir, "frame_001.png", 8, 6, color.RGBA{R: 255, A: 255})
	writeFrame(t, dir, "frame_003.jpg", 8, 6, color.RGBA{B: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	src, err := NewDirSource(dir, 0)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, 3, src.Len())

	ctx := context.Background()
	var names []string
	for {
		f, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, len(names), f.Index)
		assert.Equal(t, image.Rect(0, 0, 8, 6), f.Image.Bounds())
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"frame_001", "frame_002", "frame_003"}, names)

	// Exhausted sources keep returning io.EOF.
	_, err = src.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestDirSource_MaxWidth(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "wide.png", 200, 100, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	src, err := NewDirSource(dir, 50)
	require.NoError(t, err)

	f, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 25), f.Image.Bounds())
}

func TestDirSource_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644))

	_, err := NewDirSource(dir, 0)
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestDirSource_MissingDir(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}

func TestDirSource_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 4, 4, color.RGBA{A: 255})

	src, err := NewDirSource(dir, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirSource_CorruptFrame(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0644))

	src, err := NewDirSource(dir, 0)
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.png")
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 4, 4, color.RGBA{A: 255})

	src, err := Open(dir, 0)
	require.NoError(t, err)
	defer src.Close()

	_, ok := src.(*DirSource)
	assert.True(t, ok)
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a.PNG"))
	assert.True(t, IsImageFile("dir/b.jpeg"))
	assert.False(t, IsImageFile("clip.mp4"))
	assert.False(t, IsImageFile("noext"))
}
