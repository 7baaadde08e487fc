package savers

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	ts "github.com/samuelfneumann/dmcgym/timestep"
)

// ImageDir is the subdirectory of a log directory which holds images
const ImageDir string = "images"

// Renderer renders the current frame of an environment
type Renderer func() (image.Image, error)

// PixelImages saves one PNG frame per tracked step, as img<N>.png in
// the images subdirectory of a log directory. Numbering continues
// after the frames already in the directory.
type PixelImages struct {
	dir    string
	render Renderer
	next   func() string
}

// NewPixelImages returns a new PixelImages saver which saves frames
// drawn by render
func NewPixelImages(logDir string, render Renderer) (*PixelImages, error) {
	dir := filepath.Join(logDir, ImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newPixelImages: could not create image "+
			"directory: %v", err)
	}

	prefix := filepath.Join(dir, "img")
	start, err := NextFree(prefix, ".png")
	if err != nil {
		return nil, fmt.Errorf("newPixelImages: %v", err)
	}

	return &PixelImages{
		dir:    dir,
		render: render,
		next:   FilenameEnumerator(start, prefix, ".png"),
	}, nil
}

// Track renders and saves the current frame. The First TimeStep of
// an episode is not saved.
func (p *PixelImages) Track(t ts.TimeStep) error {
	if t.First() {
		return nil
	}

	img, err := p.render()
	if err != nil {
		return fmt.Errorf("track: could not render frame: %v", err)
	}

	if err := gg.SavePNG(p.next(), img); err != nil {
		return fmt.Errorf("track: could not save frame: %v", err)
	}
	return nil
}

// Dir returns the directory that frames are saved in
func (p *PixelImages) Dir() string {
	return p.dir
}

// Close is a no-op, frames are written as they are tracked
func (p *PixelImages) Close() error {
	return nil
}
