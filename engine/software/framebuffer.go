package software

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

// Framebuffer is a CPU color and depth target. Color is linear RGBA and depth is the
// post-divide clip depth in [0,1], both stored row-major with row 0 at the top.
type Framebuffer struct {
	Width, Height int
	Color         []common.Vec4
	Depth         []float32
}

// NewFramebuffer allocates a framebuffer cleared to opaque black and far depth.
//
// Parameters:
//   - width, height: the dimensions in pixels
//
// Returns:
//   - *Framebuffer: the framebuffer
//   - error: an error if either dimension is not positive
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("software: framebuffer size must be positive, got %dx%d", width, height)
	}
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]common.Vec4, width*height),
		Depth:  make([]float32, width*height),
	}
	fb.Clear(common.Vec4{0, 0, 0, 1})
	return fb, nil
}

// Clear fills the color buffer with c and resets depth to 1.
func (f *Framebuffer) Clear(c common.Vec4) {
	for i := range f.Color {
		f.Color[i] = c
		f.Depth[i] = 1
	}
}

// At returns the color of the pixel at (x, y).
func (f *Framebuffer) At(x, y int) common.Vec4 {
	return f.Color[y*f.Width+x]
}

// DepthAt returns the depth of the pixel at (x, y).
func (f *Framebuffer) DepthAt(x, y int) float32 {
	return f.Depth[y*f.Width+x]
}

// Image quantizes the color buffer to 8 bits per channel. Values are written as they
// are, without a transfer curve, matching an RGBA8Unorm render target.
//
// Returns:
//   - *image.NRGBA: the image
func (f *Framebuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := range f.Height {
		for x := range f.Width {
			c := f.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: quantize(c[0]), G: quantize(c[1]), B: quantize(c[2]), A: quantize(c[3])})
		}
	}
	return img
}

// Encode writes the framebuffer to w as PNG.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an error if encoding fails
func (f *Framebuffer) Encode(w io.Writer) error {
	return png.Encode(w, f.Image())
}

// WritePNG writes the framebuffer to a PNG file, replacing any existing file.
//
// Parameters:
//   - path: the destination path
//
// Returns:
//   - error: an error if the file cannot be created or written
func (f *Framebuffer) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("software: create %s: %w", path, err)
	}
	w := bufio.NewWriter(file)
	if err := f.Encode(w); err != nil {
		file.Close()
		return fmt.Errorf("software: encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("software: write %s: %w", path, err)
	}
	return file.Close()
}

func quantize(v float32) uint8 {
	return uint8(common.Clamp(v, 0, 1)*255 + 0.5)
}
