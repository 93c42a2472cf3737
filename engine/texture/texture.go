// Package texture holds CPU-side float textures and the filtered lookups the
// reference shading stages use in place of GPU samplers.
package texture

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

// AddressMode selects how coordinates outside [0,1] are resolved.
type AddressMode int

const (
	// AddressRepeat wraps coordinates, matching wgpu.AddressModeRepeat.
	AddressRepeat AddressMode = iota
	// AddressClamp clamps coordinates to the edge texels, matching wgpu.AddressModeClampToEdge.
	AddressClamp
)

// Texture is a 2D RGBA texture with linear float channels in [0,1], stored row-major
// with row 0 at v = 0.
type Texture struct {
	Width, Height int
	Pixels        []common.Vec4
}

// New allocates a black, transparent texture.
//
// Parameters:
//   - width, height: the dimensions in texels
//
// Returns:
//   - *Texture: the texture
func New(width, height int) *Texture {
	return &Texture{Width: width, Height: height, Pixels: make([]common.Vec4, width*height)}
}

// Solid returns a 1x1 texture holding a single color.
func Solid(c common.Vec4) *Texture {
	return &Texture{Width: 1, Height: 1, Pixels: []common.Vec4{c}}
}

// FromStaging converts RGBA8 staging data (the GPU upload format) into a float texture.
// Only the first layer of layered data is read.
//
// Parameters:
//   - data: the staging data
//
// Returns:
//   - *Texture: the texture
//   - error: an error if the pixel slice is shorter than the dimensions require
func FromStaging(data common.TextureStagingData) (*Texture, error) {
	w, h := int(data.Width), int(data.Height)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture: empty staging data %dx%d", w, h)
	}
	if len(data.Pixels) < w*h*4 {
		return nil, fmt.Errorf("texture: staging data holds %d bytes, %dx%d needs %d", len(data.Pixels), w, h, w*h*4)
	}
	t := New(w, h)
	for i := range t.Pixels {
		p := data.Pixels[i*4 : i*4+4]
		t.Pixels[i] = common.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
	}
	return t, nil
}

// FromImage converts any decoded image into a float texture.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *Texture: the texture
func FromImage(img image.Image) *Texture {
	n := common.ToNRGBA(img, 0)
	b := n.Bounds()
	t := New(b.Dx(), b.Dy())
	for y := range t.Height {
		for x := range t.Width {
			c := n.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			t.Pixels[y*t.Width+x] = common.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
		}
	}
	return t
}

// Load decodes an imported texture into a float texture, downscaling it so neither
// side exceeds maxSize.
//
// Parameters:
//   - tex: the imported texture reference
//   - maxSize: the largest allowed width or height, 0 for no limit
//
// Returns:
//   - *Texture: the texture
//   - error: any decode error
func Load(tex *common.ImportedTexture, maxSize int) (*Texture, error) {
	img, err := tex.Image()
	if err != nil {
		return nil, err
	}
	return FromImage(common.ToNRGBA(img, maxSize)), nil
}

// At returns the texel at integer coordinates, resolved with the address mode.
func (t *Texture) At(x, y int, mode AddressMode) common.Vec4 {
	return t.Pixels[resolve(y, t.Height, mode)*t.Width+resolve(x, t.Width, mode)]
}

// Set writes the texel at integer coordinates inside the texture.
func (t *Texture) Set(x, y int, c common.Vec4) {
	t.Pixels[y*t.Width+x] = c
}

// Sample performs a bilinear lookup with texel centers at (i+0.5)/size, as a
// linear-filtering GPU sampler does.
//
// Parameters:
//   - uv: the texture coordinate
//   - mode: the address mode for both axes
//
// Returns:
//   - common.Vec4: the filtered RGBA value
func (t *Texture) Sample(uv common.Vec2, mode AddressMode) common.Vec4 {
	fx := uv[0]*float32(t.Width) - 0.5
	fy := uv[1]*float32(t.Height) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := t.At(x0, y0, mode)
	c10 := t.At(x0+1, y0, mode)
	c01 := t.At(x0, y0+1, mode)
	c11 := t.At(x0+1, y0+1, mode)

	top := c00.Scale(1 - tx).Add(c10.Scale(tx))
	bottom := c01.Scale(1 - tx).Add(c11.Scale(tx))
	return top.Scale(1 - ty).Add(bottom.Scale(ty))
}

// Staging converts the texture back into RGBA8 upload data, clamping each channel.
//
// Returns:
//   - common.TextureStagingData: the upload data
func (t *Texture) Staging() common.TextureStagingData {
	pixels := make([]byte, 0, len(t.Pixels)*4)
	for _, p := range t.Pixels {
		for _, c := range p {
			pixels = append(pixels, byte(common.Clamp(c, 0, 1)*255+0.5))
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: uint32(t.Width), Height: uint32(t.Height), Layers: 1}
}

func resolve(i, size int, mode AddressMode) int {
	if mode == AddressClamp {
		return min(max(i, 0), size-1)
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}
