package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImportedTextureDecode(t *testing.T) {
	tex := &ImportedTexture{Name: "diffuse", Data: encodePNG(t, 3, 2, color.NRGBA{10, 20, 30, 255})}

	staged, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), staged.Width)
	assert.Equal(t, uint32(2), staged.Height)
	assert.Len(t, staged.Pixels, 3*2*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, staged.Pixels[:4])
	assert.Equal(t, 3, tex.Width)
}

func TestImportedTextureErrors(t *testing.T) {
	var nilTex *ImportedTexture
	_, err := nilTex.Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{}).Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Path: "does/not/exist.png"}).Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Data: []byte("not an image")}).Decode()
	assert.Error(t, err)
}

func TestToNRGBADownscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	out := ToNRGBA(src, 16)
	assert.Equal(t, 16, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())
}

func TestFallbackTextures(t *testing.T) {
	assert.Equal(t, []byte{255, 255, 255, 255}, WhiteTexture().Pixels)
	assert.Equal(t, []byte{128, 128, 255, 255}, FlatNormalTexture().Pixels)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 640, Coalesce(0, 640, 800))
	assert.Equal(t, "", Coalesce("", ""))
}
