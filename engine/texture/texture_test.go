package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

func checker() *Texture {
	t := New(2, 2)
	t.Set(0, 0, common.Vec4{1, 0, 0, 1})
	t.Set(1, 0, common.Vec4{0, 1, 0, 1})
	t.Set(0, 1, common.Vec4{0, 0, 1, 1})
	t.Set(1, 1, common.Vec4{1, 1, 1, 1})
	return t
}

func TestSampleTexelCenters(t *testing.T) {
	tex := checker()
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, tex.Sample(common.Vec2{0.25, 0.25}, AddressClamp))
	assert.Equal(t, common.Vec4{1, 1, 1, 1}, tex.Sample(common.Vec2{0.75, 0.75}, AddressClamp))
}

func TestSampleBilinearMidpoint(t *testing.T) {
	tex := checker()
	c := tex.Sample(common.Vec2{0.5, 0.25}, AddressClamp)
	assert.InDelta(t, 0.5, c[0], 1e-6)
	assert.InDelta(t, 0.5, c[1], 1e-6)
}

func TestSampleRepeatWraps(t *testing.T) {
	tex := checker()
	assert.Equal(t, tex.Sample(common.Vec2{0.25, 0.25}, AddressRepeat), tex.Sample(common.Vec2{1.25, -0.75}, AddressRepeat))
}

func TestSampleClampEdges(t *testing.T) {
	tex := checker()
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, tex.Sample(common.Vec2{-3, -3}, AddressClamp))
}

func TestFromStaging(t *testing.T) {
	tex, err := FromStaging(common.FlatNormalTexture())
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, tex.Pixels[0][0], 1e-6)
	assert.Equal(t, float32(1), tex.Pixels[0][2])

	_, err = FromStaging(common.TextureStagingData{Width: 2, Height: 2, Pixels: []byte{1}})
	assert.Error(t, err)
	_, err = FromStaging(common.TextureStagingData{})
	assert.Error(t, err)
}

func TestFromImageAndStaging(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 51, 255})
	tex := FromImage(img)
	assert.InDelta(t, 0.2, tex.Pixels[0][2], 1e-6)
	assert.Equal(t, []byte{255, 0, 51, 255}, tex.Staging().Pixels)
}
