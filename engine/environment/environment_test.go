package environment

import (
	"image"
	"image/color"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

func TestFaceUVAxes(t *testing.T) {
	tests := []struct {
		dir  common.Vec3
		face Face
	}{
		{common.Vec3{1, 0, 0}, FacePosX},
		{common.Vec3{-1, 0.2, 0}, FaceNegX},
		{common.Vec3{0, 1, 0}, FacePosY},
		{common.Vec3{0.1, -1, 0.3}, FaceNegY},
		{common.Vec3{0, 0, 1}, FacePosZ},
		{common.Vec3{0, 0, -1}, FaceNegZ},
	}
	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			face, _ := FaceUV(tt.dir)
			assert.Equal(t, tt.face, face)
		})
	}
}

func TestFaceUVCenter(t *testing.T) {
	_, uv := FaceUV(common.Vec3{0, 0, -5})
	assert.Equal(t, common.Vec2{0.5, 0.5}, uv)
}

func TestFaceDirectionRoundTrip(t *testing.T) {
	for f := range FaceCount {
		for _, uv := range []common.Vec2{{0.1, 0.2}, {0.5, 0.5}, {0.9, 0.35}} {
			face, got := FaceUV(FaceDirection(Face(f), uv))
			assert.Equal(t, Face(f), face)
			assert.InDelta(t, uv[0], got[0], 1e-6)
			assert.InDelta(t, uv[1], got[1], 1e-6)
		}
	}
}

func TestCubemapSamplesFaceColor(t *testing.T) {
	cube := NewCubemap(2)
	for i, f := range cube.Faces {
		for p := range f.Pixels {
			f.Pixels[p] = common.Vec4{float32(i) / 5, 0, 0, 1}
		}
	}
	assert.InDelta(t, 0.4, cube.Sample(common.Vec3{0, 3, 0})[0], 1e-6)
	assert.InDelta(t, 1.0, cube.Sample(common.Vec3{0.2, -0.1, -1})[0], 1e-6)
}

func TestFacesStaging(t *testing.T) {
	cube := NewCubemap(4)
	data := Faces(cube)
	assert.Equal(t, uint32(6), data.Layers)
	assert.Len(t, data.Pixels, 6*4*4*4)
}

func TestGradient(t *testing.T) {
	g := DefaultGradient()
	assert.Equal(t, g.Zenith, g.Sample(common.Vec3{0, 2, 0}))
	assert.Equal(t, g.Ground, g.Sample(common.Vec3{0, -1, 0}))
	assert.Equal(t, g.Horizon, g.Sample(common.Vec3{1, 0, 0}))
}

func TestConstant(t *testing.T) {
	c := Constant{0.1, 0.2, 0.3}
	assert.Equal(t, common.Vec3{0.1, 0.2, 0.3}, c.Sample(common.Vec3{0, 0, 1}))
}

func TestEquirectDirection(t *testing.T) {
	uv := EquirectDirection(common.Vec3{0, 0, -1})
	assert.InDelta(t, 0.5, uv[0], 1e-6)
	assert.InDelta(t, 0.5, uv[1], 1e-6)
	assert.InDelta(t, 0, EquirectDirection(common.Vec3{0, 1, 0})[1], 1e-6)
}

func TestFromEquirectHorizon(t *testing.T) {
	sky := color.NRGBA{0, 0, 255, 255}
	ground := color.NRGBA{0, 255, 0, 255}
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := range 32 {
		for x := range 64 {
			if y < 16 {
				img.SetNRGBA(x, y, sky)
			} else {
				img.SetNRGBA(x, y, ground)
			}
		}
	}

	cube, err := FromEquirect(img, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, cube.Size())

	up := cube.Sample(common.Vec3{0, 1, 0})
	assert.InDelta(t, 1, up[2], 1e-6)
	down := cube.Sample(common.Vec3{0, -1, 0})
	assert.InDelta(t, 1, down[1], 1e-6)

	for _, f := range []Face{FacePosX, FaceNegX, FacePosZ, FaceNegZ} {
		face := cube.Faces[f]
		above := face.At(4, 1, texture.AddressClamp)
		below := face.At(4, 6, texture.AddressClamp)
		assert.InDelta(t, 1, above[2], 1e-6, f.String())
		assert.InDelta(t, 1, below[1], 1e-6, f.String())
	}
}

func TestFromEquirectRejectsBadSize(t *testing.T) {
	_, err := FromEquirect(image.NewNRGBA(image.Rect(0, 0, 2, 1)), 0, 1)
	assert.Error(t, err)
}

func TestFromEquirectStopsItsWorkers(t *testing.T) {
	base := runtime.NumGoroutine()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	_, err := FromEquirect(img, 2, 1)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= base }, time.Second, 10*time.Millisecond)
}
