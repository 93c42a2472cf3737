package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniformLayout(t *testing.T) {
	u := GPUCameraUniform{CameraPosition: [3]float32{1, 2, 3}}
	u.ViewProj[0] = 7
	u.InvProj[5] = 8
	u.InvView[15] = 9

	buf := u.Marshal()
	require.Len(t, buf, 208)
	assert.Equal(t, 208, u.Size())

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(7), f(0))
	assert.Equal(t, float32(8), f(64+5*4))
	assert.Equal(t, float32(9), f(128+15*4))
	assert.Equal(t, float32(1), f(192))
	assert.Equal(t, float32(3), f(200))
	assert.Equal(t, float32(0), f(204))
}

func TestCameraInversesAreTrueInverses(t *testing.T) {
	c := NewCamera(WithPosition(2, 3, 4), WithTarget(0, 1, 0), WithAspect(16.0/9.0), WithNear(0.5), WithFar(50))

	view := c.ViewMatrix()
	invView := c.InverseViewMatrix()
	proj := c.ProjectionMatrix()
	invProj := c.InverseProjectionMatrix()

	var a, b [16]float32
	common.Mul4(a[:], view[:], invView[:])
	common.Mul4(b[:], proj[:], invProj[:])
	id := common.IdentityMat4()
	for i := range 16 {
		assert.InDelta(t, id[i], a[i], 1e-4, "view element %d", i)
		assert.InDelta(t, id[i], b[i], 1e-4, "projection element %d", i)
	}
}

func TestCameraUniformSnapshot(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 5))
	u := c.Uniform()
	assert.Equal(t, [3]float32{0, 0, 5}, u.CameraPosition)
	assert.Equal(t, c.ViewProjectionMatrix(), u.ViewProj)

	// the inverse view carries the eye position in its translation column
	assert.InDelta(t, 5, u.InvView[14], 1e-5)

	c.SetPosition(1, 1, 1)
	x, y, z := c.Position()
	assert.Equal(t, []float32{1, 1, 1}, []float32{x, y, z})
	assert.NotEqual(t, u.ViewProj, c.Uniform().ViewProj)
}

func TestCameraSetters(t *testing.T) {
	c := NewCamera()
	c.SetFov(1)
	c.SetAspect(2)
	c.SetNear(1)
	c.SetFar(10)
	c.SetUp(0, 0, 1)
	c.SetTarget(1, 0, 0)

	assert.Equal(t, float32(1), c.Fov())
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, float32(1), c.Near())
	assert.Equal(t, float32(10), c.Far())
	ux, uy, uz := c.Up()
	assert.Equal(t, []float32{0, 0, 1}, []float32{ux, uy, uz})
	tx, _, _ := c.Target()
	assert.Equal(t, float32(1), tx)
}
