package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGPULightLayout(t *testing.T) {
	g := GPULight{Position: [3]float32{1, 2, 3}, Color: [3]float32{0.5, 0.25, 1}}
	buf := g.Marshal()

	assert.Len(t, buf, 32)
	assert.Equal(t, 32, g.Size())
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(0), f(12))
	assert.Equal(t, float32(0.5), f(16))
	assert.Equal(t, float32(1), f(24))
	assert.Equal(t, float32(0), f(28))
}

func TestLightDefaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, [3]float32{5, 5, 1}, l.Position())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Uniform().Color)
}

func TestLightIntensityFoldsIntoColor(t *testing.T) {
	l := NewLight(WithColor(1, 0.5, 0), WithIntensity(2))
	assert.Equal(t, [3]float32{2, 1, 0}, l.Uniform().Color)

	l.SetIntensity(1)
	l.SetColor(0, 0, 1)
	assert.Equal(t, [3]float32{0, 0, 1}, l.Uniform().Color)
}

func TestLightOrbit(t *testing.T) {
	l := NewLight(WithOrbit(1, 10, 1, 4))

	l.Orbit(0)
	assert.InDelta(t, 5, l.Position()[0], 1e-5)
	assert.InDelta(t, 10, l.Position()[1], 1e-5)
	assert.InDelta(t, 1, l.Position()[2], 1e-5)

	l.Orbit(math.Pi / 2)
	assert.InDelta(t, 1, l.Position()[0], 1e-5)
	assert.InDelta(t, 5, l.Position()[2], 1e-5)
}

func TestLightOrbitDisabled(t *testing.T) {
	l := NewLight(WithPosition(0, 5, 0))
	l.Orbit(3)
	assert.Equal(t, [3]float32{0, 5, 0}, l.Position())

	l.SetPosition(1, 2, 3)
	assert.Equal(t, [3]float32{1, 2, 3}, l.Uniform().Position)
}
