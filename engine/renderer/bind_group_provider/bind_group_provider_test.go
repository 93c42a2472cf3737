package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderLabel(t *testing.T) {
	p := NewBindGroupProvider("frame")
	assert.Equal(t, "frame", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Empty(t, p.Buffers())
	assert.Equal(t, 0, p.InstanceCount())
}

func TestProviderSlotsAreNilUntilInitialized(t *testing.T) {
	p := NewBindGroupProvider("surface", WithBuffers(map[int]*wgpu.Buffer{}))
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(2))
	assert.Nil(t, p.Sampler(3))
	assert.Nil(t, p.InstanceBuffer())

	p.SetIndexCount(36)
	assert.Equal(t, 36, p.IndexCount())
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetInstanceBuffer(nil, 4)
	assert.Equal(t, 4, p.InstanceCount())
	assert.NotPanics(t, p.Release)
	assert.Nil(t, p.BindGroupLayout())
}
