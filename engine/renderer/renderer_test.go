package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

type textureCall struct {
	binding int
	data    common.TextureStagingData
}

// fakeBackend records the calls the renderer makes instead of touching a device.
type fakeBackend struct {
	registered []string
	groups     []wgpu.BindGroupLayoutDescriptor
	sizes      []map[int]uint64
	textures   []textureCall
	samplers   []int
	writes     []bind_group_provider.BufferWrite
	draws      []string

	registerErr error
}

func (f *fakeBackend) ConfigureTarget(width, height int) error { return nil }

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}

func (f *fakeBackend) InitInstanceBuffer(bind_group_provider.BindGroupProvider, []byte, int) error {
	return nil
}

func (f *fakeBackend) InitBindGroup(_ bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, sizes map[int]uint64) error {
	f.groups = append(f.groups, d)
	f.sizes = append(f.sizes, sizes)
	return nil
}

func (f *fakeBackend) InitTextureView(_ bind_group_provider.BindGroupProvider, binding int, data common.TextureStagingData) error {
	f.textures = append(f.textures, textureCall{binding, data})
	return nil
}

func (f *fakeBackend) InitSampler(_ bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	f.samplers = append(f.samplers, binding)
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) BeginFrame(*wgpu.TextureView, wgpu.Color) error { return nil }

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, _ bind_group_provider.BindGroupProvider, _ []bind_group_provider.BindGroupProvider) error {
	f.draws = append(f.draws, p.PipelineKey())
	return nil
}

func (f *fakeBackend) EndFrame() error { return nil }

func (f *fakeBackend) Release() {}

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	t.Helper()
	r := newRenderer(options...)
	fb := &fakeBackend{}
	r.backend = fb
	return r, fb
}

func TestRegisterPipelinesCachesByKey(t *testing.T) {
	r, fb := newTestRenderer(t)
	lib := shader.Embedded()

	color, err := pipeline.ForVariant(lib, shading.NewVariant(shading.ModeColor))
	require.NoError(t, err)
	overlay, err := pipeline.ForVariant(lib, shading.NewVariant(shading.ModeOverlay))
	require.NoError(t, err)

	require.NoError(t, r.RegisterPipelines(color, overlay, color))
	assert.Equal(t, []string{"color", "overlay"}, fb.registered)
	assert.Same(t, color, r.Pipeline("color"))
	assert.Len(t, r.Pipelines(), 2)

	require.NoError(t, r.RegisterPipelines(color))
	assert.Len(t, fb.registered, 2)
}

func TestRegisterPipelinesRejectsForeignSchema(t *testing.T) {
	moved := binding.New(binding.Entry{Slot: binding.SlotCamera, Location: binding.Location{Group: 1, Binding: 0}, Kind: binding.KindUniform})
	r, fb := newTestRenderer(t, WithSchema(moved))

	p, err := pipeline.ForVariant(shader.Embedded(), shading.NewVariant(shading.ModeColor))
	require.NoError(t, err)

	err = r.RegisterPipelines(p)
	assert.ErrorIs(t, err, binding.ErrSchemaMismatch)
	assert.Empty(t, fb.registered)
	assert.Nil(t, r.Pipeline(p.PipelineKey()))
}

func TestRegisterPipelinesBackendError(t *testing.T) {
	r, fb := newTestRenderer(t)
	fb.registerErr = errors.New("device lost")

	p, err := pipeline.ForVariant(shader.Embedded(), shading.NewVariant(shading.ModeColor))
	require.NoError(t, err)
	assert.ErrorContains(t, r.RegisterPipelines(p), "device lost")
	assert.Nil(t, r.Pipeline(p.PipelineKey()))
}

func TestDrawUnknownPipeline(t *testing.T) {
	r, fb := newTestRenderer(t)
	assert.Error(t, r.Draw("missing", nil, nil))
	assert.Empty(t, fb.draws)
}

func TestDrawCachedPipeline(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := pipeline.NewPipeline("cached")
	r.pipelineCache["cached"] = p

	require.NoError(t, r.Draw("cached", nil, nil))
	assert.Equal(t, []string{"cached"}, fb.draws)
}

func TestFrameWritesFollowSchema(t *testing.T) {
	provider := bind_group_provider.NewBindGroupProvider("frame")
	cam := camera.NewCamera()
	state := debug.State{Mode: debug.ModeDepth, Near: 0.1, Far: 50}

	writes, err := FrameWrites(binding.Default(), provider, FrameData{Camera: cam.Uniform(), Debug: state.Uniform()})
	require.NoError(t, err)
	require.Len(t, writes, 3)

	assert.Equal(t, 0, writes[0].Binding)
	assert.Len(t, writes[0].Data, 208)
	assert.Equal(t, 1, writes[1].Binding)
	assert.Len(t, writes[1].Data, 32)
	assert.Equal(t, 2, writes[2].Binding)
	assert.Len(t, writes[2].Data, 48)
	assert.Equal(t, byte(debug.ModeDepth), writes[2].Data[0])

	_, err = FrameWrites(binding.New(), provider, FrameData{})
	assert.Error(t, err)
}

func TestInitFrameGroup(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, InitFrameGroup(r, bind_group_provider.NewBindGroupProvider("frame")))

	require.Len(t, fb.groups, 1)
	entries := fb.groups[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(208), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[2].Buffer.Type)
}

func TestInitMaterialGroupSizesToTable(t *testing.T) {
	r, fb := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("materials")
	table := material.NewTable(material.Implicit(), material.Implicit(), material.Implicit())

	require.NoError(t, InitMaterialGroup(r, provider, table))
	require.Len(t, fb.sizes, 1)
	assert.Equal(t, map[int]uint64{0: 144}, fb.sizes[0])
	require.Len(t, fb.writes, 1)
	assert.Len(t, fb.writes[0].Data, 144)

	require.NoError(t, InitMaterialGroup(r, provider, nil))
	assert.Equal(t, map[int]uint64{0: 48}, fb.sizes[1])
}

func TestInitSurfaceGroupFallbacks(t *testing.T) {
	r, fb := newTestRenderer(t)
	diffuse := common.SolidTexture(10, 20, 30, 255)

	require.NoError(t, InitSurfaceGroup(r, bind_group_provider.NewBindGroupProvider("surface"), &diffuse, nil))
	require.Len(t, fb.textures, 2)
	assert.Equal(t, 0, fb.textures[0].binding)
	assert.Equal(t, diffuse.Pixels, fb.textures[0].data.Pixels)
	assert.Equal(t, 2, fb.textures[1].binding)
	assert.Equal(t, common.FlatNormalTexture().Pixels, fb.textures[1].data.Pixels)
	assert.Equal(t, []int{1, 3}, fb.samplers)

	require.Len(t, fb.groups, 1)
	assert.Len(t, fb.groups[0].Entries, 4)
}

func TestInitEnvironmentGroupNeedsCube(t *testing.T) {
	r, fb := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("environment")

	assert.Error(t, InitEnvironmentGroup(r, provider, common.WhiteTexture()))

	faces := common.TextureStagingData{Width: 1, Height: 1, Layers: 6, Pixels: make([]byte, 24)}
	require.NoError(t, InitEnvironmentGroup(r, provider, faces))
	require.Len(t, fb.groups, 1)
	assert.Equal(t, wgpu.TextureViewDimensionCube, fb.groups[0].Entries[0].Texture.ViewDimension)
}

func TestPipelineGroupDescriptors(t *testing.T) {
	descs := pipelineGroupDescriptors(binding.Default())
	require.Len(t, descs, 4)
	assert.Len(t, descs[0].Entries, 3)
	assert.Len(t, descs[1].Entries, 2)
	assert.Len(t, descs[2].Entries, 1)
	assert.Len(t, descs[3].Entries, 4)
	assert.Equal(t, bindingVisibility, descs[2].Entries[0].Visibility)

	sparse := binding.New(binding.Entry{Slot: binding.SlotMaterials, Location: binding.Location{Group: 2, Binding: 0}, Kind: binding.KindStorage})
	descs = pipelineGroupDescriptors(sparse)
	require.Len(t, descs, 3)
	assert.Empty(t, descs[0].Entries)
	assert.Empty(t, descs[1].Entries)

	assert.Nil(t, pipelineGroupDescriptors(binding.New()))
}

func TestDepthAndColorState(t *testing.T) {
	overlay, err := pipeline.ForVariant(shader.Embedded(), shading.NewVariant(shading.ModeOverlay))
	require.NoError(t, err)
	ds := depthStencilState(overlay)
	assert.Equal(t, wgpu.CompareFunctionAlways, ds.DepthCompare)
	assert.False(t, ds.DepthWriteEnabled)
	assert.Equal(t, DepthFormat, ds.Format)

	lit := pipeline.NewPipeline("lit")
	ds = depthStencilState(lit)
	assert.Equal(t, wgpu.CompareFunctionLess, ds.DepthCompare)
	assert.True(t, ds.DepthWriteEnabled)

	cs := colorTargetState(lit, wgpu.TextureFormatBGRA8Unorm)
	assert.Nil(t, cs.Blend)
	cs = colorTargetState(pipeline.NewPipeline("blend", pipeline.WithBlendEnabled(true)), wgpu.TextureFormatBGRA8Unorm)
	assert.NotNil(t, cs.Blend)
}

func TestTextureDescriptors(t *testing.T) {
	flat, view, err := textureDescriptors("flat", common.WhiteTexture())
	require.NoError(t, err)
	assert.Nil(t, view)
	assert.Equal(t, uint32(1), flat.Size.DepthOrArrayLayers)

	cube, view, err := textureDescriptors("cube", common.TextureStagingData{Width: 2, Height: 2, Layers: 6, Pixels: make([]byte, 2*2*6*4)})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, uint32(6), cube.Size.DepthOrArrayLayers)
	assert.Equal(t, wgpu.TextureViewDimensionCube, view.Dimension)
	assert.Equal(t, uint32(6), view.ArrayLayerCount)

	_, _, err = textureDescriptors("short", common.TextureStagingData{Width: 2, Height: 2, Pixels: make([]byte, 4)})
	assert.Error(t, err)
	_, _, err = textureDescriptors("layers", common.TextureStagingData{Width: 1, Height: 1, Layers: 3, Pixels: make([]byte, 12)})
	assert.Error(t, err)
}

func TestBufferHelpers(t *testing.T) {
	assert.Equal(t, uint64(48), alignedSize(48))
	assert.Equal(t, uint64(8), alignedSize(5))

	storage := wgpu.BindGroupLayoutEntry{}
	storage.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(storage))

	uniform := wgpu.BindGroupLayoutEntry{}
	uniform.Buffer.Type = wgpu.BufferBindingTypeUniform
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(uniform))
}
