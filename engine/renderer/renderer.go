package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	schema        binding.Schema
	clearColor    wgpu.Color

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	pendingMSAA *MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The Renderer draws the shading variants into a render target owned by the host. It does
// not create a device, surface or window: the host hands over its device, queue and target
// format, and each frame passes the texture view to draw into. The Renderer manages a
// cache of pipelines keyed by variant, and creates GPU resources for BindGroupProviders
// following the binding schema.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the GPU render pipeline
	// objects via the backend, then caching them by PipelineKey. Pipelines whose keys are
	// already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Schema returns the binding schema the renderer creates bind groups from.
	//
	// Returns:
	//   - binding.Schema: the schema
	Schema() binding.Schema

	// Resize (re)creates the depth and multisample attachments for a new target size.
	// It must be called once before the first frame.
	//
	// Parameters:
	//   - width: the new width of the target in pixels
	//   - height: the new height of the target in pixels
	//
	// Returns:
	//   - error: an error if the size is invalid or attachment creation fails
	Resize(width, height int) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer uploads packed instance records into the instance-rate vertex buffer
	// of a mesh provider, replacing any previous instance buffer.
	//
	// Parameters:
	//   - provider: the mesh BindGroupProvider
	//   - instanceData: the packed instance records
	//   - instanceCount: the number of records
	//
	// Returns:
	//   - error: an error if the data is empty or buffer creation fails
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, instanceData []byte, instanceCount int) error

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Textures and samplers must be initialized via InitTextureView
	// and InitSampler before calling this method.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitGroup creates the bind group of one schema group on a provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - group: the schema group index
	//   - bufferSizeOverrides: custom buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if the schema has no such group or bind group creation fails
	InitGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index. Staging data with six layers
	// becomes a cube texture. Must be called before InitBindGroup for any texture bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index. Must be called before InitBindGroup for any sampler bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame begins the render pass into a host-provided target view.
	// Must be paired with EndFrame after all Draw invocations within a single frame.
	//
	// Parameters:
	//   - target: the texture view to render into, in the format given to NewRenderer
	//
	// Returns:
	//   - error: an error if a frame is already in flight or the target is not configured
	BeginFrame(target *wgpu.TextureView) error

	// Draw encodes a single draw of a cached pipeline within the current render pass. Variants
	// with vertex layouts draw the mesh provider indexed and instanced; the overlay draws its
	// full-screen triangles without buffers.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - mesh: the BindGroupProvider holding vertex, index and instance buffers (nil for the overlay)
	//   - bindGroups: the BindGroupProviders set on the pass, indexed by group
	//
	// Returns:
	//   - error: an error if the pipeline is not found or the draw cannot be encoded
	Draw(pipelineKey string, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	//
	// Returns:
	//   - error: an error if no frame is in flight or the command buffer cannot be finished
	EndFrame() error

	// Release frees the attachments owned by the renderer. The host device is not released.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer drawing with a host-provided device.
//
// Parameters:
//   - device: the host's WebGPU device
//   - queue: the queue of device
//   - format: the format of the target views passed to BeginFrame
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified options
func NewRenderer(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, options ...RendererBuilderOption) Renderer {
	r := newRenderer(options...)
	msaa := MSAAOff
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(device, queue, format, msaa)
	}
	return r
}

// newRenderer applies the builder options to a renderer without a backend.
func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		schema:        binding.Default(),
		clearColor:    wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		backendType:   BackendTypeWGPU,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.schema.Conform(p.Schema()); err != nil {
			return fmt.Errorf("renderer: pipeline %q: %w", key, err)
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("renderer: pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
		common.Logger().Debug("pipeline registered", "key", key)
	}
	return nil
}

func (r *renderer) Schema() binding.Schema {
	return r.schema
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureTarget(width, height)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, instanceData []byte, instanceCount int) error {
	return r.backend.InitInstanceBuffer(provider, instanceData, instanceCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) InitGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizeOverrides map[int]uint64) error {
	desc, ok := r.schema.LayoutDescriptors(bindingVisibility)[group]
	if !ok {
		return fmt.Errorf("renderer: schema has no group %d", group)
	}
	return r.backend.InitBindGroup(provider, desc, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame(target *wgpu.TextureView) error {
	return r.backend.BeginFrame(target, r.clearColor)
}

func (r *renderer) Draw(pipelineKey string, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, mesh, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Release() {
	r.backend.Release()
}
