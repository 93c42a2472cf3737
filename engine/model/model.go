package model

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name            string
	vertices        []GPUVertex
	indices         []uint32
	instances       []GPUInstance
	renderMaterials []material.Material
	meshProvider    bind_group_provider.BindGroupProvider
	boundingRadius  float32
}

// Model defines the interface for a drawable mesh.
// A Model holds the CPU copy of its vertices and indices, the instance records it is
// drawn with and the materials its instances reference. The GPU side lives in the
// mesh BindGroupProvider, which the Renderer fills when the model is initialized.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the mesh vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// Instances returns the instance records the model is drawn with.
	// A model without explicit instances is drawn once with IdentityInstance.
	//
	// Returns:
	//   - []GPUInstance: the instance records
	Instances() []GPUInstance

	// SetInstances replaces the instance records.
	//
	// Parameters:
	//   - instances: the new instance records
	SetInstances(instances []GPUInstance)

	// InstanceCount returns the number of instances a draw issues.
	//
	// Returns:
	//   - int: the instance count, at least 1
	InstanceCount() int

	// VertexData returns the packed vertex stream.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the packed index stream.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// InstanceData returns the packed instance stream for a pipeline reading the given features.
	//
	// Parameters:
	//   - features: the instance fields read by the pipeline
	//
	// Returns:
	//   - []byte: the instance data
	InstanceData(features InstanceFeatures) []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// RenderMaterials retrieves the materials referenced by this model's instances.
	//
	// Returns:
	//   - []material.Material: the render-ready materials
	RenderMaterials() []material.Material

	// SetRenderMaterials replaces the material list for this model.
	//
	// Parameters:
	//   - mats: the materials to set
	SetRenderMaterials(mats []material.Material)

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider, or nil before GPU initialization
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider assigns the BindGroupProvider holding GPU mesh resources.
	//
	// Parameters:
	//   - provider: the mesh provider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(m)
	}
	if len(m.indices) == 0 {
		m.indices = make([]uint32, len(m.vertices))
		for i := range m.indices {
			m.indices[i] = uint32(i)
		}
	}
	m.boundingRadius = boundingRadius(m.vertices)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) Instances() []GPUInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.instances) == 0 {
		return []GPUInstance{IdentityInstance()}
	}
	return m.instances
}

func (m *model) SetInstances(instances []GPUInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = instances
}

func (m *model) InstanceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return max(1, len(m.instances))
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) InstanceData(features InstanceFeatures) []byte {
	return MarshalInstances(m.Instances(), features)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) RenderMaterials() []material.Material {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderMaterials
}

func (m *model) SetRenderMaterials(mats []material.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderMaterials = mats
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meshProvider = provider
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func boundingRadius(vertices []GPUVertex) float32 {
	var r2 float32
	for _, v := range vertices {
		p := v.Position
		r2 = max(r2, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
	}
	if r2 == 0 {
		return 0
	}
	return math32.Sqrt(r2)
}
