package material

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	ambient           [3]float32
	diffuse           [3]float32
	specular          [3]float32
	shininess         float32
	diffuseTexture    *common.ImportedTexture
	normalTexture     *common.ImportedTexture
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating Blinn-Phong
// reflection coefficients, texture references, and GPU resource bindings needed for draw calls.
//
// Surface properties (name, reflection colors, shininess, textures) are set at
// load time and are read-only through this interface. GPU resource references
// (pipeline key, bind group provider) are mutable so they can be configured after
// construction during GPU initialization.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Ambient retrieves the ambient reflection color. Lit variants also use it as the
	// weight of the environment reflection.
	//
	// Returns:
	//   - [3]float32: the ambient color
	Ambient() [3]float32

	// Diffuse retrieves the diffuse reflection color.
	//
	// Returns:
	//   - [3]float32: the diffuse color
	Diffuse() [3]float32

	// Specular retrieves the specular reflection color.
	//
	// Returns:
	//   - [3]float32: the specular color
	Specular() [3]float32

	// Shininess retrieves the Blinn-Phong specular exponent.
	//
	// Returns:
	//   - float32: the exponent
	Shininess() float32

	// DiffuseTexture retrieves the diffuse/albedo texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// NormalTexture retrieves the tangent-space normal map reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the normal texture, or nil
	NormalTexture() *common.ImportedTexture

	// GPU returns the material table row for this material.
	//
	// Returns:
	//   - GPUMaterial: the 48-byte table entry
	GPU() GPUMaterial

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding the material's texture bindings.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Unset coefficients default to the implicit material.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	implicit := Implicit()
	m := &material{
		ambient:   implicit.Ambient,
		diffuse:   implicit.Diffuse,
		specular:  implicit.Specular,
		shininess: implicit.Shininess,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Ambient() [3]float32 {
	return m.ambient
}

func (m *material) Diffuse() [3]float32 {
	return m.diffuse
}

func (m *material) Specular() [3]float32 {
	return m.specular
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) NormalTexture() *common.ImportedTexture {
	return m.normalTexture
}

func (m *material) GPU() GPUMaterial {
	return GPUMaterial{
		Ambient:   m.ambient,
		Diffuse:   m.diffuse,
		Specular:  m.specular,
		Shininess: m.shininess,
	}
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
