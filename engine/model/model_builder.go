package model

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that sets the vertices and indices of the Model.
// A nil index slice draws the vertices as a plain triangle list.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: the triangle list indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(vertices []GPUVertex, indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
		m.indices = indices
	}
}

// WithInstances is an option builder that sets the instance records of the Model.
//
// Parameters:
//   - instances: the instance records
//
// Returns:
//   - ModelBuilderOption: a function that applies the instances option to a model
func WithInstances(instances ...GPUInstance) ModelBuilderOption {
	return func(m *model) {
		m.instances = instances
	}
}

// WithRenderMaterials is an option builder that sets the materials referenced by the Model's instances.
//
// Parameters:
//   - mats: the materials
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithRenderMaterials(mats ...material.Material) ModelBuilderOption {
	return func(m *model) {
		m.renderMaterials = mats
	}
}

// WithMeshProvider is an option builder that sets the BindGroupProvider for mesh GPU resources.
//
// Parameters:
//   - provider: the BindGroupProvider holding vertex/index/instance buffers
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithGeneratedTangents is an option builder that fills vertex tangents from the
// mesh UVs with ComputeTangents. It must follow WithMesh.
//
// Returns:
//   - ModelBuilderOption: a function that computes tangents for the model's mesh
func WithGeneratedTangents() ModelBuilderOption {
	return func(m *model) {
		ComputeTangents(m.vertices, m.indices)
	}
}
