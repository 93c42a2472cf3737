package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
)

// FrameData is the uniform state uploaded once per frame.
type FrameData struct {
	Camera camera.GPUCameraUniform
	Light  light.GPULight
	Debug  debug.GPUDebugUniform
}

// lookup resolves a schema slot or reports it missing.
func lookup(s binding.Schema, slot binding.Slot) (binding.Entry, error) {
	e, ok := s.Lookup(slot)
	if !ok {
		return binding.Entry{}, fmt.Errorf("renderer: schema has no %q slot", slot)
	}
	return e, nil
}

// InitFrameGroup creates the uniform buffers and bind group of the frame group (camera,
// light and debug) on provider.
//
// Parameters:
//   - r: the renderer
//   - provider: the provider backing the frame group
//
// Returns:
//   - error: an error if the schema has no camera slot or creation fails
func InitFrameGroup(r Renderer, provider bind_group_provider.BindGroupProvider) error {
	cam, err := lookup(r.Schema(), binding.SlotCamera)
	if err != nil {
		return err
	}
	return r.InitGroup(provider, cam.Location.Group, nil)
}

// FrameWrites returns the buffer writes uploading frame data into the frame group.
//
// Parameters:
//   - s: the binding schema
//   - provider: the provider backing the frame group
//   - f: the frame data
//
// Returns:
//   - []bind_group_provider.BufferWrite: one write per uniform
//   - error: an error if a frame slot is missing from the schema
func FrameWrites(s binding.Schema, provider bind_group_provider.BindGroupProvider, f FrameData) ([]bind_group_provider.BufferWrite, error) {
	payloads := []struct {
		slot binding.Slot
		data []byte
	}{
		{binding.SlotCamera, f.Camera.Marshal()},
		{binding.SlotLight, f.Light.Marshal()},
		{binding.SlotDebug, f.Debug.Marshal()},
	}
	writes := make([]bind_group_provider.BufferWrite, 0, len(payloads))
	for _, p := range payloads {
		e, err := lookup(s, p.slot)
		if err != nil {
			return nil, err
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  e.Location.Binding,
			Data:     p.data,
		})
	}
	return writes, nil
}

// InitEnvironmentGroup uploads a six-layer cube texture and the environment sampler and
// creates the environment bind group.
//
// Parameters:
//   - r: the renderer
//   - provider: the provider backing the environment group
//   - faces: the cube faces, six layers in face order
//
// Returns:
//   - error: an error if the staging data is not a cube or creation fails
func InitEnvironmentGroup(r Renderer, provider bind_group_provider.BindGroupProvider, faces common.TextureStagingData) error {
	if faces.Layers != 6 {
		return fmt.Errorf("renderer: environment needs 6 cube faces, got %d layers", faces.Layers)
	}
	tex, err := lookup(r.Schema(), binding.SlotEnvironmentTexture)
	if err != nil {
		return err
	}
	samp, err := lookup(r.Schema(), binding.SlotEnvironmentSampler)
	if err != nil {
		return err
	}
	if err := r.InitTextureView(provider, tex.Location.Binding, faces); err != nil {
		return err
	}
	if err := r.InitSampler(provider, samp.Location.Binding, common.EnvironmentSampler()); err != nil {
		return err
	}
	return r.InitGroup(provider, tex.Location.Group, nil)
}

// InitMaterialGroup creates the material table storage buffer sized to the table, uploads
// the table and creates the bind group. A nil or empty table binds one implicit entry.
//
// Parameters:
//   - r: the renderer
//   - provider: the provider backing the material table group
//   - table: the material table
//
// Returns:
//   - error: an error if the schema has no materials slot or creation fails
func InitMaterialGroup(r Renderer, provider bind_group_provider.BindGroupProvider, table *material.Table) error {
	e, err := lookup(r.Schema(), binding.SlotMaterials)
	if err != nil {
		return err
	}
	data := table.Marshal()
	if err := r.InitGroup(provider, e.Location.Group, map[int]uint64{e.Location.Binding: uint64(len(data))}); err != nil {
		return err
	}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: e.Location.Binding, Data: data}})
	return nil
}

// InitSurfaceGroup uploads the diffuse texture and normal map of a surface with their
// samplers and creates the surface bind group. A nil diffuse texture binds white and a
// nil normal map binds the flat normal, so every variant can share the same layout.
//
// Parameters:
//   - r: the renderer
//   - provider: the provider backing the surface group
//   - diffuse: the diffuse texture, or nil
//   - normal: the tangent-space normal map, or nil
//
// Returns:
//   - error: an error if a surface slot is missing or creation fails
func InitSurfaceGroup(r Renderer, provider bind_group_provider.BindGroupProvider, diffuse, normal *common.TextureStagingData) error {
	textures := []struct {
		texture, sampler binding.Slot
		data             *common.TextureStagingData
		fallback         func() common.TextureStagingData
	}{
		{binding.SlotDiffuseTexture, binding.SlotDiffuseSampler, diffuse, common.WhiteTexture},
		{binding.SlotNormalTexture, binding.SlotNormalSampler, normal, common.FlatNormalTexture},
	}

	group := -1
	for _, t := range textures {
		tex, err := lookup(r.Schema(), t.texture)
		if err != nil {
			return err
		}
		samp, err := lookup(r.Schema(), t.sampler)
		if err != nil {
			return err
		}
		data := t.fallback()
		if t.data != nil {
			data = *t.data
		}
		if err := r.InitTextureView(provider, tex.Location.Binding, data); err != nil {
			return err
		}
		if err := r.InitSampler(provider, samp.Location.Binding, common.SurfaceSampler()); err != nil {
			return err
		}
		group = tex.Location.Group
	}
	return r.InitGroup(provider, group, nil)
}
