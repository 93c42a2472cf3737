package config

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// BuildVariant returns the configured shading variant.
func (s *Scene) BuildVariant() shading.Variant {
	v := shading.NewVariant(s.Variant.Mode, s.Variant.Features...)
	if s.Variant.Specialize != nil {
		v = v.Specialize(*s.Variant.Specialize)
	}
	return v
}

// BuildCamera returns the camera with the aspect ratio of the target.
func (s *Scene) BuildCamera() camera.Camera {
	c := s.Camera
	return camera.NewCamera(
		camera.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
		camera.WithUp(c.Up[0], c.Up[1], c.Up[2]),
		camera.WithFov(radians(c.Fov)),
		camera.WithAspect(float32(s.Width)/float32(s.Height)),
		camera.WithNear(c.Near),
		camera.WithFar(c.Far),
	)
}

// BuildLight returns the point light.
func (s *Scene) BuildLight() light.Light {
	l := s.Light
	return light.NewLight(
		light.WithPosition(l.Position[0], l.Position[1], l.Position[2]),
		light.WithColor(l.Color[0], l.Color[1], l.Color[2]),
		light.WithIntensity(l.Intensity),
	)
}

// BuildFrame returns the frame uniforms of the scene with the given debug mode.
//
// Parameters:
//   - mode: the debug mode read by dynamic debug variants
//
// Returns:
//   - shading.Frame: the frame uniforms
func (s *Scene) BuildFrame(mode debug.Mode) shading.Frame {
	cam := s.BuildCamera()
	return shading.Frame{
		Camera: cam.Uniform(),
		Light:  s.BuildLight().Uniform(),
		Debug:  debug.State{Mode: mode, Near: cam.Near(), Far: cam.Far()}.Uniform(),
	}
}

// BuildTable returns the material table, in file order.
func (s *Scene) BuildTable() *material.Table {
	mats := make([]material.Material, len(s.Materials))
	for i, m := range s.Materials {
		mats[i] = m.material()
	}
	return material.TableFromMaterials(mats...)
}

func (m MaterialConfig) material() material.Material {
	return material.NewMaterial(
		material.WithName(m.Name),
		material.WithAmbient(m.Ambient),
		material.WithDiffuse(m.Diffuse),
		material.WithSpecular(m.Specular),
		material.WithShininess(m.Shininess),
	)
}

// BuildInstances returns the instance records. A scene without instances draws one
// identity instance.
//
// Returns:
//   - []model.GPUInstance: the records
func (s *Scene) BuildInstances() []model.GPUInstance {
	if len(s.Instances) == 0 {
		return []model.GPUInstance{model.IdentityInstance()}
	}
	out := make([]model.GPUInstance, len(s.Instances))
	for i, c := range s.Instances {
		scale := [3]float32{1, 1, 1}
		if c.Scale != nil {
			scale = *c.Scale
		}
		var m [16]float32
		common.BuildModelMatrix(m[:],
			c.Position[0], c.Position[1], c.Position[2],
			radians(c.Rotation[0]), radians(c.Rotation[1]), radians(c.Rotation[2]),
			scale[0], scale[1], scale[2])

		opts := []model.InstanceOption{
			model.WithUVOffset(c.UVOffset[0], c.UVOffset[1]),
			model.WithMaterialID(c.MaterialID),
		}
		if c.Tint != nil {
			opts = append(opts, model.WithTint(c.Tint[0], c.Tint[1], c.Tint[2]))
		}
		if c.Material != nil {
			opts = append(opts, model.WithInlineMaterial(c.Material.Ambient, c.Material.Diffuse, c.Material.Specular, c.Material.Shininess))
		}
		out[i] = model.NewInstance(m, opts...)
	}
	return out
}

// BuildMesh returns the primitive mesh carrying the scene's instances.
func (s *Scene) BuildMesh() model.Model {
	var vertices []model.GPUVertex
	var indices []uint32
	switch s.Mesh.Primitive {
	case PrimitiveCube:
		vertices, indices = model.Cube(s.Mesh.Size)
	default:
		vertices, indices = model.Quad(s.Mesh.Size)
	}
	return model.NewModel(
		model.WithName(s.Mesh.Primitive),
		model.WithMesh(vertices, indices),
		model.WithInstances(s.BuildInstances()...),
	)
}

// BuildEnvironment returns the environment sampler. Equirect images are read relative
// to the scene file and projected on up to workers goroutines.
//
// Parameters:
//   - workers: the projection concurrency
//
// Returns:
//   - environment.Sampler: the sampler
//   - error: an error if the equirect image cannot be loaded or projected
func (s *Scene) BuildEnvironment(workers int) (environment.Sampler, error) {
	e := s.Environment
	switch e.Kind {
	case EnvironmentConstant:
		return environment.Constant(e.Color), nil
	case EnvironmentEquirect:
		tex := &common.ImportedTexture{Name: "environment", Path: s.Resolve(e.Path)}
		img, err := tex.Image()
		if err != nil {
			return nil, fmt.Errorf("config: environment %s: %w", tex.Path, err)
		}
		return environment.FromEquirect(img, e.FaceSize, workers)
	}
	return environment.DefaultGradient(), nil
}

// BuildResources loads everything a draw binds besides the frame uniforms.
//
// Parameters:
//   - workers: the environment projection concurrency
//
// Returns:
//   - shading.Resources: the resources, with nil textures where none are configured
//   - error: an error if a texture or the environment cannot be loaded
func (s *Scene) BuildResources(workers int) (shading.Resources, error) {
	env, err := s.BuildEnvironment(workers)
	if err != nil {
		return shading.Resources{}, err
	}
	res := shading.Resources{Environment: env, Materials: s.BuildTable()}
	for _, t := range []struct {
		name, path string
		dst        **texture.Texture
	}{
		{"diffuse", s.Textures.Diffuse, &res.Diffuse},
		{"normal", s.Textures.Normal, &res.Normal},
	} {
		if t.path == "" {
			continue
		}
		tex, err := texture.Load(&common.ImportedTexture{Name: t.name, Path: s.Resolve(t.path)}, s.Textures.MaxSize)
		if err != nil {
			return shading.Resources{}, fmt.Errorf("config: %s texture: %w", t.name, err)
		}
		*t.dst = tex
	}
	return res, nil
}
