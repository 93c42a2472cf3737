package config

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

const sceneYAML = `
width: 320
height: 160
overlay: true
variant:
  mode: debug
  features: [edges]
  specialize: depth
debug: normal
camera:
  position: [0, 3, 4]
  fov: 60
light:
  position: [1, 5, 0]
  intensity: 2
environment:
  kind: constant
  color: [0.1, 0.2, 0.3]
mesh:
  primitive: cube
  size: 1
materials:
  - name: red
    diffuse: [1, 0, 0]
    specular: [1, 1, 1]
    shininess: 16
  - name: green
    diffuse: [0, 1, 0]
    shininess: 8
instances:
  - position: [1, 0, 0]
    material_id: 1
  - position: [-1, 0, 0]
    rotation: [0, 90, 0]
    scale: [2, 2, 2]
    tint: [0.5, 0.5, 0.5]
    uv_offset: [0.25, 0]
`

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	require.NoError(t, s.Validate())
}

func TestParseScene(t *testing.T) {
	s, err := Parse([]byte(sceneYAML))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, 320, s.Width)
	assert.True(t, s.Overlay)
	assert.Equal(t, debug.ModeNormal, s.Debug)
	// Keys left out keep their defaults.
	assert.Equal(t, float32(0.1), s.Camera.Near)
	assert.Equal(t, [3]float32{1, 1, 1}, s.Light.Color)

	v := s.BuildVariant()
	require.NoError(t, v.Validate())
	assert.Equal(t, shading.ModeDebug, v.Mode)
	assert.True(t, v.Features.Has(shading.FeatureEdgeOverlay|shading.FeatureMaterialID))
	assert.True(t, v.Specialized)
	assert.Equal(t, debug.ModeDepth, v.DebugMode)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("width: 10\nshadows: true\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("variant:\n  features: [shadows]\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		target error
	}{
		{"zero size", func(s *Scene) { s.Width = 0 }, nil},
		{"near equals far", func(s *Scene) { s.Camera.Far = s.Camera.Near }, nil},
		{"negative near", func(s *Scene) { s.Camera.Near = -1 }, nil},
		{"fov", func(s *Scene) { s.Camera.Fov = 180 }, nil},
		{"camera on target", func(s *Scene) { s.Camera.Position = s.Camera.Target }, nil},
		{"environment kind", func(s *Scene) { s.Environment.Kind = "hdr" }, nil},
		{"equirect without path", func(s *Scene) { s.Environment.Kind = EnvironmentEquirect }, nil},
		{"mesh primitive", func(s *Scene) { s.Mesh.Primitive = "teapot" }, nil},
		{"mesh size", func(s *Scene) { s.Mesh.Size = 0 }, nil},
		{"zero scale", func(s *Scene) { s.Instances = []InstanceConfig{{Scale: &[3]float32{1, 0, 1}}} }, nil},
		{"overlay mode", func(s *Scene) { s.Variant.Mode = shading.ModeOverlay }, nil},
		{"edges outside debug", func(s *Scene) {
			s.Variant.Features = []shading.Feature{shading.FeatureEdgeOverlay}
		}, shading.ErrInvalidVariant},
		{"material out of range", func(s *Scene) {
			s.Variant.Mode = shading.ModeMaterial
			s.Materials = []MaterialConfig{{Name: "only"}}
			s.Instances = []InstanceConfig{{MaterialID: 0}, {MaterialID: 1}}
		}, material.ErrMaterialOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrInvalidScene)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestTableVariantsWithoutMaterialsUseImplicit(t *testing.T) {
	for _, mode := range []shading.Mode{shading.ModeMaterial, shading.ModeDebug} {
		s := Default()
		s.Variant.Mode = mode
		s.Instances = []InstanceConfig{{MaterialID: 0}, {MaterialID: 3}}
		assert.NoError(t, s.Validate(), mode.String())
		assert.Equal(t, 0, s.BuildTable().Len())
	}

	s := Default()
	s.Variant.Mode = shading.ModeDebug
	s.Materials = []MaterialConfig{{Name: "only"}}
	s.Instances = []InstanceConfig{{MaterialID: 1}}
	assert.ErrorIs(t, s.Validate(), material.ErrMaterialOutOfRange)
}

func TestBuilders(t *testing.T) {
	s, err := Parse([]byte(sceneYAML))
	require.NoError(t, err)

	cam := s.BuildCamera()
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.InDelta(t, 1.0471976, cam.Fov(), 1e-6)

	frame := s.BuildFrame(debug.ModeUV)
	assert.Equal(t, debug.ModeUV, frame.Debug.Mode)
	assert.Equal(t, [3]float32{0, 3, 4}, frame.Camera.CameraPosition)
	assert.Equal(t, [3]float32{2, 2, 2}, frame.Light.Color)

	table := s.BuildTable()
	require.Equal(t, 2, table.Len())
	assert.Equal(t, [3]float32{0, 1, 0}, table.Lookup(1).Diffuse)
	assert.Equal(t, float32(8), table.Lookup(1).Shininess)

	instances := s.BuildInstances()
	require.Len(t, instances, 2)
	assert.Equal(t, uint32(1), instances[0].MaterialID)
	assert.Equal(t, float32(1), instances[0].Model[12])
	assert.Equal(t, [3]float32{1, 1, 1}, instances[0].Tint)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, instances[1].Tint)
	assert.Equal(t, [2]float32{0.25, 0}, instances[1].UVOffset)
	// A quarter turn about y maps +x to -z, scaled by 2.
	assert.InDelta(t, 0, instances[1].Model[0], 1e-5)
	assert.InDelta(t, -2, instances[1].Model[2], 1e-5)

	mesh := s.BuildMesh()
	assert.Equal(t, 36, mesh.IndexCount())
	assert.Equal(t, 2, mesh.InstanceCount())

	env, err := s.BuildEnvironment(1)
	require.NoError(t, err)
	assert.Equal(t, common.Vec3{0.1, 0.2, 0.3}, env.Sample(common.Vec3{0, 1, 0}))
}

func TestDefaultSceneDrawsOneInstance(t *testing.T) {
	s := Default()
	instances := s.BuildInstances()
	require.Len(t, instances, 1)
	assert.Equal(t, common.IdentityMat4(), instances[0].Model)

	env, err := s.BuildEnvironment(1)
	require.NoError(t, err)
	assert.IsType(t, environment.Gradient{}, env)
}

func TestLoadResolvesPathsRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "albedo.png"), color.NRGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "sky.png"), color.NRGBA{B: 255, A: 255})

	doc := `
variant: {mode: textured}
textures: {diffuse: albedo.png, max_size: 2}
environment: {kind: equirect, path: sky.png, face_size: 4}
`
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sky.png"), s.Resolve("sky.png"))
	assert.Equal(t, "/abs.png", s.Resolve("/abs.png"))

	res, err := s.BuildResources(2)
	require.NoError(t, err)
	require.NotNil(t, res.Diffuse)
	assert.Equal(t, 2, res.Diffuse.Width)
	assert.Equal(t, 1, res.Diffuse.Height)
	assert.Nil(t, res.Normal)
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, res.Diffuse.Pixels[0])
	assert.InDelta(t, 1, res.Environment.Sample(common.Vec3{0, 0, -1})[2], 1e-5)
	assert.Equal(t, 0, res.Materials.Len())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera: {near: 5, far: 1}\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidScene)

	s := Default()
	s.Textures.Normal = filepath.Join(t.TempDir(), "missing.png")
	_, err = s.BuildResources(1)
	assert.ErrorContains(t, err, "normal texture")
}
