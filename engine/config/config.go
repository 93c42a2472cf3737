// Package config describes a preview draw in YAML: the target size, the shading
// variant, the camera, the light, the environment, the mesh and its instances.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

// ErrInvalidScene is returned by Validate, wrapped with the reason.
var ErrInvalidScene = errors.New("config: invalid scene")

// Environment kinds.
const (
	EnvironmentGradient = "gradient"
	EnvironmentConstant = "constant"
	EnvironmentEquirect = "equirect"
)

// Mesh primitives.
const (
	PrimitiveQuad = "quad"
	PrimitiveCube = "cube"
)

// Scene is a complete preview draw.
type Scene struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Overlay draws the full-screen environment pass before the mesh.
	Overlay bool `yaml:"overlay"`
	// Workers caps the software renderer's concurrency, 0 for one per CPU.
	Workers int `yaml:"workers"`

	Variant     VariantConfig     `yaml:"variant"`
	Debug       debug.Mode        `yaml:"debug"`
	Camera      CameraConfig      `yaml:"camera"`
	Light       LightConfig       `yaml:"light"`
	Environment EnvironmentConfig `yaml:"environment"`
	Mesh        MeshConfig        `yaml:"mesh"`
	Textures    TextureConfig     `yaml:"textures"`
	Materials   []MaterialConfig  `yaml:"materials"`
	Instances   []InstanceConfig  `yaml:"instances"`

	// dir resolves relative paths; set by Load.
	dir string
}

// VariantConfig selects the shading variant. Specialize bakes the debug mode into the
// pipeline instead of reading it from the frame.
type VariantConfig struct {
	Mode       shading.Mode      `yaml:"mode"`
	Features   []shading.Feature `yaml:"features"`
	Specialize *debug.Mode       `yaml:"specialize,omitempty"`
}

// CameraConfig places the camera. Fov is in degrees.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Up       [3]float32 `yaml:"up"`
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// LightConfig is the point light.
type LightConfig struct {
	Position  [3]float32 `yaml:"position"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
}

// EnvironmentConfig selects the environment sampler. Path is an equirectangular image,
// projected to FaceSize cube faces.
type EnvironmentConfig struct {
	Kind     string     `yaml:"kind"`
	Color    [3]float32 `yaml:"color"`
	Path     string     `yaml:"path"`
	FaceSize int        `yaml:"face_size"`
}

// MeshConfig is a generated primitive.
type MeshConfig struct {
	Primitive string  `yaml:"primitive"`
	Size      float32 `yaml:"size"`
}

// TextureConfig names the surface textures. Empty paths bind the defaults. Textures
// larger than MaxSize on either side are downscaled, 0 keeps them as they are.
type TextureConfig struct {
	Diffuse string `yaml:"diffuse"`
	Normal  string `yaml:"normal"`
	MaxSize int    `yaml:"max_size"`
}

// MaterialConfig is one material table entry.
type MaterialConfig struct {
	Name      string     `yaml:"name"`
	Ambient   [3]float32 `yaml:"ambient"`
	Diffuse   [3]float32 `yaml:"diffuse"`
	Specular  [3]float32 `yaml:"specular"`
	Shininess float32    `yaml:"shininess"`
}

// InstanceConfig is one instance. Rotation is Euler angles in degrees; Material holds
// inline coefficients for variants that read them.
type InstanceConfig struct {
	Position   [3]float32      `yaml:"position"`
	Rotation   [3]float32      `yaml:"rotation"`
	Scale      *[3]float32     `yaml:"scale,omitempty"`
	Tint       *[3]float32     `yaml:"tint,omitempty"`
	UVOffset   [2]float32      `yaml:"uv_offset"`
	MaterialID uint32          `yaml:"material_id"`
	Material   *MaterialConfig `yaml:"material,omitempty"`
}

// Default returns the scene used for every key a file leaves out: a lit color quad
// seen from above and in front under a white light and the gradient sky.
//
// Returns:
//   - *Scene: the default scene
func Default() *Scene {
	return &Scene{
		Width:   640,
		Height:  480,
		Variant: VariantConfig{Mode: shading.ModeColor},
		Camera: CameraConfig{
			Position: [3]float32{0, 2, 3},
			Up:       [3]float32{0, 1, 0},
			Fov:      45,
			Near:     0.1,
			Far:      100,
		},
		Light: LightConfig{
			Position:  [3]float32{0, 5, 0},
			Color:     [3]float32{1, 1, 1},
			Intensity: 1,
		},
		Environment: EnvironmentConfig{Kind: EnvironmentGradient, FaceSize: 256},
		Mesh:        MeshConfig{Primitive: PrimitiveQuad, Size: 2},
	}
}

// Parse decodes a scene from YAML over Default. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Scene: the scene, not yet validated
//   - error: an error if the document does not decode
func Parse(data []byte) (*Scene, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return s, nil
}

// Load reads, parses and validates a scene file. Texture and environment paths are
// resolved relative to the file.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - *Scene: the validated scene
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Resolve returns path relative to the scene file, or unchanged if it is absolute or
// the scene was not loaded from a file.
func (s *Scene) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

// Validate checks everything a draw of the scene relies on.
//
// Returns:
//   - error: ErrInvalidScene wrapped with the first problem, or nil
func (s *Scene) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidScene}, args...)...)
	}

	if s.Width <= 0 || s.Height <= 0 {
		return invalid("size must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.Workers < 0 {
		return invalid("workers must not be negative, got %d", s.Workers)
	}
	if err := s.BuildVariant().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if s.Variant.Mode == shading.ModeOverlay {
		return invalid("overlay is a pass, enable it with overlay: true")
	}

	c := s.Camera
	if c.Near <= 0 || c.Near >= c.Far {
		return invalid("camera needs 0 < near < far, got near %v far %v", c.Near, c.Far)
	}
	if c.Fov <= 0 || c.Fov >= 180 {
		return invalid("camera fov must be in (0, 180) degrees, got %v", c.Fov)
	}
	if c.Position == c.Target {
		return invalid("camera position and target coincide")
	}

	switch s.Environment.Kind {
	case EnvironmentGradient, EnvironmentConstant:
	case EnvironmentEquirect:
		if s.Environment.Path == "" {
			return invalid("equirect environment needs a path")
		}
		if s.Environment.FaceSize <= 0 {
			return invalid("environment face_size must be positive, got %d", s.Environment.FaceSize)
		}
	default:
		return invalid("unknown environment kind %q", s.Environment.Kind)
	}

	switch s.Mesh.Primitive {
	case PrimitiveQuad, PrimitiveCube:
	default:
		return invalid("unknown mesh primitive %q", s.Mesh.Primitive)
	}
	if s.Mesh.Size <= 0 {
		return invalid("mesh size must be positive, got %v", s.Mesh.Size)
	}

	if s.Textures.MaxSize < 0 {
		return invalid("textures max_size must not be negative, got %d", s.Textures.MaxSize)
	}
	for i, inst := range s.Instances {
		if inst.Scale != nil && (inst.Scale[0] == 0 || inst.Scale[1] == 0 || inst.Scale[2] == 0) {
			return invalid("instance %d has a zero scale", i)
		}
	}
	// Without materials the table binds the implicit row and every id resolves to it.
	if s.BuildVariant().MaterialSource() == shading.MaterialTable && len(s.Materials) > 0 {
		instances := s.BuildInstances()
		ids := make([]uint32, len(instances))
		for i, inst := range instances {
			ids[i] = inst.MaterialID
		}
		if err := s.BuildTable().Validate(ids...); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScene, err)
		}
	}
	return nil
}
