// Package shading is the CPU reference of the shading stages: it evaluates exactly the
// math of the WGSL vertex, fragment and overlay stages so tests and the software
// renderer can run the contract without a GPU.
package shading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
)

// ErrInvalidVariant is returned by Variant.Validate for feature combinations no pipeline can build.
var ErrInvalidVariant = errors.New("shading: invalid variant")

// Mode is the shading preset a pipeline is built for.
type Mode int

const (
	// ModeColor lights the interpolated vertex color.
	ModeColor Mode = iota
	// ModeTextured lights a diffuse texture sample.
	ModeTextured
	// ModeNormalMapped lights a diffuse texture with a tangent-space normal map.
	ModeNormalMapped
	// ModeMaterial lights with coefficients fetched from the material table.
	ModeMaterial
	// ModeDebug routes fragments through the debug visualization switch.
	ModeDebug
	// ModeOverlay is the full-screen environment and annotation pass.
	ModeOverlay
)

var modeNames = map[Mode]string{
	ModeColor:        "color",
	ModeTextured:     "textured",
	ModeNormalMapped: "normal_mapped",
	ModeMaterial:     "material",
	ModeDebug:        "debug",
	ModeOverlay:      "overlay",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a shading mode by name.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - Mode: the mode
//   - error: an error if the name is unknown
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("shading: unknown mode %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Feature is an optional input a variant reads.
type Feature uint32

const (
	// FeatureUV reads texture coordinates and the instance UV offset.
	FeatureUV Feature = 1 << iota
	// FeatureTangentBasis reads the precomputed instance normal basis.
	FeatureTangentBasis
	// FeatureMaterialID looks material coefficients up in the material table.
	FeatureMaterialID
	// FeatureInlineMaterial reads material coefficients from the instance record.
	FeatureInlineMaterial
	// FeatureDiffuseTexture samples the diffuse texture as albedo.
	FeatureDiffuseTexture
	// FeatureNormalMap perturbs the normal with the tangent-space normal map.
	FeatureNormalMap
	// FeatureEdgeOverlay replaces the debug lit output with a normal-discontinuity silhouette.
	FeatureEdgeOverlay
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureUV, "uv"},
	{FeatureTangentBasis, "tbn"},
	{FeatureMaterialID, "matid"},
	{FeatureInlineMaterial, "inline"},
	{FeatureDiffuseTexture, "diffuse"},
	{FeatureNormalMap, "normalmap"},
	{FeatureEdgeOverlay, "edges"},
}

// Has reports whether every feature in o is set in f.
func (f Feature) Has(o Feature) bool {
	return f&o == o
}

// ParseFeature resolves a single feature from the name it has in variant keys.
//
// Parameters:
//   - s: a feature name such as "tbn" or "edges"
//
// Returns:
//   - Feature: the feature
//   - error: an error if the name is unknown
func ParseFeature(s string) (Feature, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, fn := range featureNames {
		if fn.name == s {
			return fn.f, nil
		}
	}
	return 0, fmt.Errorf("shading: unknown feature %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler so features can be listed by name in config files.
func (f *Feature) UnmarshalText(text []byte) error {
	v, err := ParseFeature(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Variant is the pipeline-build-time shading configuration: which evaluator runs and
// which optional inputs it reads.
type Variant struct {
	Mode     Mode
	Features Feature
	// DebugMode is the visualization baked into a specialized debug pipeline.
	DebugMode debug.Mode
	// Specialized selects DebugMode at build time instead of reading the debug uniform.
	Specialized bool
}

// NewVariant returns the variant of a mode with its usual features.
//
// Parameters:
//   - mode: the shading preset
//   - extra: additional features to enable
//
// Returns:
//   - Variant: the variant
func NewVariant(mode Mode, extra ...Feature) Variant {
	var f Feature
	switch mode {
	case ModeTextured:
		f = FeatureUV | FeatureDiffuseTexture
	case ModeNormalMapped:
		f = FeatureUV | FeatureTangentBasis | FeatureDiffuseTexture | FeatureNormalMap
	case ModeMaterial, ModeDebug:
		f = FeatureUV | FeatureTangentBasis | FeatureMaterialID
	}
	for _, e := range extra {
		f |= e
	}
	return Variant{Mode: mode, Features: f}
}

// Specialize returns a copy of v that renders the given debug mode without reading
// the debug uniform.
func (v Variant) Specialize(mode debug.Mode) Variant {
	v.DebugMode = mode
	v.Specialized = true
	return v
}

// InstanceFeatures returns the instance record fields the variant's vertex stage reads.
// Tint and translation are always read so the reduced layouts stay a prefix of the full one.
//
// Returns:
//   - model.InstanceFeatures: the instance fields
func (v Variant) InstanceFeatures() model.InstanceFeatures {
	if v.Mode == ModeOverlay {
		return 0
	}
	f := model.InstanceTint | model.InstanceTranslation
	if v.Features.Has(FeatureUV) {
		f |= model.InstanceUVOffset
	}
	if v.Features.Has(FeatureTangentBasis) {
		f |= model.InstanceBasis
	}
	if v.Features.Has(FeatureInlineMaterial) {
		f |= model.InstanceMaterial
	}
	if v.Features.Has(FeatureMaterialID) {
		f |= model.InstanceMaterialID
	}
	return f
}

// MaterialSource reports where lit variants take their coefficients from.
func (v Variant) MaterialSource() MaterialSource {
	switch {
	case v.Features.Has(FeatureMaterialID):
		return MaterialTable
	case v.Features.Has(FeatureInlineMaterial):
		return MaterialInline
	}
	return MaterialImplicit
}

// Validate reports feature combinations that cannot be built.
//
// Returns:
//   - error: ErrInvalidVariant wrapped with the reason, or nil
func (v Variant) Validate() error {
	if _, ok := modeNames[v.Mode]; !ok {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidVariant, int(v.Mode))
	}
	if v.Mode == ModeOverlay && v.Features != 0 {
		return fmt.Errorf("%w: overlay takes no features", ErrInvalidVariant)
	}
	if v.Features.Has(FeatureMaterialID) && v.Features.Has(FeatureInlineMaterial) {
		return fmt.Errorf("%w: material table and inline material are exclusive", ErrInvalidVariant)
	}
	if (v.Features.Has(FeatureDiffuseTexture) || v.Features.Has(FeatureNormalMap)) && !v.Features.Has(FeatureUV) {
		return fmt.Errorf("%w: texture sampling needs uv", ErrInvalidVariant)
	}
	if v.Features.Has(FeatureEdgeOverlay) && v.Mode != ModeDebug {
		return fmt.Errorf("%w: edge overlay is a debug feature", ErrInvalidVariant)
	}
	if v.Specialized && v.Mode != ModeDebug {
		return fmt.Errorf("%w: only debug variants specialize a debug mode", ErrInvalidVariant)
	}
	return nil
}

// Key returns a stable pipeline cache key, e.g. "debug+uv+tbn+matid@depth".
func (v Variant) Key() string {
	var sb strings.Builder
	sb.WriteString(v.Mode.String())
	for _, fn := range featureNames {
		if v.Features.Has(fn.f) {
			sb.WriteByte('+')
			sb.WriteString(fn.name)
		}
	}
	if v.Specialized {
		sb.WriteByte('@')
		sb.WriteString(v.DebugMode.String())
	}
	return sb.String()
}

// MaterialSource is where lit variants take their Blinn-Phong coefficients from.
type MaterialSource int

const (
	// MaterialImplicit uses shininess 32, white diffuse and specular, no ambient.
	MaterialImplicit MaterialSource = iota
	// MaterialInline uses the coefficients carried by the instance record.
	MaterialInline
	// MaterialTable indexes the material table with the instance material id.
	MaterialTable
)
