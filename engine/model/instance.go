package model

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// InstanceFeatures selects which optional per-instance fields a pipeline variant reads.
// The model matrix is always present.
type InstanceFeatures uint32

const (
	// InstanceTint reads the multiplicative color tint.
	InstanceTint InstanceFeatures = 1 << iota
	// InstanceTranslation reads the additional world-space offset.
	InstanceTranslation
	// InstanceUVOffset reads the texture-coordinate offset.
	InstanceUVOffset
	// InstanceBasis reads the precomputed normal, tangent and bitangent columns.
	// Without it the upper 3x3 of the model matrix transforms normals.
	InstanceBasis
	// InstanceMaterial reads the inline ambient, diffuse, specular and shininess.
	InstanceMaterial
	// InstanceMaterialID reads the material table index.
	InstanceMaterialID
)

// InstanceAll reads every field of the instance record.
const InstanceAll = InstanceTint | InstanceTranslation | InstanceUVOffset | InstanceBasis | InstanceMaterial | InstanceMaterialID

// Has reports whether every feature in o is set in f.
func (f InstanceFeatures) Has(o InstanceFeatures) bool {
	return f&o == o
}

// Implicit material values used when neither an inline material nor a table entry is available.
const (
	DefaultShininess = 32
)

// instanceField describes one attribute of the instance record.
type instanceField struct {
	name     string
	feature  InstanceFeatures // zero means always present
	offset   uint64
	size     uint64
	format   wgpu.VertexFormat
	location uint32
	wgslType string
}

// instanceFields lists the instance record attributes in offset order.
var instanceFields = []instanceField{
	{"model_0", 0, 0, 16, wgpu.VertexFormatFloat32x4, 5, "vec4<f32>"},
	{"model_1", 0, 16, 16, wgpu.VertexFormatFloat32x4, 6, "vec4<f32>"},
	{"model_2", 0, 32, 16, wgpu.VertexFormatFloat32x4, 7, "vec4<f32>"},
	{"model_3", 0, 48, 16, wgpu.VertexFormatFloat32x4, 8, "vec4<f32>"},
	{"tint", InstanceTint, 64, 12, wgpu.VertexFormatFloat32x3, 9, "vec3<f32>"},
	{"translation", InstanceTranslation, 80, 12, wgpu.VertexFormatFloat32x3, 10, "vec3<f32>"},
	{"uv_offset", InstanceUVOffset, 96, 8, wgpu.VertexFormatFloat32x2, 11, "vec2<f32>"},
	{"normal", InstanceBasis, 112, 12, wgpu.VertexFormatFloat32x3, 12, "vec3<f32>"},
	{"tangent", InstanceBasis, 128, 12, wgpu.VertexFormatFloat32x3, 13, "vec3<f32>"},
	{"bitangent", InstanceBasis, 144, 12, wgpu.VertexFormatFloat32x3, 14, "vec3<f32>"},
	{"ambient", InstanceMaterial, 160, 12, wgpu.VertexFormatFloat32x3, 15, "vec3<f32>"},
	{"diffuse", InstanceMaterial, 176, 12, wgpu.VertexFormatFloat32x3, 16, "vec3<f32>"},
	{"specular", InstanceMaterial, 192, 12, wgpu.VertexFormatFloat32x3, 17, "vec3<f32>"},
	{"shininess", InstanceMaterial, 208, 4, wgpu.VertexFormatFloat32, 18, "f32"},
	{"material_id", InstanceMaterialID, 212, 4, wgpu.VertexFormatUint32, 19, "u32"},
}

// instanceDefaults holds the WGSL expressions load_instance substitutes for absent fields.
var instanceDefaults = map[string]string{
	"tint":        "vec3<f32>(1.0)",
	"translation": "vec3<f32>(0.0)",
	"uv_offset":   "vec2<f32>(0.0)",
	"normal":      "vec3<f32>(0.0)",
	"tangent":     "vec3<f32>(0.0)",
	"bitangent":   "vec3<f32>(0.0)",
	"ambient":     "vec3<f32>(0.0)",
	"diffuse":     "vec3<f32>(1.0)",
	"specular":    "vec3<f32>(1.0)",
	"shininess":   "32.0",
	"material_id": "0u",
}

// InstanceStride returns the byte stride of the instance stream for the given features:
// the end of the last field read, rounded up to 16 bytes.
//
// Parameters:
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - uint64: the stride in bytes
func InstanceStride(features InstanceFeatures) uint64 {
	var end uint64
	for _, f := range instanceFields {
		if f.feature == 0 || features.Has(f.feature) {
			end = max(end, f.offset+f.size)
		}
	}
	return (end + 15) &^ 15
}

// InstanceLayout returns the instance-rate vertex buffer layout for the given features.
// Attribute offsets and shader locations are fixed; absent fields are simply omitted.
//
// Parameters:
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout with StepModeInstance
func InstanceLayout(features InstanceFeatures) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, len(instanceFields))
	for _, f := range instanceFields {
		if f.feature != 0 && !features.Has(f.feature) {
			continue
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         f.format,
			Offset:         f.offset,
			ShaderLocation: f.location,
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceStride(features),
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

// VertexLayout returns the per-vertex buffer layout for GPUVertex (stride 56, locations 0-4).
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout with StepModeVertex
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 56,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 44, ShaderLocation: 4},
		},
	}
}

// InstanceWGSL generates the WGSL declarations a vertex shader needs to read an
// instance stream with the given features: the InstanceInput struct holding only the
// present attributes, a complete Instance struct, feature constants, and a
// load_instance function that fills absent fields with their defaults.
//
// Parameters:
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - string: the WGSL source
func InstanceWGSL(features InstanceFeatures) string {
	var sb strings.Builder

	sb.WriteString("struct InstanceInput {\n")
	for _, f := range instanceFields {
		if f.feature != 0 && !features.Has(f.feature) {
			continue
		}
		fmt.Fprintf(&sb, "    @location(%d) %s: %s,\n", f.location, f.name, f.wgslType)
	}
	sb.WriteString("};\n\n")

	sb.WriteString("struct Instance {\n    model: mat4x4<f32>,\n")
	for _, f := range instanceFields[4:] {
		fmt.Fprintf(&sb, "    %s: %s,\n", f.name, f.wgslType)
	}
	sb.WriteString("};\n\n")

	fmt.Fprintf(&sb, "const INSTANCE_HAS_BASIS: bool = %t;\n", features.Has(InstanceBasis))
	fmt.Fprintf(&sb, "const INSTANCE_HAS_MATERIAL: bool = %t;\n\n", features.Has(InstanceMaterial))

	sb.WriteString("fn load_instance(raw: InstanceInput) -> Instance {\n")
	sb.WriteString("    var inst: Instance;\n")
	sb.WriteString("    inst.model = mat4x4<f32>(raw.model_0, raw.model_1, raw.model_2, raw.model_3);\n")
	for _, f := range instanceFields[4:] {
		if features.Has(f.feature) {
			fmt.Fprintf(&sb, "    inst.%s = raw.%s;\n", f.name, f.name)
		} else {
			fmt.Fprintf(&sb, "    inst.%s = %s;\n", f.name, instanceDefaults[f.name])
		}
	}
	sb.WriteString("    return inst;\n}\n")
	return sb.String()
}

// Masked returns a copy of g in which every field not covered by features holds the
// value load_instance substitutes on the GPU. CPU evaluation uses it so both paths
// see identical instance data.
//
// Parameters:
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - GPUInstance: the masked record
func (g GPUInstance) Masked(features InstanceFeatures) GPUInstance {
	out := GPUInstance{Model: g.Model}
	out.Tint = [3]float32{1, 1, 1}
	out.Diffuse = [3]float32{1, 1, 1}
	out.Specular = [3]float32{1, 1, 1}
	out.Shininess = DefaultShininess
	if features.Has(InstanceTint) {
		out.Tint = g.Tint
	}
	if features.Has(InstanceTranslation) {
		out.Translation = g.Translation
	}
	if features.Has(InstanceUVOffset) {
		out.UVOffset = g.UVOffset
	}
	if features.Has(InstanceBasis) {
		out.Normal, out.Tangent, out.Bitangent = g.Normal, g.Tangent, g.Bitangent
	}
	if features.Has(InstanceMaterial) {
		out.Ambient, out.Diffuse, out.Specular, out.Shininess = g.Ambient, g.Diffuse, g.Specular, g.Shininess
	}
	if features.Has(InstanceMaterialID) {
		out.MaterialID = g.MaterialID
	}
	return out
}

// NewInstance builds an instance record for the given model matrix. The normal basis
// is the inverse-transpose of the matrix's upper 3x3 so normals stay perpendicular to
// surfaces under non-uniform scale. The record starts with a white tint and the
// implicit material.
//
// Parameters:
//   - modelMatrix: the column-major model-to-world matrix
//   - options: functional options for the remaining fields
//
// Returns:
//   - GPUInstance: the instance record
func NewInstance(modelMatrix [16]float32, options ...InstanceOption) GPUInstance {
	inst := GPUInstance{
		Model:     modelMatrix,
		Tint:      [3]float32{1, 1, 1},
		Diffuse:   [3]float32{1, 1, 1},
		Specular:  [3]float32{1, 1, 1},
		Shininess: DefaultShininess,
	}
	basis, _ := common.NormalMatrix(modelMatrix[:])
	inst.Tangent = basis.Column(0)
	inst.Bitangent = basis.Column(1)
	inst.Normal = basis.Column(2)
	for _, opt := range options {
		opt(&inst)
	}
	return inst
}

// IdentityInstance is the single record bound for draws that are not instanced.
//
// Returns:
//   - GPUInstance: an instance with the identity transform
func IdentityInstance() GPUInstance {
	return NewInstance(common.IdentityMat4())
}

// InstanceOption is a functional option applied by NewInstance.
type InstanceOption func(*GPUInstance)

// WithTint sets the multiplicative color tint.
//
// Parameters:
//   - r, g, b: the tint color
//
// Returns:
//   - InstanceOption: a function that sets the tint
func WithTint(r, g, b float32) InstanceOption {
	return func(i *GPUInstance) {
		i.Tint = [3]float32{r, g, b}
	}
}

// WithTranslation sets the world-space offset added after the model matrix.
//
// Parameters:
//   - x, y, z: the offset
//
// Returns:
//   - InstanceOption: a function that sets the translation
func WithTranslation(x, y, z float32) InstanceOption {
	return func(i *GPUInstance) {
		i.Translation = [3]float32{x, y, z}
	}
}

// WithUVOffset sets the texture-coordinate offset.
//
// Parameters:
//   - u, v: the offset
//
// Returns:
//   - InstanceOption: a function that sets the UV offset
func WithUVOffset(u, v float32) InstanceOption {
	return func(i *GPUInstance) {
		i.UVOffset = [2]float32{u, v}
	}
}

// WithMaterialID sets the material table index. The index must be smaller than the
// length of the table bound with the draw.
//
// Parameters:
//   - id: the material index
//
// Returns:
//   - InstanceOption: a function that sets the material index
func WithMaterialID(id uint32) InstanceOption {
	return func(i *GPUInstance) {
		i.MaterialID = id
	}
}

// WithInlineMaterial sets the Blinn-Phong coefficients carried by the record itself.
//
// Parameters:
//   - ambient, diffuse, specular: the reflection colors
//   - shininess: the specular exponent
//
// Returns:
//   - InstanceOption: a function that sets the inline material
func WithInlineMaterial(ambient, diffuse, specular [3]float32, shininess float32) InstanceOption {
	return func(i *GPUInstance) {
		i.Ambient, i.Diffuse, i.Specular, i.Shininess = ambient, diffuse, specular, shininess
	}
}

// WithBasis overrides the normal basis columns. A zero bitangent is derived as cross(N, T).
//
// Parameters:
//   - normal, tangent, bitangent: the basis columns
//
// Returns:
//   - InstanceOption: a function that sets the basis
func WithBasis(normal, tangent, bitangent [3]float32) InstanceOption {
	return func(i *GPUInstance) {
		i.Normal, i.Tangent, i.Bitangent = normal, tangent, bitangent
	}
}
