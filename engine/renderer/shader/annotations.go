// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that drive source injection, bind group declaration, resource provider
// registration and pipeline specialization. The parsed results are stored as Annotation
// values and consumed by the PreProcessor and the binding schema.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source (a struct definition or a
	// function snippet) at the annotation site. It does not produce a declaration.
	//
	// Syntax: //@oxy:include <source>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The variable
	// name doubles as the binding schema slot name.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration stays hand-written
	// directly below the annotation. This is used for textures and samplers, which have
	// no registered struct. The optional binding role names the schema slot.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 3 0 material diffuse_texture
	AnnotationTypeProvider AnnotationType = "provider"

	// AnnotationTypeSpecialize emits a module-scope WGSL const whose value is chosen
	// when the shader is built. The default is used unless the PreProcessor was given
	// an override for the name. The const is named after the argument in upper case.
	//
	// Syntax: //@oxy:specialize <name> <bool|u32|i32|f32> <default>
	//
	// Example: //@oxy:specialize debug_mode u32 0 -> const DEBUG_MODE: u32 = 0u;
	AnnotationTypeSpecialize AnnotationType = "specialize"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:    [0] = source key (e.g. "camera")
	//   - group:      [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider:   [0] = provider identity, [1] = binding role (optional)
	//   - specialize: [0] = constant name, [1] = WGSL scalar type, [2] = default literal
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group is the @group index for group and provider annotations. Nil otherwise.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil otherwise.
	Binding *int
}

// Slot returns the binding schema slot a group or provider annotation declares: the
// variable name of a group annotation, or the role (falling back to the identity) of
// a provider annotation. Other annotations have no slot.
//
// Returns:
//   - string: the slot name, or "" if the annotation declares no binding
func (a Annotation) Slot() string {
	switch a.Type {
	case AnnotationTypeBindingGroup:
		return string(a.Args[1])
	case AnnotationTypeProvider:
		if len(a.Args) > 1 {
			return string(a.Args[1])
		}
		return string(a.Args[0])
	}
	return ""
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Source arguments ───────────────────────────────────────────────────────────
// These identify registered WGSL sources. Struct sources may also appear as the type
// of an @oxy:group annotation, optionally wrapped in array<>.

const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight identifies the Light struct.
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgDebug identifies the DebugUniform struct.
	AnnotationArgDebug AnnotationArg = "debug"

	// AnnotationArgMaterialStruct identifies the Material struct of the material table.
	AnnotationArgMaterialStruct AnnotationArg = "material"

	// annotationArgVertex identifies the VertexInput struct of the mesh vertex stream.
	annotationArgVertex AnnotationArg = "vertex"

	// annotationArgInstance identifies the generated InstanceInput and Instance structs
	// and load_instance function for the PreProcessor's instance features.
	annotationArgInstance AnnotationArg = "instance"

	// annotationArgVertexOutput identifies the VertexOutput struct shared by the mesh stages.
	annotationArgVertexOutput AnnotationArg = "vertex_output"

	// annotationArgOverlayOutput identifies the OverlayOutput struct of the overlay pass.
	annotationArgOverlayOutput AnnotationArg = "overlay_output"

	// annotationArgBasis identifies the tangent frame helper functions.
	annotationArgBasis AnnotationArg = "basis"

	// annotationArgLighting identifies the lighting functions. They read the frame,
	// environment, material table and texture bindings, which the including shader declares.
	annotationArgLighting AnnotationArg = "lighting"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────

const (
	// AnnotationArgEnvironment identifies the environment provider (cube texture and sampler).
	AnnotationArgEnvironment AnnotationArg = "environment"

	// AnnotationArgMaterial identifies the material texture provider (diffuse and normal maps).
	AnnotationArgMaterial AnnotationArg = "material"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgEnvironmentTexture identifies the environment cube texture binding.
	AnnotationArgEnvironmentTexture AnnotationArg = "environment_texture"

	// AnnotationArgEnvironmentSampler identifies the sampler paired with the environment texture.
	AnnotationArgEnvironmentSampler AnnotationArg = "environment_sampler"

	// AnnotationArgDiffuseTexture identifies a diffuse / base-color texture binding.
	AnnotationArgDiffuseTexture AnnotationArg = "diffuse_texture"

	// AnnotationArgDiffuseSampler identifies the sampler paired with the diffuse texture.
	AnnotationArgDiffuseSampler AnnotationArg = "diffuse_sampler"

	// AnnotationArgNormalTexture identifies a tangent-space normal map texture binding.
	AnnotationArgNormalTexture AnnotationArg = "normal_texture"

	// AnnotationArgNormalSampler identifies the sampler paired with the normal map.
	AnnotationArgNormalSampler AnnotationArg = "normal_sampler"
)

// ── Specialization arguments ───────────────────────────────────────────────────

const (
	// SpecializeDebugMode is the debug visualization baked into a specialized debug pipeline.
	SpecializeDebugMode AnnotationArg = "debug_mode"

	// SpecializeSpecializedDebug selects SpecializeDebugMode over the debug uniform.
	SpecializeSpecializedDebug AnnotationArg = "specialized_debug"

	// SpecializeEdgeOverlay replaces the debug lit output with the edge silhouette.
	SpecializeEdgeOverlay AnnotationArg = "edge_overlay"

	// SpecializeDiffuseTexture samples the diffuse texture as albedo.
	SpecializeDiffuseTexture AnnotationArg = "has_diffuse_texture"

	// SpecializeNormalMap perturbs the normal with the normal map.
	SpecializeNormalMap AnnotationArg = "has_normal_map"

	// SpecializeMaterialSource selects the implicit (0), inline (1) or table (2) material.
	SpecializeMaterialSource AnnotationArg = "material_source"
)

// validSources lists all AnnotationArg values accepted by @oxy:include and as the type
// of @oxy:group annotations. Each must have a registryEntry in the PreProcessor.
var validSources = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgDebug,
	AnnotationArgMaterialStruct,
	annotationArgVertex,
	annotationArgInstance,
	annotationArgVertexOutput,
	annotationArgOverlayOutput,
	annotationArgBasis,
	annotationArgLighting,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @oxy:group annotations.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @oxy:provider annotations.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgEnvironment,
	AnnotationArgMaterial,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @oxy:provider annotations.
var validBindingRoles = []AnnotationArg{
	AnnotationArgEnvironmentTexture,
	AnnotationArgEnvironmentSampler,
	AnnotationArgDiffuseTexture,
	AnnotationArgDiffuseSampler,
	AnnotationArgNormalTexture,
	AnnotationArgNormalSampler,
}

// validSpecializations maps every accepted @oxy:specialize name to its WGSL type.
var validSpecializations = map[AnnotationArg]string{
	SpecializeDebugMode:        "u32",
	SpecializeSpecializedDebug: "bool",
	SpecializeEdgeOverlay:      "bool",
	SpecializeDiffuseTexture:   "bool",
	SpecializeNormalMap:        "bool",
	SpecializeMaterialSource:   "u32",
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validSources, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown source %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			typeArg = strings.TrimSuffix(inner, ">")
		}
		if !slices.Contains(validSources, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeSpecialize):
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy specialize annotation requires exactly three arguments (name, type, default)", lineNum)
		}
		wantType, ok := validSpecializations[AnnotationArg(args[1])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown specialization %q", lineNum, args[1])
		}
		if args[2] != wantType {
			return nil, fmt.Errorf("line %d: specialization %q has type %s, not %s", lineNum, args[1], wantType, args[2])
		}
		if _, err := formatConstant(wantType, args[3]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		return &Annotation{
			Type: AnnotationTypeSpecialize,
			Args: []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(args[2]), AnnotationArg(args[3])},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(group, binding string, lineNum int) (int, int, error) {
	groupInt, err := strconv.Atoi(group)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, group, err)
	}
	bindingInt, err := strconv.Atoi(binding)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %v", lineNum, binding, err)
	}
	return groupInt, bindingInt, nil
}

// formatConstant renders a specialization value as a WGSL literal of the given type.
// The value is either a Go value (bool, uint32, int32, float32, int) or its text.
//
// Parameters:
//   - wgslType: one of bool, u32, i32, f32
//   - value: the value to render
//
// Returns:
//   - string: the WGSL literal
//   - error: an error if the value does not fit the type
func formatConstant(wgslType string, value any) (string, error) {
	text := fmt.Sprint(value)
	switch wgslType {
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return "", fmt.Errorf("invalid bool constant %q", text)
		}
		return strconv.FormatBool(b), nil
	case "u32":
		u, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return "", fmt.Errorf("invalid u32 constant %q", text)
		}
		return strconv.FormatUint(u, 10) + "u", nil
	case "i32":
		i, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return "", fmt.Errorf("invalid i32 constant %q", text)
		}
		return strconv.FormatInt(i, 10) + "i", nil
	case "f32":
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return "", fmt.Errorf("invalid f32 constant %q", text)
		}
		s := strconv.FormatFloat(f, 'f', -1, 32)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	}
	return "", fmt.Errorf("unsupported constant type %q", wgslType)
}
