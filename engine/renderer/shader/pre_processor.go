// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations,
// injected sources or specialization constants, and collects a declarations list that
// the binding schema uses to wire GPU resources without manual string lookups.
//
// The pre-processor maintains two registries:
//   - sourceRegistry: maps AnnotationArg keys to WGSL sources and their resolved type
//     names. Used by @oxy:include (to inject the source) and @oxy:group (to resolve
//     the WGSL type name in the generated declaration).
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
)

// registryEntry pairs a WGSL source string with the WGSL type name used in generated
// @group/@binding declarations. Function snippets have no type and cannot be bound.
type registryEntry struct {
	// Source is the raw WGSL text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations (e.g. "CameraUniform").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	sourceRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// constants holds specialization overrides keyed by name.
	constants map[AnnotationArg]any

	// declarations accumulates annotations of type AnnotationTypeBindingGroup and
	// AnnotationTypeProvider during a Process call.
	declarations []Annotation

	// specializations accumulates the resolved const declarations of a Process call.
	specializations map[AnnotationArg]string
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// replacing them with generated declarations or injected sources while collecting
// a declarations list for downstream resource wiring.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it by replacing
	// @oxy: annotations with their corresponding WGSL output. @oxy:include annotations
	// are replaced with registered source text. @oxy:group annotations are replaced
	// with generated @group/@binding variable declarations. @oxy:specialize annotations
	// become const declarations. @oxy:provider annotations produce no WGSL output but
	// are recorded in the declarations list.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the list of AnnotationTypeBindingGroup and AnnotationTypeProvider
	// annotations collected during the most recent call to Process, in source-order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation

	// Specializations returns the WGSL literal every @oxy:specialize constant resolved to
	// during the most recent call to Process.
	//
	// Returns:
	//   - map[AnnotationArg]string: literals keyed by specialization name
	Specializations() map[AnnotationArg]string
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption is a functional option for configuring a PreProcessor via NewPreProcessor.
type PreProcessorOption func(*preProcessor)

// WithInstanceFeatures is an option builder that selects the instance fields the
// generated "instance" source reads.
//
// Parameters:
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - PreProcessorOption: a function that applies the instance features to a pre-processor
func WithInstanceFeatures(features model.InstanceFeatures) PreProcessorOption {
	return func(p *preProcessor) {
		p.sourceRegistry[annotationArgInstance] = registryEntry{Source: model.InstanceWGSL(features), Type: "InstanceInput"}
	}
}

// WithConstant is an option builder that overrides the value of an @oxy:specialize constant.
//
// Parameters:
//   - name: the specialization name
//   - value: a bool, integer or float matching the constant's declared type
//
// Returns:
//   - PreProcessorOption: a function that applies the override to a pre-processor
func WithConstant(name AnnotationArg, value any) PreProcessorOption {
	return func(p *preProcessor) {
		p.constants[name] = value
	}
}

// NewPreProcessor creates a new PreProcessor with all registered sources and address
// space mappings pre-populated. Without WithInstanceFeatures the "instance" source
// reads the full instance record.
//
// Parameters:
//   - options: functional options for instance features and specialization constants
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		sourceRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:          {Source: light.GPULightSource, Type: "Light"},
			AnnotationArgDebug:          {Source: debug.GPUDebugUniformSource, Type: "DebugUniform"},
			AnnotationArgMaterialStruct: {Source: material.GPUMaterialSource, Type: "Material"},
			annotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			annotationArgInstance:       {Source: model.InstanceWGSL(model.InstanceAll), Type: "InstanceInput"},
			annotationArgVertexOutput:   {Source: vertexOutputSource, Type: "VertexOutput"},
			annotationArgOverlayOutput:  {Source: overlayOutputSource, Type: "OverlayOutput"},
			annotationArgBasis:          {Source: basisSource},
			annotationArgLighting:       {Source: lightingSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		constants: make(map[AnnotationArg]any),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	p.specializations = make(map[AnnotationArg]string)
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.sourceRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			// a second include of the same source would redeclare its structs
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			typeArg := string(a.Args[2])
			inner, isArray := strings.CutPrefix(typeArg, "array<")
			if isArray {
				typeArg = strings.TrimSuffix(inner, ">")
			}
			entry := p.sourceRegistry[AnnotationArg(typeArg)]
			if entry.Type == "" {
				return "", fmt.Errorf("line %d: %q is not a bindable type", i+1, typeArg)
			}
			wgslType := entry.Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeSpecialize:
			name, wgslType := a.Args[0], string(a.Args[1])
			var value any = string(a.Args[2])
			if override, ok := p.constants[name]; ok {
				value = override
			}
			literal, err := formatConstant(wgslType, value)
			if err != nil {
				return "", fmt.Errorf("line %d: specialization %q: %w", i+1, name, err)
			}
			p.specializations[name] = literal
			out = append(out, fmt.Sprintf("const %s: %s = %s;", strings.ToUpper(string(name)), wgslType, literal))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) Specializations() map[AnnotationArg]string {
	return p.specializations
}
