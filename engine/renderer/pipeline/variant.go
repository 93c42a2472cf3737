package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

// Specialization returns the pre-processor constants that bake a variant into the
// fragment shaders. Constants a shader does not declare are ignored.
//
// Parameters:
//   - v: the shading variant
//
// Returns:
//   - []shader.PreProcessorOption: one WithConstant option per specialization
func Specialization(v shading.Variant) []shader.PreProcessorOption {
	return []shader.PreProcessorOption{
		shader.WithConstant(shader.SpecializeDiffuseTexture, v.Features.Has(shading.FeatureDiffuseTexture)),
		shader.WithConstant(shader.SpecializeNormalMap, v.Features.Has(shading.FeatureNormalMap)),
		shader.WithConstant(shader.SpecializeMaterialSource, uint32(v.MaterialSource())),
		shader.WithConstant(shader.SpecializeEdgeOverlay, v.Features.Has(shading.FeatureEdgeOverlay)),
		shader.WithConstant(shader.SpecializeSpecializedDebug, v.Specialized),
		shader.WithConstant(shader.SpecializeDebugMode, uint32(v.DebugMode)),
	}
}

// ForVariant assembles the pipeline of a shading variant from a shader library: the
// vertex and fragment shader pair with the variant's specialization, the vertex and
// instance buffer layouts, and the default binding schema. Both shaders are compiled
// and checked against the schema before the pipeline is returned.
//
// Parameters:
//   - lib: the shader library to load from
//   - v: the shading variant
//   - opts: additional builder options, applied after the variant defaults
//
// Returns:
//   - Pipeline: the validated pipeline, keyed by v.Key()
//   - error: an error if the variant is invalid or a shader fails to build
func ForVariant(lib *shader.Library, v shading.Variant, opts ...PipelineBuilderOption) (Pipeline, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	key := v.Key()

	var base []PipelineBuilderOption
	if v.Mode == shading.ModeOverlay {
		vs, err := lib.Load(key+"/vs", shader.OverlayVertex)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", key, err)
		}
		fs, err := lib.Load(key+"/fs", shader.OverlayFragment)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", key, err)
		}
		base = []PipelineBuilderOption{
			WithVertexShader(vs),
			WithFragmentShader(fs),
			WithVertexLayouts(),
			WithDepthTestEnabled(false),
			WithDepthWriteEnabled(false),
			WithCullMode(wgpu.CullModeNone),
		}
	} else {
		features := v.InstanceFeatures()
		vs, err := lib.Load(key+"/vs", shader.InstancedVertex, shader.WithInstanceFeatures(features))
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", key, err)
		}
		fragment := shader.LitFragment
		if v.Mode == shading.ModeDebug {
			fragment = shader.DebugFragment
		}
		fs, err := lib.Load(key+"/fs", fragment, Specialization(v)...)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", key, err)
		}
		base = []PipelineBuilderOption{
			WithVertexShader(vs),
			WithFragmentShader(fs),
			WithVertexLayouts(model.VertexLayout(), model.InstanceLayout(features)),
		}
	}
	base = append(base, WithVariant(v))

	p := NewPipeline(key, append(base, opts...)...)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	common.Logger().Debug("pipeline assembled", "key", key, "vertex_buffers", len(p.VertexLayouts()))
	return p, nil
}
