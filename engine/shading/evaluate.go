package shading

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
)

// Fragment is one rasterized sample: the interpolated vertex output plus what the
// rasterizer knows about the pixel.
type Fragment struct {
	VertexOutput
	// Depth is the post-divide clip depth in [0,1].
	Depth float32
	// NormalDx and NormalDy are the screen-space derivatives of the interpolated normal.
	NormalDx, NormalDy common.Vec3
}

// Evaluate dispatches a fragment to the evaluator of its variant. Overlay variants
// are evaluated per pixel with OverlayColor and return Magenta here.
//
// Parameters:
//   - v: the pipeline variant
//   - frame: the frame uniforms
//   - res: the bound resources
//   - frag: the fragment
//
// Returns:
//   - common.Vec4: linear RGBA
func Evaluate(v Variant, frame Frame, res Resources, frag Fragment) common.Vec4 {
	switch v.Mode {
	case ModeColor, ModeTextured, ModeNormalMapped, ModeMaterial:
		return Lit(v, frame, res, frag)
	case ModeDebug:
		mode := frame.Debug.Mode
		if v.Specialized {
			mode = v.DebugMode
		}
		basis, n := SurfaceBasis(v, res, frag)
		return DebugColor(mode, v.Features.Has(FeatureEdgeOverlay), frame, basis, n, frag, func() common.Vec4 {
			return Lit(v, frame, res, frag)
		})
	}
	return Magenta
}
