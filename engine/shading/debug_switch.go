package shading

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
)

// Magenta is the fallback written for debug modes outside the defined range.
var Magenta = common.Vec4{1, 0, 1, 1}

// EdgeThreshold is the summed normal derivative above which the edge overlay paints black.
const EdgeThreshold = 0.2

// MaterialIDColor maps a material index onto a red-to-green ramp over ids 0 to 16.
func MaterialIDColor(id uint32) common.Vec3 {
	m := float32(id) / 16
	return common.Vec3{m, 1 - m, 0.3 + 0.7*m}
}

// EdgeColor paints a black silhouette where the screen-space change of the normal is
// large, and white elsewhere.
//
// Parameters:
//   - dNdx, dNdy: the screen-space derivatives of the normal
//
// Returns:
//   - common.Vec4: black or white, opaque
func EdgeColor(dNdx, dNdy common.Vec3) common.Vec4 {
	if dNdx.Abs().Sum()+dNdy.Abs().Sum() > EdgeThreshold {
		return common.Vec4{0, 0, 0, 1}
	}
	return common.Vec4{1, 1, 1, 1}
}

// Remap maps a unit vector from [-1,1] to [0,1] per component.
func Remap(v common.Vec3) common.Vec3 {
	return v.Scale(0.5).Add(common.Vec3{0.5, 0.5, 0.5})
}

// DebugColor runs the debug visualization switch. Modes outside the enumeration
// write Magenta. The lit callback is only invoked for debug.ModeLit.
//
// Parameters:
//   - mode: the visualization
//   - edges: whether the variant replaces the lit output with the edge overlay
//   - frame: the frame uniforms, for the clip planes
//   - basis: the orthonormal shading frame of the fragment
//   - n: the final shading normal
//   - frag: the fragment
//   - lit: evaluates the lit color
//
// Returns:
//   - common.Vec4: the visualization color
func DebugColor(mode debug.Mode, edges bool, frame Frame, basis Basis, n common.Vec3, frag Fragment, lit func() common.Vec4) common.Vec4 {
	switch mode {
	case debug.ModeLit:
		if edges {
			return EdgeColor(frag.NormalDx, frag.NormalDy)
		}
		return lit()
	case debug.ModeNormal:
		return Remap(n).Vec4(1)
	case debug.ModeTangent:
		return Remap(basis.Tangent).Vec4(1)
	case debug.ModeView:
		return Remap(frag.ViewPos.Sub(frag.WorldPos).Normalize()).Vec4(1)
	case debug.ModeDepth:
		d := debug.LinearizeDepth(debug.SignedNDCDepth(frag.Depth), frame.Debug.Near, frame.Debug.Far)
		return common.Vec4{d, d, d, 1}
	case debug.ModeUV:
		f := frag.UV.Fract()
		return common.Vec4{f[0], f[1], 0, 1}
	case debug.ModeMaterialID:
		return MaterialIDColor(frag.MaterialID).Vec4(1)
	}
	return Magenta
}
