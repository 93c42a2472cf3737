package shading

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

// EnvironmentWeight scales the environment reflection of surfaces lit with the implicit material.
const EnvironmentWeight = 0.05

// Resources are the textures and tables of bind groups 1 to 3. Nil entries are unbound.
type Resources struct {
	Environment environment.Sampler
	Materials   *material.Table
	Diffuse     *texture.Texture
	Normal      *texture.Texture
}

// Basis is an orthonormal shading frame.
type Basis struct {
	Tangent, Bitangent, Normal common.Vec3
}

// GramSchmidt removes the normal component from t and normalizes the rest.
//
// Parameters:
//   - t: the tangent
//   - n: the unit normal
//
// Returns:
//   - common.Vec3: a unit tangent orthogonal to n
func GramSchmidt(t, n common.Vec3) common.Vec3 {
	return t.Sub(n.Scale(t.Dot(n))).Normalize()
}

// ShadingBasis orthonormalizes an interpolated frame: N is normalized, T is made
// orthogonal to N, and B = cross(N, T).
//
// Parameters:
//   - normal, tangent: the interpolated world-space vectors
//
// Returns:
//   - Basis: the orthonormal frame
func ShadingBasis(normal, tangent common.Vec3) Basis {
	n := normal.Normalize()
	t := GramSchmidt(tangent, n)
	return Basis{Tangent: t, Bitangent: n.Cross(t), Normal: n}
}

// DecodeNormal maps a normal map texel from [0,1] to [-1,1].
func DecodeNormal(texel common.Vec3) common.Vec3 {
	return texel.Scale(2).Sub(common.Vec3{1, 1, 1})
}

// Perturb transforms a tangent-space normal through the TBN matrix and normalizes it.
//
// Parameters:
//   - tangentSpace: the decoded normal map value
//
// Returns:
//   - common.Vec3: the unit world-space normal
func (b Basis) Perturb(tangentSpace common.Vec3) common.Vec3 {
	return common.Mat3FromColumns(b.Tangent, b.Bitangent, b.Normal).MulVec3(tangentSpace).Normalize()
}

// Lighting is the split Blinn-Phong response of one light.
type Lighting struct {
	Diffuse, Specular common.Vec3
}

// BlinnPhong evaluates the diffuse and specular terms at a surface point. Dot products
// are clamped to zero; colors are linear with no tone mapping.
//
// Parameters:
//   - n: the unit shading normal
//   - p: the world-space position
//   - viewPos: the camera position
//   - l: the light uniform
//   - m: the material coefficients
//
// Returns:
//   - Lighting: the diffuse and specular contributions
func BlinnPhong(n, p, viewPos common.Vec3, l light.GPULight, m material.GPUMaterial) Lighting {
	lightColor := common.Vec3(l.Color)
	ld := common.Vec3(l.Position).Sub(p).Normalize()
	vd := viewPos.Sub(p).Normalize()
	h := vd.Add(ld).Normalize()

	diff := max(n.Dot(ld), 0)
	spec := math32.Pow(max(n.Dot(h), 0), m.Shininess)
	return Lighting{
		Diffuse:  common.Vec3(m.Diffuse).Scale(diff).Mul(lightColor),
		Specular: common.Vec3(m.Specular).Scale(spec).Mul(lightColor),
	}
}

// ResolveMaterial picks the coefficients of a fragment by material source. An empty or
// unbound table resolves to the implicit material, the row Table.Marshal uploads for it.
// Otherwise the lookup does no range check; an id beyond the table panics.
//
// Parameters:
//   - src: the variant's material source
//   - out: the interpolated vertex output
//   - table: the bound material table
//
// Returns:
//   - material.GPUMaterial: the coefficients
func ResolveMaterial(src MaterialSource, out VertexOutput, table *material.Table) material.GPUMaterial {
	switch src {
	case MaterialTable:
		if table.Len() == 0 {
			return material.Implicit()
		}
		return table.Lookup(out.MaterialID)
	case MaterialInline:
		return out.Material
	}
	return material.Implicit()
}

// EnvironmentReflection samples the environment along reflect(-V, N). Surfaces lit with
// the implicit material reflect EnvironmentWeight of it, others their ambient color.
//
// Parameters:
//   - env: the environment, nil for black
//   - n: the unit shading normal
//   - v: the unit direction from the surface to the eye
//   - src: the variant's material source
//   - m: the resolved material
//
// Returns:
//   - common.Vec3: the weighted reflection
func EnvironmentReflection(env environment.Sampler, n, v common.Vec3, src MaterialSource, m material.GPUMaterial) common.Vec3 {
	if env == nil {
		return common.Vec3{}
	}
	weight := common.Vec3(m.Ambient)
	if src == MaterialImplicit {
		weight = common.Vec3{EnvironmentWeight, EnvironmentWeight, EnvironmentWeight}
	}
	return env.Sample(common.Reflect(v.Neg(), n)).Mul(weight)
}

// SurfaceBasis returns the shading frame of a fragment and its final normal, perturbed
// by the normal map when the variant samples one and it is bound.
func SurfaceBasis(v Variant, res Resources, frag Fragment) (Basis, common.Vec3) {
	basis := ShadingBasis(frag.Normal, frag.Tangent)
	n := basis.Normal
	if v.Features.Has(FeatureNormalMap) && res.Normal != nil {
		texel := res.Normal.Sample(frag.UV, texture.AddressRepeat).XYZ()
		n = basis.Perturb(DecodeNormal(texel))
	}
	return basis, n
}

// Lit evaluates the lit color of a fragment: Blinn-Phong with one point light, the
// albedo of the diffuse texture or the vertex color, and an environment reflection.
//
// Parameters:
//   - v: the variant
//   - frame: the frame uniforms
//   - res: the bound resources
//   - frag: the fragment
//
// Returns:
//   - common.Vec4: linear RGBA
func Lit(v Variant, frame Frame, res Resources, frag Fragment) common.Vec4 {
	_, n := SurfaceBasis(v, res, frag)
	src := v.MaterialSource()
	m := ResolveMaterial(src, frag.VertexOutput, res.Materials)

	albedo := frag.Color.Vec4(1)
	if v.Features.Has(FeatureDiffuseTexture) && res.Diffuse != nil {
		s := res.Diffuse.Sample(frag.UV, texture.AddressRepeat)
		albedo = s.XYZ().Mul(frag.Tint).Vec4(s[3])
	}

	l := BlinnPhong(n, frag.WorldPos, frag.ViewPos, frame.Light, m)
	rgb := l.Diffuse.Add(l.Specular).Mul(albedo.XYZ())

	view := frag.ViewPos.Sub(frag.WorldPos).Normalize()
	rgb = rgb.Add(EnvironmentReflection(res.Environment, n, view, src, m))
	return rgb.Vec4(albedo[3])
}
