package model

import "github.com/Carmen-Shannon/oxy-shade/common"

// ComputeTangents fills the Tangent of every vertex from the triangle UV gradients.
// Contributions of all triangles sharing a vertex are summed, then orthogonalized
// against the vertex normal. Triangles with a degenerate UV area contribute nothing;
// a vertex left without a tangent gets an arbitrary one perpendicular to its normal.
// The bitangent is not stored: shading derives it as cross(N, T).
//
// Parameters:
//   - vertices: the mesh vertices, modified in place
//   - indices: the triangle list indices, or nil for a non-indexed triangle list
func ComputeTangents(vertices []GPUVertex, indices []uint32) {
	acc := make([]common.Vec3, len(vertices))

	accum := func(i0, i1, i2 uint32) {
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := common.Vec3(v1.Position).Sub(v0.Position)
		e2 := common.Vec3(v2.Position).Sub(v0.Position)

		du1 := v1.TexCoord[0] - v0.TexCoord[0]
		dv1 := v1.TexCoord[1] - v0.TexCoord[1]
		du2 := v2.TexCoord[0] - v0.TexCoord[0]
		dv2 := v2.TexCoord[1] - v0.TexCoord[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		r := 1 / denom
		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))

		acc[i0] = acc[i0].Add(t)
		acc[i1] = acc[i1].Add(t)
		acc[i2] = acc[i2].Add(t)
	}

	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			accum(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(vertices); i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	for i := range vertices {
		n := common.Vec3(vertices[i].Normal)
		t := acc[i].Sub(n.Scale(n.Dot(acc[i])))
		if t.LengthSquared() < 1e-8 {
			t = common.AnyPerpendicular(n)
		}
		vertices[i].Tangent = t.Normalize()
	}
}
