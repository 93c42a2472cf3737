package model

// gray is the vertex color of the built-in primitives.
var gray = [3]float32{0.8, 0.8, 0.8}

// Quad generates a unit quad in the XZ plane facing +Y, centered on the origin.
// UVs span [0,1] and tangents point along +X.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - []GPUVertex: the four corner vertices
//   - []uint32: two counter-clockwise triangles
func Quad(size float32) ([]GPUVertex, []uint32) {
	h := size / 2
	up := [3]float32{0, 1, 0}
	tan := [3]float32{1, 0, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-h, 0, h}, Color: gray, TexCoord: [2]float32{0, 1}, Normal: up, Tangent: tan},
		{Position: [3]float32{h, 0, h}, Color: gray, TexCoord: [2]float32{1, 1}, Normal: up, Tangent: tan},
		{Position: [3]float32{h, 0, -h}, Color: gray, TexCoord: [2]float32{1, 0}, Normal: up, Tangent: tan},
		{Position: [3]float32{-h, 0, -h}, Color: gray, TexCoord: [2]float32{0, 0}, Normal: up, Tangent: tan},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// cubeFace describes one face of Cube by its outward normal and in-plane axes.
type cubeFace struct {
	normal, u, v [3]float32
}

var cubeFaces = []cubeFace{
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
}

// Cube generates an axis-aligned cube centered on the origin with flat-shaded faces.
// Each face has its own four vertices so normals and tangents stay per face.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - []GPUVertex: 24 vertices
//   - []uint32: 12 counter-clockwise triangles
func Cube(size float32) ([]GPUVertex, []uint32) {
	h := size / 2
	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range cubeFaces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for k := range 3 {
				p[k] = (f.normal[k] + c[0]*f.u[k] + c[1]*f.v[k]) * h
			}
			vertices = append(vertices, GPUVertex{
				Position: p,
				Color:    gray,
				TexCoord: [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
				Normal:   f.normal,
				Tangent:  f.u,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
