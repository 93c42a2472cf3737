package software

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

// triangle is a clipped, projected triangle ready for scan conversion.
type triangle struct {
	v          [3]shading.VertexOutput
	sx, sy, z  [3]float32
	invW       [3]float32
	area       float32
	minX, maxX int
	minY, maxY int
}

// clipNear clips a clip-space polygon against the z >= 0 plane of a [0,1] depth range.
func clipNear(poly []shading.VertexOutput) []shading.VertexOutput {
	out := make([]shading.VertexOutput, 0, len(poly)+1)
	for i, cur := range poly {
		next := poly[(i+1)%len(poly)]
		dc, dn := cur.Clip[2], next.Clip[2]
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, shading.Lerp(cur, next, dc/(dc-dn)))
		}
	}
	return out
}

// toScreen maps NDC to pixel coordinates with y pointing down.
func toScreen(ndc common.Vec2, width, height int) (float32, float32) {
	return (ndc[0]*0.5 + 0.5) * float32(width), (0.5 - ndc[1]*0.5) * float32(height)
}

// pixelNDC returns the NDC position of the center of pixel (x, y).
func pixelNDC(x, y, width, height int) common.Vec2 {
	return common.Vec2{
		(float32(x)+0.5)/float32(width)*2 - 1,
		1 - (float32(y)+0.5)/float32(height)*2,
	}
}

// setup clips one triangle and returns the projected pieces that cover any pixel.
func setup(a, b, c shading.VertexOutput, width, height int) []triangle {
	poly := clipNear([]shading.VertexOutput{a, b, c})
	if len(poly) < 3 {
		return nil
	}
	var tris []triangle
	for i := 1; i+1 < len(poly); i++ {
		if t, ok := project(poly[0], poly[i], poly[i+1], width, height); ok {
			tris = append(tris, t)
		}
	}
	return tris
}

func project(a, b, c shading.VertexOutput, width, height int) (triangle, bool) {
	t := triangle{v: [3]shading.VertexOutput{a, b, c}}
	for i, v := range t.v {
		w := v.Clip[3]
		if w <= 0 {
			return triangle{}, false
		}
		t.invW[i] = 1 / w
		t.sx[i], t.sy[i] = toScreen(common.Vec2{v.Clip[0] / w, v.Clip[1] / w}, width, height)
		t.z[i] = v.Clip[2] / w
	}
	t.area = edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], t.sx[2], t.sy[2])
	if t.area == 0 || math32.IsNaN(t.area) {
		return triangle{}, false
	}

	t.minX = max(0, int(math32.Floor(min(t.sx[0], t.sx[1], t.sx[2]))))
	t.maxX = min(width-1, int(math32.Ceil(max(t.sx[0], t.sx[1], t.sx[2]))))
	t.minY = max(0, int(math32.Floor(min(t.sy[0], t.sy[1], t.sy[2]))))
	t.maxY = min(height-1, int(math32.Ceil(max(t.sy[0], t.sy[1], t.sy[2]))))
	if t.minX > t.maxX || t.minY > t.maxY {
		return triangle{}, false
	}
	return t, true
}

// edge is the signed area of the parallelogram spanned by (b - a) and (p - a).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}

// screenWeights returns the screen-space barycentric weights of p. They are all
// non-negative inside the triangle whatever its winding.
func (t *triangle) screenWeights(px, py float32) (float32, float32, float32) {
	w0 := edge(t.sx[1], t.sy[1], t.sx[2], t.sy[2], px, py) / t.area
	w1 := edge(t.sx[2], t.sy[2], t.sx[0], t.sy[0], px, py) / t.area
	return w0, w1, 1 - w0 - w1
}

// perspective corrects screen-space weights with the per-vertex 1/w.
func (t *triangle) perspective(w0, w1, w2 float32) (float32, float32, float32) {
	p0, p1, p2 := w0*t.invW[0], w1*t.invW[1], w2*t.invW[2]
	sum := p0 + p1 + p2
	return p0 / sum, p1 / sum, p2 / sum
}

// normalAt interpolates the perspective-correct normal at p. Points outside the
// triangle extrapolate the same plane, which is what a 2x2 quad derivative sees.
func (t *triangle) normalAt(px, py float32) common.Vec3 {
	p0, p1, p2 := t.perspective(t.screenWeights(px, py))
	return t.v[0].Normal.Scale(p0).Add(t.v[1].Normal.Scale(p1)).Add(t.v[2].Normal.Scale(p2))
}

// blend applies src-alpha over blending to dst.
func blend(src, dst common.Vec4) common.Vec4 {
	a := src[3]
	return common.Vec4{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		a + dst[3]*(1-a),
	}
}
