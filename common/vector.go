package common

import (
	"github.com/chewxy/math32"
)

// Vec2 is a two-component float32 vector matching WGSL vec2<f32>.
type Vec2 [2]float32

// Vec3 is a three-component float32 vector matching WGSL vec3<f32>.
type Vec3 [3]float32

// Vec4 is a four-component float32 vector matching WGSL vec4<f32>.
type Vec4 [4]float32

// Mat3 is a 3x3 float32 matrix stored in column-major order, matching WGSL mat3x3<f32>
// without the per-column padding.
type Mat3 [9]float32

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v[0] * s, v[1] * s} }

// Length returns the euclidean length of v.
func (v Vec2) Length() float32 { return math32.Sqrt(v[0]*v[0] + v[1]*v[1]) }

// Distance returns the euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float32 { return v.Sub(o).Length() }

// Fract returns the fractional part of each component, x - floor(x).
func (v Vec2) Fract() Vec2 { return Vec2{Fract(v[0]), Fract(v[1])} }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Mul returns the component-wise product of v and o.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v[0], -v[1], -v[2]} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// LengthSquared returns the squared euclidean length of v.
func (v Vec3) LengthSquared() float32 { return v.Dot(v) }

// Length returns the euclidean length of v.
func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. A zero vector yields NaN components,
// the same as WGSL normalize.
func (v Vec3) Normalize() Vec3 {
	return v.Scale(1 / v.Length())
}

// Abs returns the component-wise absolute value of v.
func (v Vec3) Abs() Vec3 { return Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])} }

// Sum returns the sum of all components.
func (v Vec3) Sum() float32 { return v[0] + v[1] + v[2] }

// Mix linearly interpolates between v and o as v*(1-t) + o*t.
// The two-product form returns exactly o when t is 1.
func (v Vec3) Mix(o Vec3, t float32) Vec3 {
	return Vec3{
		Mix(v[0], o[0], t),
		Mix(v[1], o[1], t),
		Mix(v[2], o[2], t),
	}
}

// Reflect reflects the incident vector i about the unit normal n, i - 2*dot(n,i)*n.
func Reflect(i, n Vec3) Vec3 {
	return i.Sub(n.Scale(2 * n.Dot(i)))
}

// Vec4 extends v with the given w component.
func (v Vec3) Vec4(w float32) Vec4 { return Vec4{v[0], v[1], v[2], w} }

// XYZ returns the first three components of v.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Add returns v + o.
func (v Vec4) Add(o Vec4) Vec4 { return Vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]} }

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 { return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s} }

// MulVec3 multiplies the column-major matrix m by v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

// Mat3FromColumns builds a column-major matrix from three column vectors.
func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{c0[0], c0[1], c0[2], c1[0], c1[1], c1[2], c2[0], c2[1], c2[2]}
}

// Column returns column i of m.
func (m Mat3) Column(i int) Vec3 { return Vec3{m[i*3], m[i*3+1], m[i*3+2]} }

// Transpose returns the transpose of m.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns the determinant of m.
func (m Mat3) Determinant() float32 {
	return m.Column(0).Dot(m.Column(1).Cross(m.Column(2)))
}

// Inverse returns the inverse of m using the adjugate. The second return is false
// when m is singular, in which case the zero matrix is returned.
//
// Returns:
//   - Mat3: the inverse matrix
//   - bool: false if the determinant is zero
func (m Mat3) Inverse() (Mat3, bool) {
	c0, c1, c2 := m.Column(0), m.Column(1), m.Column(2)
	det := c0.Dot(c1.Cross(c2))
	if det == 0 {
		return Mat3{}, false
	}
	// rows of the inverse are the cross products of the columns
	r0 := c1.Cross(c2).Scale(1 / det)
	r1 := c2.Cross(c0).Scale(1 / det)
	r2 := c0.Cross(c1).Scale(1 / det)
	return Mat3FromColumns(r0, r1, r2).Transpose(), true
}

// Fract returns x - floor(x), matching WGSL fract.
func Fract(x float32) float32 {
	return x - math32.Floor(x)
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	return math32.Min(math32.Max(x, lo), hi)
}

// Mix linearly interpolates between a and b as a*(1-t) + b*t, matching WGSL mix.
func Mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// Smoothstep returns the Hermite interpolation between 0 and 1 of x over the edge
// range [edge0, edge1], matching WGSL smoothstep.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// AnyPerpendicular returns a unit vector perpendicular to the unit vector n.
func AnyPerpendicular(n Vec3) Vec3 {
	axis := Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = Vec3{0, 1, 0}
	}
	return axis.Sub(n.Scale(axis.Dot(n))).Normalize()
}
