// Package environment provides the environment lookups used for reflections and
// the overlay background: cube maps, procedural gradients and constant colors.
package environment

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

// Sampler returns the environment radiance seen along a world-space direction.
// Implementations are pure and safe for concurrent use. The direction need not be
// normalized; only its orientation matters.
type Sampler interface {
	Sample(dir common.Vec3) common.Vec3
}

// Face identifies one layer of a cube texture, in WebGPU layer order.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// FaceCount is the number of layers of a cube texture.
const FaceCount = 6

func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+x"
	case FaceNegX:
		return "-x"
	case FacePosY:
		return "+y"
	case FaceNegY:
		return "-y"
	case FacePosZ:
		return "+z"
	case FaceNegZ:
		return "-z"
	}
	return "invalid"
}

// FaceUV selects the cube face a direction hits and the coordinate within it, using
// the major-axis rule of WebGPU cube sampling. Ties prefer x over y over z.
//
// Parameters:
//   - dir: the lookup direction, non-zero
//
// Returns:
//   - Face: the selected face
//   - common.Vec2: the face coordinate in [0,1], v = 0 at the top row
func FaceUV(dir common.Vec3) (Face, common.Vec2) {
	a := dir.Abs()
	var face Face
	var sc, tc, ma float32
	switch {
	case a[0] >= a[1] && a[0] >= a[2]:
		ma = a[0]
		if dir[0] > 0 {
			face, sc, tc = FacePosX, -dir[2], -dir[1]
		} else {
			face, sc, tc = FaceNegX, dir[2], -dir[1]
		}
	case a[1] >= a[2]:
		ma = a[1]
		if dir[1] > 0 {
			face, sc, tc = FacePosY, dir[0], dir[2]
		} else {
			face, sc, tc = FaceNegY, dir[0], -dir[2]
		}
	default:
		ma = a[2]
		if dir[2] > 0 {
			face, sc, tc = FacePosZ, dir[0], -dir[1]
		} else {
			face, sc, tc = FaceNegZ, -dir[0], -dir[1]
		}
	}
	return face, common.Vec2{(sc/ma + 1) / 2, (tc/ma + 1) / 2}
}

// FaceDirection is the inverse of FaceUV: the unnormalized direction through a
// coordinate of a face.
//
// Parameters:
//   - face: the cube face
//   - uv: the face coordinate in [0,1]
//
// Returns:
//   - common.Vec3: a direction on the unit cube
func FaceDirection(face Face, uv common.Vec2) common.Vec3 {
	a := uv[0]*2 - 1
	b := uv[1]*2 - 1
	switch face {
	case FacePosX:
		return common.Vec3{1, -b, -a}
	case FaceNegX:
		return common.Vec3{-1, -b, a}
	case FacePosY:
		return common.Vec3{a, 1, b}
	case FaceNegY:
		return common.Vec3{a, -1, -b}
	case FacePosZ:
		return common.Vec3{a, -b, 1}
	default:
		return common.Vec3{-a, -b, -1}
	}
}

// Cubemap is a six-face environment map with square faces of equal size.
type Cubemap struct {
	Faces [FaceCount]*texture.Texture
}

var _ Sampler = &Cubemap{}

// NewCubemap allocates a black cube map.
//
// Parameters:
//   - size: the edge length of each face in texels
//
// Returns:
//   - *Cubemap: the cube map
func NewCubemap(size int) *Cubemap {
	c := &Cubemap{}
	for i := range c.Faces {
		c.Faces[i] = texture.New(size, size)
	}
	return c
}

// Size returns the face edge length in texels.
func (c *Cubemap) Size() int {
	return c.Faces[0].Width
}

// Sample filters bilinearly within the selected face with clamp-to-edge addressing.
func (c *Cubemap) Sample(dir common.Vec3) common.Vec3 {
	face, uv := FaceUV(dir)
	return c.Faces[face].Sample(uv, texture.AddressClamp).XYZ()
}

// Faces returns the cube map as RGBA8 staging data with six layers in face order,
// ready for a cube texture upload.
//
// Parameters:
//   - cube: the cube map
//
// Returns:
//   - common.TextureStagingData: the layered upload data
func Faces(cube *Cubemap) common.TextureStagingData {
	size := cube.Size()
	out := common.TextureStagingData{Width: uint32(size), Height: uint32(size), Layers: FaceCount}
	for _, f := range cube.Faces {
		out.Pixels = append(out.Pixels, f.Staging().Pixels...)
	}
	return out
}

// Gradient is a procedural sky: Horizon at the horizon blending to Zenith straight up
// and to Ground straight down.
type Gradient struct {
	Zenith, Horizon, Ground common.Vec3
}

var _ Sampler = Gradient{}

// DefaultGradient is a pale daylight sky over a dark ground.
func DefaultGradient() Gradient {
	return Gradient{
		Zenith:  common.Vec3{0.25, 0.45, 0.85},
		Horizon: common.Vec3{0.8, 0.85, 0.9},
		Ground:  common.Vec3{0.2, 0.18, 0.15},
	}
}

func (g Gradient) Sample(dir common.Vec3) common.Vec3 {
	y := dir.Normalize()[1]
	if y >= 0 {
		return g.Horizon.Mix(g.Zenith, math32.Sqrt(y))
	}
	return g.Horizon.Mix(g.Ground, math32.Sqrt(-y))
}

// Constant is an environment of a single color in every direction.
type Constant common.Vec3

var _ Sampler = Constant{}

func (c Constant) Sample(common.Vec3) common.Vec3 {
	return common.Vec3(c)
}
