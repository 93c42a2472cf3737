package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (56 bytes, tightly packed).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Matches the WGSL VertexInput struct (see GPUVertexSource) bound at locations 0-4.
// Size: 56 bytes, no padding.
type GPUVertex struct {
	Position [3]float32 // offset  0: model-space position (location 0)
	Color    [3]float32 // offset 12: per-vertex RGB color (location 1)
	TexCoord [2]float32 // offset 24: UV texture coordinate (location 2)
	Normal   [3]float32 // offset 32: model-space normal (location 3)
	Tangent  [3]float32 // offset 44: model-space tangent, may be zero (location 4)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 56)
	putFloats(buf[0:], g.Position[:]...)
	putFloats(buf[12:], g.Color[:]...)
	putFloats(buf[24:], g.TexCoord[:]...)
	putFloats(buf[32:], g.Normal[:]...)
	putFloats(buf[44:], g.Tangent[:]...)
	return buf
}

// GPUInstanceSize is the byte stride of a full instance record.
const GPUInstanceSize = 224

// GPUInstance is the full per-instance record streamed at instance rate.
// Variants that declare fewer InstanceFeatures read a prefix of the same layout,
// so every field keeps its offset regardless of which fields a variant consumes.
// Size: 224 bytes.
type GPUInstance struct {
	Model       [16]float32 // offset   0: model matrix columns 0-3 (locations 5-8)
	Tint        [3]float32  // offset  64: multiplicative color tint (location 9)
	_pad0       float32     // offset  76
	Translation [3]float32  // offset  80: world-space offset added after the model matrix (location 10)
	_pad1       float32     // offset  92
	UVOffset    [2]float32  // offset  96: texture-coordinate offset (location 11)
	_pad2       [2]float32  // offset 104
	Normal      [3]float32  // offset 112: normal basis column (location 12)
	_pad3       float32     // offset 124
	Tangent     [3]float32  // offset 128: tangent basis column (location 13)
	_pad4       float32     // offset 140
	Bitangent   [3]float32  // offset 144: bitangent basis column, zero means cross(N, T) (location 14)
	_pad5       float32     // offset 156
	Ambient     [3]float32  // offset 160: inline material ambient (location 15)
	_pad6       float32     // offset 172
	Diffuse     [3]float32  // offset 176: inline material diffuse (location 16)
	_pad7       float32     // offset 188
	Specular    [3]float32  // offset 192: inline material specular (location 17)
	_pad8       float32     // offset 204
	Shininess   float32     // offset 208: inline material exponent (location 18)
	MaterialID  uint32      // offset 212: material table index (location 19)
	_pad9       [2]uint32   // offset 216: padding to 224 bytes
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (224)
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the full GPUInstance record. Padding bytes are zero.
//
// Returns:
//   - []byte: 224-byte buffer ready for GPU upload
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, GPUInstanceSize)
	putFloats(buf[0:], g.Model[:]...)
	putFloats(buf[64:], g.Tint[:]...)
	putFloats(buf[80:], g.Translation[:]...)
	putFloats(buf[96:], g.UVOffset[:]...)
	putFloats(buf[112:], g.Normal[:]...)
	putFloats(buf[128:], g.Tangent[:]...)
	putFloats(buf[144:], g.Bitangent[:]...)
	putFloats(buf[160:], g.Ambient[:]...)
	putFloats(buf[176:], g.Diffuse[:]...)
	putFloats(buf[192:], g.Specular[:]...)
	putFloats(buf[208:], g.Shininess)
	binary.LittleEndian.PutUint32(buf[212:], g.MaterialID)
	return buf
}

// MarshalInstances packs instances for a variant that reads the given features.
// Each record is truncated to InstanceStride(features) bytes.
//
// Parameters:
//   - instances: the instance records
//   - features: the instance fields read by the pipeline
//
// Returns:
//   - []byte: the packed instance stream
func MarshalInstances(instances []GPUInstance, features InstanceFeatures) []byte {
	stride := int(InstanceStride(features))
	buf := make([]byte, 0, stride*len(instances))
	for i := range instances {
		buf = append(buf, instances[i].Marshal()[:stride]...)
	}
	return buf
}

// MarshalVertices packs vertices into a tightly packed vertex stream.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: the packed vertex stream
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, 0, 56*len(vertices))
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// MarshalIndices packs 32-bit indices little-endian.
//
// Parameters:
//   - indices: the triangle list indices
//
// Returns:
//   - []byte: the packed index stream
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func putFloats(buf []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
