package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialSource is the canonical WGSL definition of the Material struct.
// Matches GPUMaterial layout exactly (48 bytes, std430 aligned).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterial is one row of the material table storage buffer.
// Matches the WGSL Material struct layout exactly (see GPUMaterialSource).
// Size: 48 bytes.
type GPUMaterial struct {
	Ambient   [3]float32 // offset  0: ambient reflection color, also the environment reflection weight
	_pad0     float32    // offset 12
	Diffuse   [3]float32 // offset 16: diffuse reflection color
	_pad1     float32    // offset 28
	Specular  [3]float32 // offset 32: specular reflection color
	Shininess float32    // offset 44: Blinn-Phong exponent, packed into the vec3 tail
}

// Implicit returns the material used when a variant has no material source.
//
// Returns:
//   - GPUMaterial: shininess 32, white diffuse and specular, no ambient
func Implicit() GPUMaterial {
	return GPUMaterial{
		Diffuse:   [3]float32{1, 1, 1},
		Specular:  [3]float32{1, 1, 1},
		Shininess: 32,
	}
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (48)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 48)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Ambient[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Diffuse[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Specular[i]))
	}
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.Shininess))
	return buf
}
