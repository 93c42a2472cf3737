package debug

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUDebugUniformSource is the canonical WGSL definition of the DebugUniform struct.
// Matches GPUDebugUniform layout exactly (48 bytes).
//
//go:embed assets/debug_uniform.wgsl
var GPUDebugUniformSource string

// GPUDebugUniformSize is the byte size of the DebugUniform block.
const GPUDebugUniformSize = 48

// GPUDebugUniform is the GPU-aligned representation of the debug visualization state.
// Each scalar occupies the first word of its own 16-byte row.
//
//	offset  0: mode (u32), 4..15 padding
//	offset 16: near (f32), 20..31 padding
//	offset 32: far  (f32), 36..47 padding
type GPUDebugUniform struct {
	Mode Mode
	Near float32
	Far  float32
}

// Size returns the size of the GPUDebugUniform block in bytes.
//
// Returns:
//   - int: the block size in bytes (48)
func (g *GPUDebugUniform) Size() int {
	return GPUDebugUniformSize
}

// Marshal serializes the GPUDebugUniform into a byte buffer suitable for GPU upload.
// Padding words are written as zero.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUDebugUniform) Marshal() []byte {
	buf := make([]byte, GPUDebugUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(g.Mode))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Near))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Far))
	return buf
}
