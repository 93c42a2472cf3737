package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// CompileSPIRV compiles processed WGSL to SPIR-V words.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - []uint32: the SPIR-V module as little-endian words
//   - error: the compiler error if the source is not valid WGSL
func CompileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to compile: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shader: spir-v length %d is not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// Validate reports whether a built shader's processed source compiles.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - error: the compiler error wrapped with the shader key, or nil
func Validate(s Shader) error {
	if _, err := naga.Compile(s.Source()); err != nil {
		return fmt.Errorf("shader: %s: %w", s.Key(), err)
	}
	return nil
}
