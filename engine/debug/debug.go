// Package debug holds the diagnostic visualization state shared by the debug shading
// stage: the selected mode and the camera clip planes needed to linearize depth.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects what the debug shading stage writes for each fragment.
type Mode uint32

const (
	// ModeLit writes the regular lit color, or a black and white silhouette in
	// edge-overlay pipelines.
	ModeLit Mode = iota
	// ModeNormal writes the shading normal remapped from [-1, 1] to [0, 1].
	ModeNormal
	// ModeTangent writes the orthonormalized tangent remapped to [0, 1].
	ModeTangent
	// ModeView writes the direction from the fragment to the camera remapped to [0, 1].
	ModeView
	// ModeDepth writes linear eye-space depth normalized between the clip planes.
	ModeDepth
	// ModeUV writes the fractional texture coordinates as red and green.
	ModeUV
	// ModeMaterialID writes a pseudo-color ramp keyed on the material index.
	ModeMaterialID
)

// ModeCount is the number of defined modes. Values at or above it render the fallback color.
const ModeCount = 7

var modeNames = [ModeCount]string{
	"lit",
	"normal",
	"tangent",
	"view",
	"depth",
	"uv",
	"material_id",
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m < ModeCount
}

// Next returns the mode that follows m in cycling order, wrapping from the last
// defined mode (and any undefined value) back to ModeLit.
//
// Returns:
//   - Mode: the next mode
func (m Mode) Next() Mode {
	if m+1 >= ModeCount {
		return ModeLit
	}
	return m + 1
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return "mode(" + strconv.FormatUint(uint64(m), 10) + ")"
}

// ParseMode resolves a mode from its name or its decimal value. Undefined numeric
// values are accepted and render the fallback color.
//
// Parameters:
//   - s: a mode name such as "depth", or a number such as "4"
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error if s is neither a known name nor a number
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("debug: unknown mode %q", s)
	}
	return Mode(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so modes can be written by name in config files.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the host-side debug configuration for a frame.
type State struct {
	Mode Mode
	Near float32
	Far  float32
}

// Uniform converts the state to its GPU layout.
//
// Returns:
//   - GPUDebugUniform: the uniform block
func (s State) Uniform() GPUDebugUniform {
	return GPUDebugUniform{Mode: s.Mode, Near: s.Near, Far: s.Far}
}
