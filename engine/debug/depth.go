package debug

// LinearizeDepth converts a perspective NDC depth in [-1, 1] back to eye-space distance
// and normalizes it between the clip planes, so the near plane maps to 0 and the far
// plane maps to 1.
//
//	eye_z = 2*near*far / (far + near - zNDC*(far - near))
//	depth = (eye_z - near) / (far - near)
//
// far == near divides by zero and yields Inf or NaN.
//
// Parameters:
//   - zNDC: NDC depth in [-1, 1]
//   - near, far: the clip plane distances
//
// Returns:
//   - float32: normalized linear depth
func LinearizeDepth(zNDC, near, far float32) float32 {
	eyeZ := 2 * near * far / (far + near - zNDC*(far-near))
	return (eyeZ - near) / (far - near)
}

// SignedNDCDepth remaps a [0, 1] clip-space depth, as produced by WebGPU projections,
// to the [-1, 1] range expected by LinearizeDepth. The two conventions describe the
// same hyperbola so the linearized result is unchanged.
//
// Parameters:
//   - z01: NDC depth in [0, 1]
//
// Returns:
//   - float32: NDC depth in [-1, 1]
func SignedNDCDepth(z01 float32) float32 {
	return z01*2 - 1
}

// LegacyDepth is the earlier depth visualization that remaps NDC depth straight to
// [0, 1] without undoing the perspective divide. Nearly every visible surface lands
// close to 1.
//
// Deprecated: use LinearizeDepth. LegacyDepth is not reachable through any Mode.
func LegacyDepth(zNDC float32) float32 {
	return (zNDC + 1) / 2
}
