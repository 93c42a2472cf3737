package light

// LightBuilderOption is a functional option used to configure a Light during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
//
// Parameters:
//   - x, y, z: the position components
//
// Returns:
//   - LightBuilderOption: a function that sets the light position
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - r, g, b: the color components in linear space
//
// Returns:
//   - LightBuilderOption: a function that sets the light color
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity sets the scalar intensity multiplier for the light.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that sets the light intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithOrbit configures the horizontal circle followed by Orbit.
//
// Parameters:
//   - cx, cy, cz: the orbit center; the light keeps cy as its height
//   - radius: the orbit radius, zero disables orbiting
//
// Returns:
//   - LightBuilderOption: a function that sets the orbit
func WithOrbit(cx, cy, cz, radius float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.orbitCenter = [3]float32{cx, cy, cz}
		l.orbitRadius = radius
	}
}
