package light

import (
	"sync"

	"github.com/chewxy/math32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	position  [3]float32
	color     [3]float32
	intensity float32

	orbitCenter [3]float32
	orbitRadius float32
}

// Light defines the interface for the single point light evaluated by the lighting stage.
//
// The light is host-side mutable state. It is snapshotted into a GPULight once per frame
// and treated as read-only by every shading invocation of that frame.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// SetPosition moves the light.
	//
	// Parameters:
	//   - x, y, z: world-space position
	SetPosition(x, y, z float32)

	// SetColor sets the light color.
	//
	// Parameters:
	//   - r, g, b: linear RGB color
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar multiplier applied to the color.
	//
	// Parameters:
	//   - intensity: the intensity multiplier
	SetIntensity(intensity float32)

	// Orbit places the light on its horizontal orbit circle at the given time. The light
	// travels one radian per second around the orbit center, keeping the center's height.
	// It does nothing when the orbit radius is zero.
	//
	// Parameters:
	//   - seconds: elapsed time in seconds
	Orbit(seconds float32)

	// Uniform returns the GPU representation of the light with intensity folded into color.
	//
	// Returns:
	//   - GPULight: the uniform block for the current state
	Uniform() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a new white point light at (5, 5, 1).
//
// Parameters:
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		position:  [3]float32{5, 5, 1},
		color:     [3]float32{1, 1, 1},
		intensity: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) Orbit(seconds float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.orbitRadius == 0 {
		return
	}
	sin, cos := math32.Sincos(seconds)
	l.position = [3]float32{
		l.orbitCenter[0] + l.orbitRadius*cos,
		l.orbitCenter[1],
		l.orbitCenter[2] + l.orbitRadius*sin,
	}
}

func (l *lightImpl) Uniform() GPULight {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPULight{
		Position: l.position,
		Color: [3]float32{
			l.color[0] * l.intensity,
			l.color[1] * l.intensity,
			l.color[2] * l.intensity,
		},
	}
}
