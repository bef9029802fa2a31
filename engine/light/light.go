package light

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypePoint emits in all directions from a position and attenuates with distance.
	LightTypePoint LightType = iota

	// LightTypeDirectional is a positioned, spot-like light. It attenuates with distance like a
	// point light and additionally falls off with the angle between its forward direction and
	// the direction to the lit surface.
	LightTypeDirectional

	// LightTypeParallel has no position, only a direction, and never attenuates.
	// Used for the sun and other distant sources.
	LightTypeParallel
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	case LightTypeDirectional:
		return "directional"
	case LightTypeParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType  LightType
	position   [3]float32
	direction  [3]float32
	color      [3]float32
	constant   float32
	linear     float32
	quadratic  float32
	rangeInner float32
	rangeOuter float32
	strength   float32
	enabled    bool
}

// Light defines the interface for a light source in the scene.
//
// All light types share this interface; type-specific properties (e.g. the angular range of
// directional lights) are ignored for types that do not use them. Lights are packed into the
// light Table each frame, which is the only form the shading stages read.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (point, directional, or parallel)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for parallel lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light.
	// For directional lights this is the forward axis of the falloff cone. For parallel lights
	// it is the direction light travels. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Attenuation returns the constant, linear and quadratic distance coefficients used by
	// point and directional lights: 1 / (c0 + c1*d + c2*d²).
	//
	// Returns:
	//   - [3]float32: (constant, linear, quadratic)
	Attenuation() [3]float32

	// AngularRange returns the inner and outer bounds of the directional falloff, expressed as
	// the sine of the angle off the light's forward axis.
	//
	// Returns:
	//   - float32: inner bound, full light at or below
	//   - float32: outer bound, no light at or above
	AngularRange() (float32, float32)

	// Strength returns the constant intensity factor of a parallel light.
	//
	// Returns:
	//   - float32: the strength value
	Strength() float32

	// Enabled returns whether this light is packed into the light table.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition updates the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// SetDirection updates the light direction. The direction is normalized before storing.
	//
	// Parameters:
	//   - x, y, z: the new direction
	SetDirection(x, y, z float32)

	// SetColor updates the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: the new color
	SetColor(r, g, b float32)

	// SetAttenuation updates the distance attenuation coefficients.
	//
	// Parameters:
	//   - constant, linear, quadratic: the new coefficients
	SetAttenuation(constant, linear, quadratic float32)

	// SetAngularRange updates the directional falloff bounds. The bounds are swapped when
	// inner is greater than outer.
	//
	// Parameters:
	//   - inner: sine bound of full light
	//   - outer: sine bound of no light
	SetAngularRange(inner, outer float32)

	// SetStrength updates the parallel light intensity factor.
	//
	// Parameters:
	//   - strength: the new strength
	SetStrength(strength float32)

	// SetEnabled toggles whether the light contributes.
	//
	// Parameters:
	//   - enabled: true to include the light
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  [3]float32{0, -1, 0},
		color:      [3]float32{1, 1, 1},
		constant:   1,
		rangeInner: 0.2,
		rangeOuter: 0.4,
		strength:   1,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Attenuation() [3]float32 {
	return [3]float32{l.constant, l.linear, l.quadratic}
}

func (l *lightImpl) AngularRange() (float32, float32) {
	return l.rangeInner, l.rangeOuter
}

func (l *lightImpl) Strength() float32 {
	return l.strength
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetAttenuation(constant, linear, quadratic float32) {
	l.constant, l.linear, l.quadratic = constant, linear, quadratic
}

func (l *lightImpl) SetAngularRange(inner, outer float32) {
	if inner > outer {
		inner, outer = outer, inner
	}
	l.rangeInner, l.rangeOuter = inner, outer
}

func (l *lightImpl) SetStrength(strength float32) {
	l.strength = strength
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
