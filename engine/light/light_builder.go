package light

import "github.com/chewxy/math32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetPosition(x, y, z)
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetDirection(x, y, z)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetColor(r, g, b)
	}
}

// WithAttenuation is an option builder that sets the distance attenuation coefficients.
//
// Parameters:
//   - constant: the constant term
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a lightImpl
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetAttenuation(constant, linear, quadratic)
	}
}

// WithAngularRange is an option builder that sets the directional falloff bounds as sines of
// the off-axis angle.
//
// Parameters:
//   - inner: full light at or below this bound
//   - outer: no light at or above this bound
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithAngularRange(inner, outer float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetAngularRange(inner, outer)
	}
}

// WithConeDegrees is an option builder that sets the directional falloff bounds from half-angles
// in degrees.
//
// Parameters:
//   - innerDeg: inner half-angle in degrees
//   - outerDeg: outer half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithConeDegrees(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetAngularRange(sinDeg(innerDeg), sinDeg(outerDeg))
	}
}

// WithStrength is an option builder that sets the intensity factor of a parallel light.
func WithStrength(strength float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetStrength(strength)
	}
}

// WithEnabled is an option builder that sets whether the light is active.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetEnabled(enabled)
	}
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input
// has zero length.
func normalize3(x, y, z float32) [3]float32 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}

// sinDeg converts an angle in degrees to the sine of that angle.
func sinDeg(deg float32) float32 {
	return math32.Sin(deg * math32.Pi / 180.0)
}
