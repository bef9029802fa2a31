package light

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Surface is the per-fragment input to the accumulator.
type Surface struct {
	// Normal is the world-space surface normal, possibly skin-deformed.
	Normal mgl32.Vec3
	// Tangent is the world-space tangent used by the rim term.
	Tangent mgl32.Vec3
	// Position is the world-space fragment position.
	Position mgl32.Vec3
	// Base is the intrinsic surface color and alpha.
	Base mgl32.Vec4
}

// StrengthMap quantizes a diffuse intensity into toon bands: smoothstep(start, stop, x) * max.
//
// Parameters:
//   - p: the shading constants
//   - x: the continuous diffuse intensity
//
// Returns:
//   - float32: the mapped intensity
func StrengthMap(p Param, x float32) float32 {
	return common.Smoothstep(p.Start, p.Stop, x) * p.Max
}

// Attenuate returns 1 / (c0 + c1*d + c2*d²).
func Attenuate(constant, linear, quadratic, d float32) float32 {
	return 1 / (constant + linear*d + quadratic*d*d)
}

// Shade folds ambient, every live light and the rim term into the final color of one fragment.
// It is the reference form of the lit fragment entry points of the toon program. Alpha is
// passed through unchanged.
//
// Parameters:
//   - s: the fragment surface
//   - t: the light table; only slots below each live count are read
//   - viewDir: normalized direction the camera looks along
//
// Returns:
//   - mgl32.Vec4: the shaded color
func Shade(s Surface, t *Table, viewDir mgl32.Vec3) mgl32.Vec4 {
	p := t.header.Param
	base := s.Base.Vec3()
	n := common.Normalize3(s.Normal)

	out := base.Mul(p.Ambient)

	for i := 0; i < int(t.header.PointCount); i++ {
		l := &t.point[i]
		toLight := mgl32.Vec3(l.Position).Sub(s.Position)
		d := toLight.Len()
		diffuse := StrengthMap(p, math32.Max(n.Dot(common.Normalize3(toLight)), 0))
		att := Attenuate(l.Constant, l.Linear, l.Quadratic, d)
		out = out.Add(mulVec(mgl32.Vec3(l.Color), base).Mul(diffuse * att))
	}

	for i := 0; i < int(t.header.DirectionalCount); i++ {
		l := &t.directional[i]
		toLight := mgl32.Vec3(l.Position).Sub(s.Position)
		d := toLight.Len()
		dir := common.Normalize3(toLight)
		diffuse := StrengthMap(p, math32.Max(n.Dot(dir), 0))
		att := Attenuate(l.Constant, l.Linear, l.Quadratic, d)
		falloff := ConeFalloff(dir.Mul(-1).Dot(common.Normalize3(mgl32.Vec3(l.Direction))), l.RangeInner, l.RangeOuter)
		out = out.Add(mulVec(mgl32.Vec3(l.Color), base).Mul(diffuse * att * falloff))
	}

	for i := 0; i < int(t.header.ParallelCount); i++ {
		l := &t.parallel[i]
		diffuse := StrengthMap(p, math32.Max(n.Dot(common.Normalize3(mgl32.Vec3(l.Direction)).Mul(-1)), 0))
		out = out.Add(mulVec(mgl32.Vec3(l.Color), base).Mul(diffuse * l.Strength))
	}

	out = out.Add(base.Mul(Rim(p, s.Tangent, viewDir)))

	return out.Vec4(s.Base.W())
}

// ConeFalloff converts the cosine between a light's forward axis and the light-to-surface
// direction into a sine and fades it from 1 at inner to 0 at outer. Surfaces behind the light
// (cosine <= 0) receive nothing.
//
// Parameters:
//   - cos: cosine of the off-axis angle
//   - inner: sine bound of full light
//   - outer: sine bound of no light
//
// Returns:
//   - float32: the angular falloff in [0, 1]
func ConeFalloff(cos, inner, outer float32) float32 {
	if cos <= 0 {
		return 0
	}
	sin := math32.Sqrt(math32.Max(1-cos*cos, 0))
	return 1 - common.Smoothstep(inner, outer, sin)
}

// Rim returns the view-dependent edge brightening factor, independent of the light list.
//
// Parameters:
//   - p: the shading constants
//   - tangent: world-space surface tangent
//   - viewDir: normalized direction the camera looks along
//
// Returns:
//   - float32: the factor applied to the base color
func Rim(p Param, tangent, viewDir mgl32.Vec3) float32 {
	facing := common.Saturate(common.Normalize3(tangent).Dot(viewDir.Mul(-1)))
	return common.Smoothstep(p.BorderStart, p.BorderStop, 1-facing) * p.BorderMax
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
