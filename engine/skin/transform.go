package skin

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a decomposed local transform, applied as translate × rotate × scale.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Mat4 composes the transform. The rotation is normalized first.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Decompose splits an affine matrix without shear into translation, rotation and scale.
// A mirrored basis is reported as a negative x scale. A zero-length axis keeps scale 0 and
// contributes nothing to the rotation.
//
// Parameters:
//   - m: the matrix to split
//
// Returns:
//   - Transform: the decomposed transform
func Decompose(m mgl32.Mat4) Transform {
	t := Transform{Translation: m.Col(3).Vec3()}

	axes := [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	for i, a := range axes {
		t.Scale[i] = a.Len()
	}
	if m.Mat3().Det() < 0 {
		t.Scale[0] = -t.Scale[0]
	}

	var cols [3]mgl32.Vec4
	for i, a := range axes {
		if math32.Abs(t.Scale[i]) < 1e-8 {
			cols[i][i] = 1
			continue
		}
		cols[i] = a.Mul(1 / t.Scale[i]).Vec4(0)
	}
	t.Rotation = mgl32.Mat4ToQuat(mgl32.Mat4FromCols(cols[0], cols[1], cols[2], mgl32.Vec4{0, 0, 0, 1})).Normalize()
	return t
}
