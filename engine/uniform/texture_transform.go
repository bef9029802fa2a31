package uniform

import "github.com/go-gl/mathgl/mgl32"

// TextureTransform maps mesh texture coordinates into texture space.
// It is applied as scale, then rotation, then offset.
type TextureTransform struct {
	Scale    mgl32.Vec2
	Rotation float32 // radians, counter-clockwise
	Offset   mgl32.Vec2
}

// IdentityTextureTransform returns a transform that leaves coordinates unchanged.
func IdentityTextureTransform() TextureTransform {
	return TextureTransform{Scale: mgl32.Vec2{1, 1}}
}

// Mat3 returns the homogeneous 2D matrix translate × rotate × scale.
// A nil receiver yields the identity.
//
// Returns:
//   - mgl32.Mat3: the 2D homogeneous transform
func (t *TextureTransform) Mat3() mgl32.Mat3 {
	if t == nil {
		return mgl32.Ident3()
	}
	return mgl32.Translate2D(t.Offset[0], t.Offset[1]).
		Mul3(mgl32.HomogRotate2D(t.Rotation)).
		Mul3(mgl32.Scale2D(t.Scale[0], t.Scale[1]))
}

// Matrix embeds Mat3 in the upper-left of a 4x4 matrix, the form stored in the instance record.
// Shaders apply it as (texcoord * vec4(uv, 1.0, 0.0)).xy.
//
// Returns:
//   - mgl32.Mat4: the embedded transform
func (t *TextureTransform) Matrix() mgl32.Mat4 {
	return t.Mat3().Mat4()
}

// Apply transforms a single texture coordinate on the CPU.
func (t *TextureTransform) Apply(uv mgl32.Vec2) mgl32.Vec2 {
	p := t.Mat3().Mul3x1(mgl32.Vec3{uv[0], uv[1], 1})
	return mgl32.Vec2{p[0], p[1]}
}
