package common

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Smoothstep performs Hermite interpolation between 0 and 1 when edge0 < x < edge1.
// Matches the WGSL/GLSL builtin of the same name. When both edges are equal the result
// degenerates to a step at edge0.
//
// Parameters:
//   - edge0: lower edge of the transition
//   - edge1: upper edge of the transition
//   - x: source value
//
// Returns:
//   - float32: the interpolated value in [0, 1]
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Normalize3 returns v scaled to unit length, or v unchanged when its length is zero.
func Normalize3(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v.Dot(v))
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// NormalMatrix derives the inverse-transpose of the upper 3x3 of m.
// A singular upper 3x3 falls back to the plain upper 3x3 so that degenerate scales
// still produce a finite matrix.
//
// Parameters:
//   - m: the model or joint transform
//
// Returns:
//   - mgl32.Mat3: the matrix used to transform normals and tangents
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	upper := m.Mat3()
	if math32.Abs(upper.Det()) < 1e-12 {
		return upper
	}
	return upper.Inv().Transpose()
}

// PutFloat32 writes v little-endian at buf[0:4].
func PutFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// PutVec3 writes three float32 values at buf[0:12].
func PutVec3(buf []byte, v [3]float32) {
	for i := 0; i < 3; i++ {
		PutFloat32(buf[i*4:], v[i])
	}
}

// PutVec4 writes four float32 values at buf[0:16].
func PutVec4(buf []byte, v [4]float32) {
	for i := 0; i < 4; i++ {
		PutFloat32(buf[i*4:], v[i])
	}
}

// PutMat4 writes a column-major 4x4 matrix at buf[0:64].
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		PutFloat32(buf[i*4:], m[i])
	}
}

// PutMat3Padded writes a column-major 3x3 matrix as three vec4 columns (WGSL mat3x3 layout)
// at buf[0:48]. The fourth component of every column is zero.
//
// Parameters:
//   - buf: destination, at least 48 bytes
//   - m: the matrix to write
func PutMat3Padded(buf []byte, m mgl32.Mat3) {
	for col := 0; col < 3; col++ {
		base := col * 16
		PutFloat32(buf[base:], m[col*3])
		PutFloat32(buf[base+4:], m[col*3+1])
		PutFloat32(buf[base+8:], m[col*3+2])
		PutFloat32(buf[base+12:], 0)
	}
}
