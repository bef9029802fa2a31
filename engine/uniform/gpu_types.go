package uniform

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUInstanceUniformSource is the canonical WGSL definition of the InstanceUniform struct.
// Matches GPUInstanceUniform layout exactly (176 bytes, uniform aligned).
//
//go:embed assets/instance.wgsl
var GPUInstanceUniformSource string

// GPUJointsSource is the canonical WGSL definition of the skin joint table.
// Matches GPUJointMatrix with MaxSkinJoints entries.
//
//go:embed assets/joints.wgsl
var GPUJointsSource string

// GPUInstanceUniform is the GPU-aligned representation of one drawable's per-draw record.
// Normal is never set independently; it is derived from Model by NewInstanceUniform.
// Size: 176 bytes.
type GPUInstanceUniform struct {
	Model    mgl32.Mat4 // offset   0: model-to-world transform
	Normal   mgl32.Mat3 // offset  64: inverse-transpose upper 3x3, stored as three vec4 columns
	_pad     [3]float32 // padding so the Go struct matches the 48-byte mat3x3 column stride
	TexCoord mgl32.Mat4 // offset 112: texture coordinate transform (mat3 embedded in mat4)
}

// NewInstanceUniform builds an instance record from a model transform and an optional texture transform.
//
// Parameters:
//   - model: the model-to-world transform
//   - tex: the texture coordinate transform, or nil for identity
//
// Returns:
//   - GPUInstanceUniform: the record with its normal matrix derived from model
func NewInstanceUniform(model mgl32.Mat4, tex *TextureTransform) GPUInstanceUniform {
	return GPUInstanceUniform{
		Model:    model,
		Normal:   common.NormalMatrix(model),
		TexCoord: tex.Matrix(),
	}
}

// Size returns the size of the GPUInstanceUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (176)
func (g *GPUInstanceUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the record into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 176-byte buffer
func (g *GPUInstanceUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf[0:], g.Model)
	common.PutMat3Padded(buf[64:], g.Normal)
	common.PutMat4(buf[112:], g.TexCoord)
	return buf
}

// GPUJointMatrix is the GPU-aligned representation of one skin joint.
// Size: 112 bytes (mat4x4 followed by a mat3x3 with 16-byte column stride).
type GPUJointMatrix struct {
	Transform mgl32.Mat4 // offset  0
	Normal    mgl32.Mat3 // offset 64
	_pad      [3]float32 // offset 100: brings the mat3 columns to 48 bytes
}

// Size returns the size of the GPUJointMatrix struct in bytes.
func (g *GPUJointMatrix) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the joint into buf[0:112].
func (g *GPUJointMatrix) MarshalTo(buf []byte) {
	common.PutMat4(buf[0:], g.Transform)
	common.PutMat3Padded(buf[64:], g.Normal)
}
