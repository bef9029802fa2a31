package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (96 bytes, uniform aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 96 bytes.
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4 // offset  0: combined view-projection matrix (mat4x4<f32>)
	Position mgl32.Vec3 // offset 64: world-space camera position (vec3<f32>)
	Aspect   float32    // offset 76: viewport width / height
	ViewDir  mgl32.Vec3 // offset 80: normalized view direction (vec3<f32>)
	_pad     float32    // offset 92: padding to 96 bytes
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf[0:], g.ViewProj)
	common.PutVec3(buf[64:], g.Position)
	common.PutFloat32(buf[76:], g.Aspect)
	common.PutVec3(buf[80:], g.ViewDir)
	common.PutFloat32(buf[92:], 0) // _pad
	return buf
}
