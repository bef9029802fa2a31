package shader

import "github.com/cogentcore/webgpu/wgpu"

// wgslType is the host-shareable size and alignment of a WGSL type. Types that can feed a
// vertex attribute also carry their vertex format.
type wgslType struct {
	size   uint64
	align  uint64
	vertex wgpu.VertexFormat
}

// wgslTypes holds the predeclared types used by the records and the toon program. Matrices
// are stored as columns of vecR, so mat3x3 pads each column to 16 bytes.
var wgslTypes = map[string]wgslType{
	"f32":         {4, 4, wgpu.VertexFormatFloat32},
	"u32":         {4, 4, wgpu.VertexFormatUint32},
	"vec2<f32>":   {8, 8, wgpu.VertexFormatFloat32x2},
	"vec3<f32>":   {12, 16, wgpu.VertexFormatFloat32x3},
	"vec4<f32>":   {16, 16, wgpu.VertexFormatFloat32x4},
	"vec4<u32>":   {16, 16, wgpu.VertexFormatUint32x4},
	"mat3x3<f32>": {48, 16, wgpu.VertexFormatUndefined},
	"mat4x4<f32>": {64, 16, wgpu.VertexFormatUndefined},
}

// parsedField is one member of a WGSL struct. location is -1 without @location.
type parsedField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

// parsedStruct is a WGSL struct declaration.
type parsedStruct struct {
	name   string
	fields []parsedField
}
