package model

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/chewxy/math32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for static mesh pipelines.
// Matches GPUVertex layout exactly (64 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex for static (non-skinned) models.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 64 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
	Tangent  [4]float32 // offset 48: tangent (xyz) + handedness (w), drives rim light and outline (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 64)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the vertex into buf[0:64].
func (g *GPUVertex) MarshalTo(buf []byte) {
	common.PutVec3(buf[0:], g.Position)
	common.PutVec3(buf[12:], g.Normal)
	common.PutFloat32(buf[24:], g.TexCoord[0])
	common.PutFloat32(buf[28:], g.TexCoord[1])
	common.PutVec4(buf[32:], g.Color)
	common.PutVec4(buf[48:], g.Tangent)
}

// GPUSkinnedVertexSource is the canonical WGSL definition of the SkinnedVertexInput struct for skinned mesh pipelines.
// Matches GPUSkinnedVertex layout exactly (96 bytes).
//
//go:embed assets/skinned_vertex.wgsl
var GPUSkinnedVertexSource string

// GPUSkinnedVertex is the GPU-aligned representation of a single mesh vertex for skinned models.
// It extends GPUVertex with four joint influences. Weights are uploaded as given; the skinning
// stage never renormalises them.
// Size: 96 bytes (64 base vertex + 32 skinning data).
type GPUSkinnedVertex struct {
	GPUVertex                          // offset  0: base vertex data, 64 bytes
	Joints    [skin.Influences]uint32  // offset 64: joint table indices
	Weights   [skin.Influences]float32 // offset 80: blend weights
}

// Size returns the size of the GPUSkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkinnedVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	buf := make([]byte, 96)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the vertex into buf[0:96].
func (g *GPUSkinnedVertex) MarshalTo(buf []byte) {
	g.GPUVertex.MarshalTo(buf)
	for i := 0; i < skin.Influences; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:], g.Joints[i])
	}
	common.PutVec4(buf[80:], g.Weights)
}

// MarshalVertices packs static vertices into a vertex buffer.
func MarshalVertices(vertices []GPUVertex) []byte {
	const stride = 64
	buf := make([]byte, len(vertices)*stride)
	for i := range vertices {
		vertices[i].MarshalTo(buf[i*stride:])
	}
	return buf
}

// MarshalSkinnedVertices packs skinned vertices into a vertex buffer.
func MarshalSkinnedVertices(vertices []GPUSkinnedVertex) []byte {
	const stride = 96
	buf := make([]byte, len(vertices)*stride)
	for i := range vertices {
		vertices[i].MarshalTo(buf[i*stride:])
	}
	return buf
}

// MarshalIndices packs triangle indices as little-endian uint32.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUSkinnedVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUSkinnedVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return math32.Sqrt(maxDistSq)
}
