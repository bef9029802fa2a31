package light

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-toon/common"
)

// Table capacities. Slots at or beyond the live count of a category are never read.
const (
	MaxPointLights       = 128
	MaxDirectionalLights = 64
	MaxParallelLights    = 16
)

// GPULightSource is the canonical WGSL definition of the light table structs.
// Matches GPULightHeader, GPUPointLight, GPUDirectionalLight and GPUParallelLight exactly.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPUPointLight is the GPU-aligned representation of a point light.
// Size: 48 bytes (uniform address space, 16-byte array stride).
type GPUPointLight struct {
	Position  [3]float32 // offset  0: world-space position
	_pad0     float32    // offset 12
	Color     [3]float32 // offset 16: RGB color
	Constant  float32    // offset 28: c0
	Linear    float32    // offset 32: c1
	Quadratic float32    // offset 36: c2
	_pad1     [2]float32 // offset 40: padding to 48
}

// Size returns the size of the GPUPointLight struct in bytes.
func (g *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf[0:48].
func (g *GPUPointLight) MarshalTo(buf []byte) {
	common.PutVec3(buf[0:], g.Position)
	common.PutFloat32(buf[12:], 0)
	common.PutVec3(buf[16:], g.Color)
	common.PutFloat32(buf[28:], g.Constant)
	common.PutFloat32(buf[32:], g.Linear)
	common.PutFloat32(buf[36:], g.Quadratic)
	common.PutFloat32(buf[40:], 0)
	common.PutFloat32(buf[44:], 0)
}

// GPUDirectionalLight is the GPU-aligned representation of a directional (spot-like) light.
// Size: 64 bytes.
type GPUDirectionalLight struct {
	Position   [3]float32 // offset  0: world-space position
	Constant   float32    // offset 12: c0
	Direction  [3]float32 // offset 16: normalized forward axis
	Linear     float32    // offset 28: c1
	Color      [3]float32 // offset 32: RGB color
	Quadratic  float32    // offset 44: c2
	RangeInner float32    // offset 48: sine bound of full light
	RangeOuter float32    // offset 52: sine bound of no light
	_pad       [2]float32 // offset 56: padding to 64
}

// Size returns the size of the GPUDirectionalLight struct in bytes.
func (g *GPUDirectionalLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf[0:64].
func (g *GPUDirectionalLight) MarshalTo(buf []byte) {
	common.PutVec3(buf[0:], g.Position)
	common.PutFloat32(buf[12:], g.Constant)
	common.PutVec3(buf[16:], g.Direction)
	common.PutFloat32(buf[28:], g.Linear)
	common.PutVec3(buf[32:], g.Color)
	common.PutFloat32(buf[44:], g.Quadratic)
	common.PutFloat32(buf[48:], g.RangeInner)
	common.PutFloat32(buf[52:], g.RangeOuter)
	common.PutFloat32(buf[56:], 0)
	common.PutFloat32(buf[60:], 0)
}

// GPUParallelLight is the GPU-aligned representation of a parallel light.
// Size: 32 bytes.
type GPUParallelLight struct {
	Direction [3]float32 // offset  0: normalized travel direction
	_pad      float32    // offset 12
	Color     [3]float32 // offset 16: RGB color
	Strength  float32    // offset 28: intensity factor
}

// Size returns the size of the GPUParallelLight struct in bytes.
func (g *GPUParallelLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf[0:32].
func (g *GPUParallelLight) MarshalTo(buf []byte) {
	common.PutVec3(buf[0:], g.Direction)
	common.PutFloat32(buf[12:], 0)
	common.PutVec3(buf[16:], g.Color)
	common.PutFloat32(buf[28:], g.Strength)
}

// GPULightHeader is the header at the start of the light table.
// Size: 48 bytes (three counts, seven shading constants, two outline constants).
type GPULightHeader struct {
	PointCount       uint32  // offset  0
	DirectionalCount uint32  // offset  4
	ParallelCount    uint32  // offset  8
	Param            Param   // offset 12: start, stop, max, border start/stop/max, ambient
	OutlineSize      float32 // offset 40: clip-space outline extrusion
	OutlineDarken    float32 // offset 44: outline color factor
}

// Size returns the size of the GPULightHeader struct in bytes.
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// MarshalTo serializes the header into buf[0:48].
func (h *GPULightHeader) MarshalTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.PointCount)
	binary.LittleEndian.PutUint32(buf[4:8], h.DirectionalCount)
	binary.LittleEndian.PutUint32(buf[8:12], h.ParallelCount)
	common.PutFloat32(buf[12:], h.Param.Start)
	common.PutFloat32(buf[16:], h.Param.Stop)
	common.PutFloat32(buf[20:], h.Param.Max)
	common.PutFloat32(buf[24:], h.Param.BorderStart)
	common.PutFloat32(buf[28:], h.Param.BorderStop)
	common.PutFloat32(buf[32:], h.Param.BorderMax)
	common.PutFloat32(buf[36:], h.Param.Ambient)
	common.PutFloat32(buf[40:], h.OutlineSize)
	common.PutFloat32(buf[44:], h.OutlineDarken)
}

// Byte offsets and sizes of the light table record.
const (
	headerSize      = 48
	pointSize       = 48
	directionalSize = 64
	parallelSize    = 32

	pointOffset       = headerSize
	directionalOffset = pointOffset + MaxPointLights*pointSize
	parallelOffset    = directionalOffset + MaxDirectionalLights*directionalSize

	// GPULightTableSize is the size in bytes of the full light table record (10800).
	GPULightTableSize = parallelOffset + MaxParallelLights*parallelSize
)
