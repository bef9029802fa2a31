package model

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Import Types ---

// ImportedModel represents a 3D model decoded from an external format.
// This is the universal format that the asset loader produces.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all mesh primitives.
	Meshes []ImportedMesh

	// Skeleton is the joint hierarchy (nil for static models). All skinned meshes share it.
	Skeleton *skin.Skeleton

	// Animations are the keyframe clips that drive Skeleton.
	Animations []animator.Clip

	// Textures are the images referenced by ImportedMesh.TextureIndex.
	Textures []common.ImportedTexture
}

// ImportedMesh represents a single primitive within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices carry joint data for every mesh; static meshes leave it zero.
	Vertices []GPUSkinnedVertex

	// Indices are the triangle indices.
	Indices []uint32

	// Skinned reports whether Vertices reference the model skeleton.
	Skinned bool

	// BaseColor multiplies vertex or texture color.
	BaseColor mgl32.Vec4

	// TextureIndex references ImportedModel.Textures, or -1 for vertex-colored meshes.
	TextureIndex int

	// TextureTransform maps mesh UVs into the texture, or nil for identity.
	TextureTransform *uniform.TextureTransform

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// StaticVertices strips the joint data from the mesh vertices.
func (m *ImportedMesh) StaticVertices() []GPUVertex {
	out := make([]GPUVertex, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].GPUVertex
	}
	return out
}
