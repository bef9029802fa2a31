package model

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithStaticMesh packs static vertices and indices into the Model's buffers.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: the triangle indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh to a model
func WithStaticMesh(vertices []GPUVertex, indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.skinned = false
		m.skeleton = nil
		m.vertexData = MarshalVertices(vertices)
		m.vertexCount = len(vertices)
		m.indexData = MarshalIndices(indices)
		m.indexCount = len(indices)
	}
}

// WithSkinnedMesh packs skinned vertices and indices into the Model's buffers and attaches the
// skeleton that poses them.
//
// Parameters:
//   - vertices: the mesh vertices with joint influences
//   - indices: the triangle indices
//   - skeleton: the joint hierarchy addressed by the vertex joint indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh to a model
func WithSkinnedMesh(vertices []GPUSkinnedVertex, indices []uint32, skeleton *skin.Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skinned = true
		m.skeleton = skeleton
		m.vertexData = MarshalSkinnedVertices(vertices)
		m.vertexCount = len(vertices)
		m.indexData = MarshalIndices(indices)
		m.indexCount = len(indices)
	}
}

// WithTexture attaches a decoded base-color texture, switching the Model to textured shading.
//
// Parameters:
//   - tex: the decoded texture, or nil for vertex colors
//
// Returns:
//   - ModelBuilderOption: a function that applies the texture option to a model
func WithTexture(tex *common.TextureStagingData) ModelBuilderOption {
	return func(m *model) {
		m.texture = tex
	}
}

// WithTextureTransform sets the texture coordinate transform. Nil means identity.
func WithTextureTransform(t *uniform.TextureTransform) ModelBuilderOption {
	return func(m *model) {
		m.textureTransform = t
	}
}

// WithMeshProvider is an option builder that sets the BindGroupProvider for mesh GPU resources.
//
// Parameters:
//   - provider: the BindGroupProvider holding vertex/index buffers and bind group data
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}
