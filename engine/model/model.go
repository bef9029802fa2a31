package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name                  string
	skinned               bool
	skeleton              *skin.Skeleton
	texture               *common.TextureStagingData
	textureTransform      *uniform.TextureTransform
	meshProvider          bind_group_provider.BindGroupProvider
	boundingRadius        float32
	vertexData, indexData []byte
	vertexCount           int
	indexCount            int
}

// Model defines the interface for one drawable mesh.
// A Model carries its packed vertex and index data, its surface description (an
// optional texture) and, for skinned meshes, the skeleton that poses it. GPU buffers are attached
// later through a BindGroupProvider by the scene.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skinned reports whether the vertex data carries joint influences.
	//
	// Returns:
	//   - bool: true if the model uses the skinned vertex layout
	Skinned() bool

	// Textured reports whether the surface color comes from a texture rather than vertex colors.
	//
	// Returns:
	//   - bool: true if a texture is attached
	Textured() bool

	// Skeleton retrieves the joint hierarchy for this model.
	// Returns nil for static models.
	//
	// Returns:
	//   - *skin.Skeleton: the skeleton or nil
	Skeleton() *skin.Skeleton

	// Texture returns the decoded base-color texture, or nil for vertex-colored models.
	//
	// Returns:
	//   - *common.TextureStagingData: the texture or nil
	Texture() *common.TextureStagingData

	// TextureTransform returns the texture coordinate transform, or nil for identity.
	//
	// Returns:
	//   - *uniform.TextureTransform: the transform or nil
	TextureTransform() *uniform.TextureTransform

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider, or nil before GPU upload
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider attaches the BindGroupProvider holding GPU mesh resources.
	//
	// Parameters:
	//   - provider: the mesh provider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// VertexData returns the packed vertex buffer.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// VertexCount returns the number of vertices in VertexData.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexData returns the packed uint32 index buffer.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin. Used to frame the camera on load.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewModelsFromImport builds one Model per imported mesh. The mesh base color is baked into
// the vertex colors, which every variant multiplies into its surface color. Textures are decoded
// once and shared between meshes that reference the same image.
//
// Parameters:
//   - im: the imported model
//
// Returns:
//   - []Model: the drawable meshes in import order
//   - error: an error if a referenced texture cannot be decoded
func NewModelsFromImport(im *ImportedModel) ([]Model, error) {
	decoded := make(map[int]*common.TextureStagingData)
	models := make([]Model, 0, len(im.Meshes))

	for i := range im.Meshes {
		mesh := &im.Meshes[i]
		vertices := bakeBaseColor(mesh.Vertices, mesh.BaseColor)
		opts := []ModelBuilderOption{
			WithName(fmt.Sprintf("%s/%s", im.Name, common.Coalesce(mesh.Name, fmt.Sprintf("mesh%d", i)))),
			WithTextureTransform(mesh.TextureTransform),
			WithBoundingRadius(ComputeBoundingRadius(vertices)),
		}
		if mesh.Skinned && im.Skeleton != nil {
			opts = append(opts, WithSkinnedMesh(vertices, mesh.Indices, im.Skeleton))
		} else {
			baked := ImportedMesh{Vertices: vertices}
			opts = append(opts, WithStaticMesh(baked.StaticVertices(), mesh.Indices))
		}

		if idx := mesh.TextureIndex; idx >= 0 && idx < len(im.Textures) {
			tex, ok := decoded[idx]
			if !ok {
				staged, err := im.Textures[idx].Decode()
				if err != nil {
					return nil, fmt.Errorf("decode texture %d of %s: %w", idx, im.Name, err)
				}
				tex = &staged
				decoded[idx] = tex
			}
			opts = append(opts, WithTexture(tex))
		}

		models = append(models, NewModel(opts...))
	}
	return models, nil
}

// bakeBaseColor returns a copy of vertices with every color multiplied by base.
// A zero base color is treated as opaque white.
func bakeBaseColor(vertices []GPUSkinnedVertex, base mgl32.Vec4) []GPUSkinnedVertex {
	if base == (mgl32.Vec4{}) {
		base = mgl32.Vec4{1, 1, 1, 1}
	}
	out := make([]GPUSkinnedVertex, len(vertices))
	copy(out, vertices)
	for i := range out {
		for c := 0; c < 4; c++ {
			out[i].Color[c] *= base[c]
		}
	}
	return out
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Skinned() bool {
	return m.skinned
}

func (m *model) Textured() bool {
	return m.texture != nil
}

func (m *model) Skeleton() *skin.Skeleton {
	return m.skeleton
}

func (m *model) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *model) TextureTransform() *uniform.TextureTransform {
	return m.textureTransform
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.meshProvider = provider
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) VertexCount() int {
	return m.vertexCount
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return m.indexCount
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
