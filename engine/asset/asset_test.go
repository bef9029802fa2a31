package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	componentUnsignedByte  = 5121
	componentUnsignedShort = 5123
	componentFloat         = 5126
)

// docBuilder assembles a glTF JSON document with a single base64-embedded buffer.
type docBuilder struct {
	buf       bytes.Buffer
	views     []map[string]any
	accessors []map[string]any
	doc       map[string]any
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: map[string]any{"asset": map[string]any{"version": "2.0"}}}
}

// add appends data as a new buffer view and accessor, returning the accessor index.
func (b *docBuilder) add(t *testing.T, data any, componentType int, typ string, count int) int {
	offset := b.buf.Len()
	require.NoError(t, binary.Write(&b.buf, binary.LittleEndian, data))
	length := b.buf.Len() - offset
	for b.buf.Len()%4 != 0 {
		b.buf.WriteByte(0)
	}
	b.views = append(b.views, map[string]any{"buffer": 0, "byteOffset": offset, "byteLength": length})
	b.accessors = append(b.accessors, map[string]any{
		"bufferView":    len(b.views) - 1,
		"componentType": componentType,
		"type":          typ,
		"count":         count,
	})
	return len(b.accessors) - 1
}

func (b *docBuilder) bytes(t *testing.T) []byte {
	if b.buf.Len() > 0 {
		b.doc["buffers"] = []map[string]any{{
			"byteLength": b.buf.Len(),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.buf.Bytes()),
		}}
		b.doc["bufferViews"] = b.views
		b.doc["accessors"] = b.accessors
	}
	out, err := json.Marshal(b.doc)
	require.NoError(t, err)
	return out
}

var trianglePositions = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func redPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeStaticTexturedMesh(t *testing.T) {
	b := newDocBuilder()
	pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
	tex := redPNG(t)

	b.doc["scene"] = 0
	b.doc["scenes"] = []map[string]any{{"nodes": []int{0}}}
	b.doc["nodes"] = []map[string]any{{"name": "body", "mesh": 0, "translation": []float32{1, 0, 0}}}
	b.doc["meshes"] = []map[string]any{{
		"name":       "body",
		"primitives": []map[string]any{{"attributes": map[string]int{"POSITION": pos}, "material": 0}},
	}}
	b.doc["materials"] = []map[string]any{{
		"pbrMetallicRoughness": map[string]any{
			"baseColorFactor": []float32{0.5, 0.25, 1, 1},
			"baseColorTexture": map[string]any{
				"index": 0,
				"extensions": map[string]any{
					"KHR_texture_transform": map[string]any{"offset": []float32{0.5, 0}, "scale": []float32{2, 2}},
				},
			},
		},
	}}
	b.doc["textures"] = []map[string]any{{"source": 0}}
	b.doc["images"] = []map[string]any{{
		"name":     "skin",
		"mimeType": "image/png",
		"uri":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(tex),
	}}

	im, err := Decode("box.gltf", b.bytes(t))
	require.NoError(t, err)
	require.Len(t, im.Meshes, 1)
	assert.Nil(t, im.Skeleton)

	mesh := im.Meshes[0]
	assert.Equal(t, "body", mesh.Name)
	assert.False(t, mesh.Skinned)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, mgl32.Vec4{0.5, 0.25, 1, 1}, mesh.BaseColor)

	// The node translation is baked into model space.
	assert.InDelta(t, 2.0, mesh.Vertices[1].Position[0], 1e-6)
	assert.Equal(t, [3]float32{1, 0, 0}, mesh.BoundingMin)
	assert.Equal(t, [3]float32{2, 1, 0}, mesh.BoundingMax)

	v := mesh.Vertices[0]
	assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Tangent)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)

	require.Len(t, im.Textures, 1)
	assert.Equal(t, 0, mesh.TextureIndex)
	assert.Equal(t, "skin", im.Textures[0].Name)
	assert.Equal(t, tex, im.Textures[0].Data)

	require.NotNil(t, mesh.TextureTransform)
	assert.Equal(t, mgl32.Vec2{0.5, 0}, mesh.TextureTransform.Offset)
	assert.Equal(t, mgl32.Vec2{2, 2}, mesh.TextureTransform.Scale)
}

func TestDecodeSkinnedMesh(t *testing.T) {
	b := newDocBuilder()
	pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
	joints := b.add(t, [][4]uint8{{0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}, componentUnsignedByte, "VEC4", 3)
	weights := b.add(t, [][4]float32{{1, 0, 0, 0}, {0.5, 0, 0, 0}, {1, 0, 0, 0}}, componentFloat, "VEC4", 3)
	indices := b.add(t, []uint16{0, 2, 1}, componentUnsignedShort, "SCALAR", 3)

	b.doc["scenes"] = []map[string]any{{"nodes": []int{0, 1}}}
	b.doc["nodes"] = []map[string]any{
		{"name": "avatar", "mesh": 0, "skin": 0, "translation": []float32{9, 9, 9}},
		{"name": "hip", "translation": []float32{0, 1, 0}, "children": []int{2}},
		{"name": "offset", "translation": []float32{0, 0, 2}, "children": []int{3}},
		{"name": "arm", "translation": []float32{0, 0.5, 0}},
	}
	b.doc["skins"] = []map[string]any{{"joints": []int{1, 3}}}
	b.doc["meshes"] = []map[string]any{{
		"primitives": []map[string]any{{
			"attributes": map[string]int{"POSITION": pos, "JOINTS_0": joints, "WEIGHTS_0": weights},
			"indices":    indices,
		}},
	}}

	im, err := Decode("avatar.glb", b.bytes(t))
	require.NoError(t, err)
	require.Len(t, im.Meshes, 1)

	mesh := im.Meshes[0]
	assert.Equal(t, "mesh0", mesh.Name)
	assert.True(t, mesh.Skinned)
	assert.Equal(t, -1, mesh.TextureIndex)
	assert.Equal(t, []uint32{0, 2, 1}, mesh.Indices)
	assert.Equal(t, [4]uint32{1, 0, 0, 0}, mesh.Vertices[1].Joints)
	// Weights are kept as authored, not renormalized.
	assert.Equal(t, [4]float32{0.5, 0, 0, 0}, mesh.Vertices[1].Weights)
	// Skinned vertices stay in bind space.
	assert.Equal(t, [3]float32{1, 0, 0}, mesh.Vertices[1].Position)

	require.NotNil(t, im.Skeleton)
	require.Equal(t, 2, im.Skeleton.Len())
	hip, arm := im.Skeleton.Joint(0), im.Skeleton.Joint(1)
	assert.Equal(t, "hip", hip.Name)
	assert.Equal(t, -1, hip.Parent)
	assert.Equal(t, 1, hip.Node)
	assert.Equal(t, 0, arm.Parent)
	assert.Equal(t, 3, arm.Node)
	assert.Equal(t, mgl32.Ident4(), arm.InverseBind)

	palette := im.Skeleton.Pose()
	want := mgl32.Translate3D(0, 1.5, 2)
	assert.True(t, palette[1].Transform.ApproxEqual(want), "arm world %v", palette[1].Transform)
}

func TestDecodeAnimations(t *testing.T) {
	b := newDocBuilder()
	pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
	joints := b.add(t, [][4]uint8{{0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}, componentUnsignedByte, "VEC4", 3)
	weights := b.add(t, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}, componentFloat, "VEC4", 3)
	times := b.add(t, []float32{0, 1}, componentFloat, "SCALAR", 2)
	slide := b.add(t, [][3]float32{{0, 0.5, 0}, {2, 0.5, 0}}, componentFloat, "VEC3", 2)
	turn := b.add(t, [][4]float32{{0, 0, 0, 1}, {0, 0, 0.70710677, 0.70710677}}, componentFloat, "VEC4", 2)

	b.doc["scenes"] = []map[string]any{{"nodes": []int{0, 1}}}
	b.doc["nodes"] = []map[string]any{
		{"name": "avatar", "mesh": 0, "skin": 0},
		{"name": "hip", "translation": []float32{0, 1, 0}, "children": []int{2}},
		{"name": "offset", "translation": []float32{0, 0, 2}, "children": []int{3}},
		{"name": "arm", "translation": []float32{0, 0.5, 0}},
	}
	b.doc["skins"] = []map[string]any{{"joints": []int{1, 3}}}
	b.doc["meshes"] = []map[string]any{{
		"primitives": []map[string]any{{
			"attributes": map[string]int{"POSITION": pos, "JOINTS_0": joints, "WEIGHTS_0": weights},
		}},
	}}
	b.doc["animations"] = []map[string]any{
		{
			"name": "wave",
			"channels": []map[string]any{
				{"sampler": 0, "target": map[string]any{"node": 3, "path": "translation"}},
				// the mesh node and the folded offset node are not joints
				{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}},
				{"sampler": 0, "target": map[string]any{"node": 2, "path": "translation"}},
			},
			"samplers": []map[string]any{{"input": times, "output": slide}},
		},
		{
			"channels": []map[string]any{
				{"sampler": 0, "target": map[string]any{"node": 1, "path": "rotation"}},
			},
			"samplers": []map[string]any{{"input": times, "output": turn, "interpolation": "STEP"}},
		},
		{
			"name": "idle",
			"channels": []map[string]any{
				{"sampler": 0, "target": map[string]any{"node": 0, "path": "scale"}},
			},
			"samplers": []map[string]any{{"input": times, "output": slide}},
		},
	}

	im, err := Decode("avatar.gltf", b.bytes(t))
	require.NoError(t, err)
	require.NotNil(t, im.Skeleton)
	require.Len(t, im.Animations, 2)

	wave, hop := im.Animations[0], im.Animations[1]
	assert.Equal(t, "wave", wave.Name)
	assert.InDelta(t, 1, wave.Duration, 1e-6)
	require.Len(t, wave.Channels, 1)
	assert.Equal(t, 1, wave.Channels[0].Joint)
	assert.Equal(t, animator.PathTranslation, wave.Channels[0].Path)
	assert.Equal(t, animator.InterpolationLinear, wave.Channels[0].Interpolation)

	assert.Equal(t, "animation1", hop.Name)
	require.Len(t, hop.Channels, 1)
	assert.Equal(t, 0, hop.Channels[0].Joint)
	assert.Equal(t, animator.PathRotation, hop.Channels[0].Path)
	assert.Equal(t, animator.InterpolationStep, hop.Channels[0].Interpolation)

	// the folded offset node stays between hip and arm while the arm is animated
	arm := im.Skeleton.Joint(1)
	assert.True(t, arm.Offset.ApproxEqual(mgl32.Translate3D(0, 0, 2)))
	assert.InDelta(t, 0.5, arm.Rest.Translation[1], 1e-6)

	a := animator.NewAnimator(im.Skeleton, im.Animations)
	require.NoError(t, a.Play(0, animator.ModeOnce))
	require.True(t, a.Update(time.Second))
	palette := im.Skeleton.Pose()
	assert.True(t, palette[1].Transform.ApproxEqual(mgl32.Translate3D(2, 1.5, 2)), "arm world %v", palette[1].Transform)
}

func TestDecodeAnimationWithoutSkin(t *testing.T) {
	b := newDocBuilder()
	pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
	times := b.add(t, []float32{0, 1}, componentFloat, "SCALAR", 2)
	slide := b.add(t, [][3]float32{{0, 0, 0}, {1, 0, 0}}, componentFloat, "VEC3", 2)
	b.doc["nodes"] = []map[string]any{{"mesh": 0}}
	b.doc["meshes"] = []map[string]any{{
		"primitives": []map[string]any{{"attributes": map[string]int{"POSITION": pos}}},
	}}
	b.doc["animations"] = []map[string]any{{
		"channels": []map[string]any{{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}}},
		"samplers": []map[string]any{{"input": times, "output": slide}},
	}}

	im, err := Decode("box.gltf", b.bytes(t))
	require.NoError(t, err)
	assert.Empty(t, im.Animations)
}

func TestKeyValuesNormalizedRotation(t *testing.T) {
	got, err := keyValues([][4]int16{{0, 0, 32767, -32768}})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 0, 1, -1}, got[0])

	_, err = keyValues([]float32{1})
	assert.Error(t, err)
}

func TestGLTFIndex(t *testing.T) {
	three := uint32(3)
	i, ok := gltfIndex(&three)
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = gltfIndex((*uint32)(nil))
	assert.False(t, ok)

	i, ok = gltfIndex(uint32(5))
	assert.True(t, ok)
	assert.Equal(t, 5, i)
}

func TestDecodeRejectsDocumentsWithoutTriangles(t *testing.T) {
	t.Run("no meshes", func(t *testing.T) {
		b := newDocBuilder()
		b.doc["nodes"] = []map[string]any{{"name": "empty"}}
		_, err := Decode("empty.gltf", b.bytes(t))
		assert.ErrorIs(t, err, ErrNoMesh)
	})

	t.Run("points only", func(t *testing.T) {
		b := newDocBuilder()
		pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
		b.doc["meshes"] = []map[string]any{{
			"primitives": []map[string]any{{"attributes": map[string]int{"POSITION": pos}, "mode": 0}},
		}}
		_, err := Decode("points.gltf", b.bytes(t))
		assert.ErrorIs(t, err, ErrNoMesh)
	})
}

func TestDecodeErrors(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := Decode("junk.glb", []byte("not a model"))
		assert.Error(t, err)
	})

	t.Run("index out of range", func(t *testing.T) {
		b := newDocBuilder()
		pos := b.add(t, trianglePositions, componentFloat, "VEC3", 3)
		indices := b.add(t, []uint16{0, 1, 7}, componentUnsignedShort, "SCALAR", 3)
		b.doc["meshes"] = []map[string]any{{
			"primitives": []map[string]any{{"attributes": map[string]int{"POSITION": pos}, "indices": indices}},
		}}
		_, err := Decode("bad.gltf", b.bytes(t))
		assert.ErrorContains(t, err, "out of range")
	})
}

func TestTextureTransformAbsent(t *testing.T) {
	assert.Nil(t, textureTransform(nil))
}
