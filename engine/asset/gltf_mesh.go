package asset

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Attribute names read from a primitive.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
	attrTangent  = "TANGENT"
	attrTexCoord = "TEXCOORD_0"
	attrColor    = "COLOR_0"
	attrJoints   = "JOINTS_0"
	attrWeights  = "WEIGHTS_0"
)

// extractMesh converts every triangle primitive of a mesh instance. Non-triangle primitives are
// skipped with a warning. A primitive is skinned only when the instance binds the active skin and
// the primitive carries both joint and weight attributes.
func (d *gltfDecoder) extractMesh(inst meshInstance, skinned bool) ([]model.ImportedMesh, error) {
	mesh := d.doc.Meshes[inst.mesh]
	if mesh == nil {
		return nil, nil
	}

	var out []model.ImportedMesh
	for primIdx, prim := range mesh.Primitives {
		if prim == nil {
			continue
		}
		if prim.Mode != gltf.PrimitiveTriangles {
			slog.Warn("skipping non-triangle primitive", "mesh", mesh.Name, "primitive", primIdx, "mode", prim.Mode)
			continue
		}

		imported, err := d.extractPrimitive(prim, skinned)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", inst.mesh, primIdx, err)
		}
		imported.Name = primitiveName(mesh.Name, inst.mesh, primIdx, len(mesh.Primitives))
		if !imported.Skinned {
			bakeWorld(imported.Vertices, inst.world)
		}
		imported.BoundingMin, imported.BoundingMax = bounds(imported.Vertices)
		out = append(out, *imported)
	}
	return out, nil
}

func primitiveName(meshName string, meshIdx, primIdx, primCount int) string {
	name := common.Coalesce(meshName, fmt.Sprintf("mesh%d", meshIdx))
	if primCount > 1 {
		name = fmt.Sprintf("%s.%d", name, primIdx)
	}
	return name
}

// extractPrimitive reads the vertex attributes of a single primitive. Absent normals default to
// +Y, absent tangents to +X with positive handedness, and absent colors to opaque white.
func (d *gltfDecoder) extractPrimitive(prim *gltf.Primitive, skinned bool) (*model.ImportedMesh, error) {
	posIdx, ok := prim.Attributes[attrPosition]
	if !ok {
		return nil, fmt.Errorf("primitive has no %s attribute", attrPosition)
	}
	posAcc, err := d.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(d.doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	vertices := make([]model.GPUSkinnedVertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
		vertices[i].Normal = [3]float32{0, 1, 0}
		vertices[i].Tangent = [4]float32{1, 0, 0, 1}
		vertices[i].Color = [4]float32{1, 1, 1, 1}
	}

	if idx, ok := prim.Attributes[attrNormal]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(normals); i++ {
			vertices[i].Normal = normals[i]
		}
	}

	if idx, ok := prim.Attributes[attrTangent]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		tangents, err := modeler.ReadTangent(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(tangents); i++ {
			vertices[i].Tangent = tangents[i]
		}
	}

	if idx, ok := prim.Attributes[attrTexCoord]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(uvs); i++ {
			vertices[i].TexCoord = uvs[i]
		}
	}

	if idx, ok := prim.Attributes[attrColor]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		colors, err := modeler.ReadColor(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(colors); i++ {
			c := colors[i]
			vertices[i].Color = [4]float32{
				float32(c[0]) / 255,
				float32(c[1]) / 255,
				float32(c[2]) / 255,
				float32(c[3]) / 255,
			}
		}
	}

	jointIdx, hasJoints := prim.Attributes[attrJoints]
	weightIdx, hasWeights := prim.Attributes[attrWeights]
	isSkinned := skinned && hasJoints && hasWeights
	if isSkinned {
		if err := d.readInfluences(vertices, jointIdx, weightIdx); err != nil {
			return nil, err
		}
	}

	indices, err := d.readIndices(prim, len(vertices))
	if err != nil {
		return nil, err
	}

	imported := &model.ImportedMesh{
		Vertices:     vertices,
		Indices:      indices,
		Skinned:      isSkinned,
		BaseColor:    mgl32.Vec4{1, 1, 1, 1},
		TextureIndex: -1,
	}
	d.applyMaterial(prim, imported)
	return imported, nil
}

// readInfluences reads four joint indices and weights per vertex. Weights are kept as authored.
func (d *gltfDecoder) readInfluences(vertices []model.GPUSkinnedVertex, jointIdx, weightIdx uint32) error {
	jacc, err := d.accessor(jointIdx)
	if err != nil {
		return err
	}
	joints, err := modeler.ReadJoints(d.doc, jacc, nil)
	if err != nil {
		return fmt.Errorf("read joints: %w", err)
	}
	wacc, err := d.accessor(weightIdx)
	if err != nil {
		return err
	}
	weights, err := modeler.ReadWeights(d.doc, wacc, nil)
	if err != nil {
		return fmt.Errorf("read weights: %w", err)
	}

	for i := range vertices {
		if i < len(joints) {
			j := joints[i]
			vertices[i].Joints = [4]uint32{uint32(j[0]), uint32(j[1]), uint32(j[2]), uint32(j[3])}
		}
		if i < len(weights) {
			vertices[i].Weights = weights[i]
		}
	}
	return nil
}

// readIndices reads the index accessor, or generates 0..n-1 for non-indexed geometry.
// Indices beyond the vertex count are rejected.
func (d *gltfDecoder) readIndices(prim *gltf.Primitive, vertexCount int) ([]uint32, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertexCount-vertexCount%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}

	acc, err := d.accessor(*prim.Indices)
	if err != nil {
		return nil, err
	}
	indices, err := modeler.ReadIndices(d.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("read indices: %w", err)
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, fmt.Errorf("index %d out of range for %d vertices", idx, vertexCount)
		}
	}
	return indices[:len(indices)-len(indices)%3], nil
}

func (d *gltfDecoder) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(d.doc.Accessors) || d.doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return d.doc.Accessors[idx], nil
}

// bakeWorld moves static vertices from node space into model space.
func bakeWorld(vertices []model.GPUSkinnedVertex, world mgl32.Mat4) {
	if world == mgl32.Ident4() {
		return
	}
	normal := common.NormalMatrix(world)
	linear := world.Mat3()
	for i := range vertices {
		v := &vertices[i]
		p := world.Mul4x1(mgl32.Vec3(v.Position).Vec4(1))
		v.Position = [3]float32{p[0], p[1], p[2]}
		v.Normal = common.Normalize3(normal.Mul3x1(v.Normal))
		t := common.Normalize3(linear.Mul3x1(mgl32.Vec3{v.Tangent[0], v.Tangent[1], v.Tangent[2]}))
		v.Tangent = [4]float32{t[0], t[1], t[2], v.Tangent[3]}
	}
}

func bounds(vertices []model.GPUSkinnedVertex) (lo, hi [3]float32) {
	if len(vertices) == 0 {
		return lo, hi
	}
	lo = [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi = [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range vertices {
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], v.Position[c])
			hi[c] = max(hi[c], v.Position[c])
		}
	}
	return lo, hi
}
