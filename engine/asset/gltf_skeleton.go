package asset

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf/modeler"
)

// extractSkeleton builds the joint hierarchy of a skin. Joint order follows skin.joints so vertex
// joint indices address the palette directly.
//
// A joint's parent is its nearest ancestor node that is also a joint of the skin. Non-joint nodes
// between two joints are folded into the child's offset, and root joints carry the full world
// transform of their ancestors, so the skeleton root is the identity.
//
// The returned map gives the first joint index of every joint node.
func (d *gltfDecoder) extractSkeleton(skinIndex int) (*skin.Skeleton, map[int]int, error) {
	sk := d.doc.Skins[skinIndex]
	if sk == nil || len(sk.Joints) == 0 {
		return nil, nil, fmt.Errorf("skin has no joints")
	}

	inverseBinds, err := d.readInverseBinds(sk.InverseBindMatrices, len(sk.Joints))
	if err != nil {
		return nil, nil, err
	}

	jointOf := make(map[int]int, len(sk.Joints))
	for i, node := range sk.Joints {
		if int(node) >= len(d.doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d references missing node %d", i, node)
		}
		if _, ok := jointOf[int(node)]; !ok {
			jointOf[int(node)] = i
		}
	}

	joints := make([]skin.Joint, len(sk.Joints))
	for i, n := range sk.Joints {
		node := int(n)
		offset := mgl32.Ident4()
		parent := -1
		for p, steps := d.parents[node], 0; p >= 0 && steps < len(d.parents); p, steps = d.parents[p], steps+1 {
			if j, ok := jointOf[p]; ok {
				parent = j
				break
			}
			offset = d.localOf(p).Mul4(offset)
		}

		name := fmt.Sprintf("joint%d", i)
		if nd := d.doc.Nodes[node]; nd != nil && nd.Name != "" {
			name = nd.Name
		}
		joints[i] = skin.Joint{
			Name:        name,
			Node:        node,
			Parent:      parent,
			Local:       offset.Mul4(d.localOf(node)),
			InverseBind: inverseBinds[i],
			Offset:      offset,
			Rest:        d.restOf(node),
		}
	}

	return skin.NewSkeleton(joints, mgl32.Ident4()), jointOf, nil
}

// readInverseBinds reads the inverse bind matrices, defaulting missing entries to the identity.
func (d *gltfDecoder) readInverseBinds(accessor *uint32, count int) ([]mgl32.Mat4, error) {
	out := make([]mgl32.Mat4, count)
	for i := range out {
		out[i] = mgl32.Ident4()
	}
	if accessor == nil {
		return out, nil
	}
	if int(*accessor) >= len(d.doc.Accessors) {
		return nil, fmt.Errorf("inverse bind accessor %d out of range", *accessor)
	}

	raw, err := modeler.ReadAccessor(d.doc, d.doc.Accessors[*accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("read inverse bind matrices: %w", err)
	}
	mats, ok := raw.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("inverse bind matrices have type %T, want float MAT4", raw)
	}
	for i := 0; i < count && i < len(mats); i++ {
		// glTF matrices are column-major, as is mgl32.Mat4
		m := mats[i]
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = m[c][r]
			}
		}
	}
	return out, nil
}
