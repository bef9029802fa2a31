package asset

import (
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfDecoder walks one parsed document. It caches the node parent table and the world
// transform of every node, and collects the images referenced by materials in first-use order.
type gltfDecoder struct {
	doc     *gltf.Document
	parents []int
	world   []mgl32.Mat4
	solved  []bool

	// imageSlot maps a document image index to its position in the textures list.
	imageSlot map[uint32]int
	images    []uint32
}

// meshInstance is one node that draws a mesh.
type meshInstance struct {
	node  int
	mesh  int
	skin  int
	world mgl32.Mat4
}

func newGLTFDecoder(doc *gltf.Document) *gltfDecoder {
	d := &gltfDecoder{
		doc:       doc,
		parents:   make([]int, len(doc.Nodes)),
		world:     make([]mgl32.Mat4, len(doc.Nodes)),
		solved:    make([]bool, len(doc.Nodes)),
		imageSlot: make(map[uint32]int),
	}
	for i := range d.parents {
		d.parents[i] = -1
	}
	for i, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if int(c) < len(d.parents) && d.parents[c] < 0 && int(c) != i {
				d.parents[c] = i
			}
		}
	}
	return d
}

// sceneRoots returns the root nodes of the default scene, or every parentless node when the
// document declares no scene.
func (d *gltfDecoder) sceneRoots() []int {
	doc := d.doc
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			idx = int(*doc.Scene)
		}
		if sc := doc.Scenes[idx]; sc != nil {
			roots := make([]int, 0, len(sc.Nodes))
			for _, n := range sc.Nodes {
				if int(n) < len(doc.Nodes) {
					roots = append(roots, int(n))
				}
			}
			return roots
		}
	}
	var roots []int
	for i, p := range d.parents {
		if p < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// meshInstances lists the mesh-bearing nodes reachable from the scene roots in depth-first
// order. A document whose nodes reference no mesh falls back to drawing every mesh once.
func (d *gltfDecoder) meshInstances() []meshInstance {
	var out []meshInstance
	visited := make([]bool, len(d.doc.Nodes))

	var walk func(i int)
	walk = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		n := d.doc.Nodes[i]
		if n == nil {
			return
		}
		if n.Mesh != nil && int(*n.Mesh) < len(d.doc.Meshes) {
			inst := meshInstance{node: i, mesh: int(*n.Mesh), skin: -1, world: d.worldOf(i)}
			if n.Skin != nil && int(*n.Skin) < len(d.doc.Skins) {
				inst.skin = int(*n.Skin)
			}
			out = append(out, inst)
		}
		for _, c := range n.Children {
			if int(c) < len(d.doc.Nodes) {
				walk(int(c))
			}
		}
	}
	for _, r := range d.sceneRoots() {
		walk(r)
	}

	if len(out) == 0 {
		for i := range d.doc.Meshes {
			out = append(out, meshInstance{node: -1, mesh: i, skin: -1, world: mgl32.Ident4()})
		}
	}
	return out
}

// activeSkin returns the first skin referenced by a mesh node, the first declared skin when
// none is referenced, or -1 when the document has no skins.
func (d *gltfDecoder) activeSkin() int {
	for _, n := range d.doc.Nodes {
		if n != nil && n.Mesh != nil && n.Skin != nil && int(*n.Skin) < len(d.doc.Skins) {
			return int(*n.Skin)
		}
	}
	if len(d.doc.Skins) > 0 {
		return 0
	}
	return -1
}

// localOf returns a node's transform relative to its parent. An explicit matrix wins over TRS.
func (d *gltfDecoder) localOf(i int) mgl32.Mat4 {
	n := d.doc.Nodes[i]
	if n == nil {
		return mgl32.Ident4()
	}
	if m := mgl32.Mat4(n.Matrix); m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return m
	}
	return d.restOf(i).Mat4()
}

// restOf returns a node's own translation, rotation and scale. Missing rotation and scale take
// their glTF defaults, and an explicit matrix is decomposed.
func (d *gltfDecoder) restOf(i int) skin.Transform {
	n := d.doc.Nodes[i]
	if n == nil {
		return skin.IdentityTransform()
	}
	if m := mgl32.Mat4(n.Matrix); m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return skin.Decompose(m)
	}

	t := n.Translation
	r := n.Rotation
	s := n.Scale
	if r == [4]float32{} {
		r = [4]float32{0, 0, 0, 1}
	}
	if s == [3]float32{} {
		s = [3]float32{1, 1, 1}
	}
	return skin.Transform{
		Translation: mgl32.Vec3{t[0], t[1], t[2]},
		Rotation:    mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize(),
		Scale:       mgl32.Vec3{s[0], s[1], s[2]},
	}
}

// worldOf returns the product of every local transform from the root down to node i.
func (d *gltfDecoder) worldOf(i int) mgl32.Mat4 {
	if d.solved[i] {
		return d.world[i]
	}
	// mark first so a malformed cycle terminates
	d.solved[i] = true
	d.world[i] = d.localOf(i)
	if p := d.parents[i]; p >= 0 {
		d.world[i] = d.worldOf(p).Mul4(d.world[i])
	}
	return d.world[i]
}
