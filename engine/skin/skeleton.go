package skin

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// Joint is one entry of a skeleton's joint list.
type Joint struct {
	// Name identifies the joint for logging and lookup.
	Name string
	// Node is the source scene node id. Two joints sharing a node are posed from the same node.
	Node int
	// Parent is the index of the parent joint, or -1 for a root.
	Parent int
	// Local is the joint's transform relative to its parent.
	Local mgl32.Mat4
	// InverseBind maps model space to the joint's bind-pose space.
	InverseBind mgl32.Mat4
	// Offset is the transform of the non-joint nodes between this joint and its parent joint.
	// A posed Local is Offset × the joint's own TRS. Zero means identity.
	Offset mgl32.Mat4
	// Rest is the joint's own TRS at load time. Zero means it is derived from Local.
	Rest Transform
}

// Skeleton is a joint hierarchy that produces a joint palette for skinning.
type Skeleton struct {
	joints []Joint
	rest   []mgl32.Mat4
	root   mgl32.Mat4
	world  []mgl32.Mat4
	state  []uint8
}

// NewSkeleton builds a Skeleton. Parent indices that are out of range are treated as roots.
// Joints listed more than once for the same node are kept so vertex indices stay valid, and a
// warning is logged.
//
// Parameters:
//   - joints: the joint list in palette order
//   - root: transform of the ancestors above the root joints
//
// Returns:
//   - *Skeleton: the skeleton
func NewSkeleton(joints []Joint, root mgl32.Mat4) *Skeleton {
	seen := make(map[int]int, len(joints))
	for i, j := range joints {
		if first, ok := seen[j.Node]; ok {
			slog.Warn("joint node listed more than once in skin", "node", j.Node, "first", first, "duplicate", i, "name", j.Name)
			continue
		}
		seen[j.Node] = i
	}
	cp := make([]Joint, len(joints))
	copy(cp, joints)
	rest := make([]mgl32.Mat4, len(cp))
	for i := range cp {
		j := &cp[i]
		if j.Offset == (mgl32.Mat4{}) {
			j.Offset = mgl32.Ident4()
		}
		if j.Rest == (Transform{}) {
			j.Rest = Decompose(j.Offset.Inv().Mul4(j.Local))
		}
		rest[i] = j.Local
	}
	return &Skeleton{
		joints: cp,
		rest:   rest,
		root:   root,
		world:  make([]mgl32.Mat4, len(joints)),
		state:  make([]uint8, len(joints)),
	}
}

// Len returns the number of joints.
func (s *Skeleton) Len() int {
	return len(s.joints)
}

// Joint returns the joint at index i.
func (s *Skeleton) Joint(i int) Joint {
	return s.joints[i]
}

// SetPose sets joint i's own translation, rotation and scale. The joint's offset is kept.
// Out-of-range indices are ignored.
func (s *Skeleton) SetPose(i int, t Transform) {
	if i < 0 || i >= len(s.joints) {
		return
	}
	s.joints[i].Local = s.joints[i].Offset.Mul4(t.Mat4())
}

// Rest returns joint i's load-time TRS, or the identity for an out-of-range index.
func (s *Skeleton) Rest(i int) Transform {
	if i < 0 || i >= len(s.joints) {
		return IdentityTransform()
	}
	return s.joints[i].Rest
}

// ResetPose puts every joint back to its load-time local transform.
func (s *Skeleton) ResetPose() {
	for i := range s.joints {
		s.joints[i].Local = s.rest[i]
	}
}

// Pose computes the joint palette for the current local transforms.
//
// Returns:
//   - []JointMatrix: one entry per joint, world × inverse bind
func (s *Skeleton) Pose() []JointMatrix {
	return s.PoseInto(nil)
}

// PoseInto computes the joint palette into dst, growing it when needed.
//
// Parameters:
//   - dst: destination slice, reused when it has enough capacity
//
// Returns:
//   - []JointMatrix: the joint palette
func (s *Skeleton) PoseInto(dst []JointMatrix) []JointMatrix {
	if cap(dst) < len(s.joints) {
		dst = make([]JointMatrix, len(s.joints))
	}
	dst = dst[:len(s.joints)]

	for i := range s.state {
		s.state[i] = 0
	}
	for i := range s.joints {
		dst[i] = NewJointMatrix(s.worldOf(i).Mul4(s.joints[i].InverseBind))
	}
	return dst
}

const (
	unvisited uint8 = iota
	visiting
	visited
)

func (s *Skeleton) worldOf(i int) mgl32.Mat4 {
	switch s.state[i] {
	case visited:
		return s.world[i]
	case visiting:
		// cycle in the parent chain, treat this joint as a root
		return s.root.Mul4(s.joints[i].Local)
	}
	s.state[i] = visiting

	parent := s.joints[i].Parent
	var w mgl32.Mat4
	if parent < 0 || parent >= len(s.joints) || parent == i {
		w = s.root.Mul4(s.joints[i].Local)
	} else {
		w = s.worldOf(parent).Mul4(s.joints[i].Local)
	}

	s.world[i] = w
	s.state[i] = visited
	return w
}
