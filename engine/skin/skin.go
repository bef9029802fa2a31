// Package skin blends per-vertex joint influences and poses joint hierarchies.
package skin

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Influences is the number of joints that may affect a single vertex.
const Influences = 4

// JointMatrix pairs a joint's skinning transform with the matrix used to carry normals and tangents.
type JointMatrix struct {
	// Transform maps bind-pose model space to posed model space (world × inverse bind).
	Transform mgl32.Mat4
	// Normal is the inverse-transpose of the upper 3x3 of Transform.
	Normal mgl32.Mat3
}

// NewJointMatrix builds a JointMatrix from a skinning transform, deriving its normal matrix.
//
// Parameters:
//   - transform: the joint's world × inverse bind matrix
//
// Returns:
//   - JointMatrix: the transform and its derived normal matrix
func NewJointMatrix(transform mgl32.Mat4) JointMatrix {
	return JointMatrix{Transform: transform, Normal: common.NormalMatrix(transform)}
}

// IdentityJoint is the value used for unused joint slots.
func IdentityJoint() JointMatrix {
	return JointMatrix{Transform: mgl32.Ident4(), Normal: mgl32.Ident3()}
}

// Solve blends up to four joint matrices by their weights.
// Weights are applied as given and are never renormalised, so weights that do not sum to one
// scale the result. Each index must address an entry of joints; an out-of-range index panics in
// debug builds and is clamped to the last joint otherwise.
//
// Parameters:
//   - indices: joint indices for the four influences
//   - weights: blend weights for the four influences
//   - joints: the joint palette
//
// Returns:
//   - mgl32.Mat4: the blended skinning transform
//   - mgl32.Mat3: the blended normal matrix
func Solve(indices [Influences]uint32, weights [Influences]float32, joints []JointMatrix) (mgl32.Mat4, mgl32.Mat3) {
	if !common.Precondition(len(joints) > 0, "skin solve with an empty joint palette") {
		return mgl32.Ident4(), mgl32.Ident3()
	}

	var transform mgl32.Mat4
	var normal mgl32.Mat3
	last := uint32(len(joints) - 1)
	for i := 0; i < Influences; i++ {
		w := weights[i]
		if w == 0 {
			continue
		}
		idx := indices[i]
		if !common.Precondition(idx <= last, "joint index %d out of range [0, %d]", idx, last) {
			idx = last
		}
		j := &joints[idx]
		for k := 0; k < 16; k++ {
			transform[k] += w * j.Transform[k]
		}
		for k := 0; k < 9; k++ {
			normal[k] += w * j.Normal[k]
		}
	}
	return transform, normal
}

// Deform applies the blended skin to a position and normal. It mirrors the skinned vertex entry
// points of the toon program and is used for CPU-side bounds and verification.
//
// Parameters:
//   - position: bind-pose position
//   - normal: bind-pose normal
//   - indices: joint indices for the four influences
//   - weights: blend weights for the four influences
//   - joints: the joint palette
//
// Returns:
//   - mgl32.Vec3: the posed position
//   - mgl32.Vec3: the posed normal, normalised
func Deform(position, normal mgl32.Vec3, indices [Influences]uint32, weights [Influences]float32, joints []JointMatrix) (mgl32.Vec3, mgl32.Vec3) {
	transform, normalMat := Solve(indices, weights, joints)
	p := transform.Mul4x1(position.Vec4(1)).Vec3()
	n := common.Normalize3(normalMat.Mul3x1(normal))
	return p, n
}
