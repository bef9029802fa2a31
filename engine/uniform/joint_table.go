package uniform

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
)

// MaxSkinJoints is the number of slots in a joint table.
const MaxSkinJoints = 512

const skinJointStride = 112

// JointTableSize is the size in bytes of a full joint table record.
const JointTableSize = MaxSkinJoints * skinJointStride

// JointTable is a fixed-capacity joint palette. Slots beyond the live count hold identity.
type JointTable struct {
	joints []skin.JointMatrix
}

// NewJointTable creates a table with every slot set to identity.
func NewJointTable() *JointTable {
	t := &JointTable{joints: make([]skin.JointMatrix, MaxSkinJoints)}
	t.Reset()
	return t
}

// Reset sets every slot back to identity.
func (t *JointTable) Reset() {
	for i := range t.joints {
		t.joints[i] = skin.IdentityJoint()
	}
}

// Set replaces the whole palette. Joints beyond capacity are dropped and the remaining slots
// revert to identity.
//
// Parameters:
//   - joints: the posed joint matrices, indexed by joint ID
//
// Returns:
//   - int: the number of joints dropped for exceeding capacity
func (t *JointTable) Set(joints []skin.JointMatrix) int {
	n := copy(t.joints, joints)
	for i := n; i < len(t.joints); i++ {
		t.joints[i] = skin.IdentityJoint()
	}
	dropped := len(joints) - n
	if dropped > 0 {
		slog.Warn("joint table full, dropping joints", "capacity", len(t.joints), "dropped", dropped)
	}
	return dropped
}

// Joint returns the matrix stored at slot i, or identity when i is outside the table.
func (t *JointTable) Joint(i int) skin.JointMatrix {
	if i < 0 || i >= len(t.joints) {
		return skin.IdentityJoint()
	}
	return t.joints[i]
}

// Joints returns the full palette, including identity slots.
func (t *JointTable) Joints() []skin.JointMatrix {
	return t.joints
}

// Marshal serializes the whole table as the WGSL Joints struct.
//
// Returns:
//   - []byte: JointTableSize bytes
func (t *JointTable) Marshal() []byte {
	buf := make([]byte, JointTableSize)
	for i, j := range t.joints {
		g := GPUJointMatrix{Transform: j.Transform, Normal: j.Normal}
		g.MarshalTo(buf[i*skinJointStride:])
	}
	return buf
}
