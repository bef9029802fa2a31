package uniform

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	binding Binding
	slot    int
	size    int
	data    []byte
}

type recorder struct {
	writes []write
}

func (r *recorder) Write(binding Binding, slot int, data []byte) {
	cp := append([]byte(nil), data...)
	r.writes = append(r.writes, write{binding: binding, slot: slot, size: len(data), data: cp})
}

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestRecordSizes(t *testing.T) {
	var inst GPUInstanceUniform
	assert.Equal(t, 176, inst.Size())
	var joint GPUJointMatrix
	assert.Equal(t, 112, joint.Size())
	assert.Equal(t, 512*112, JointTableSize)
	assert.Len(t, NewJointTable().Marshal(), JointTableSize)
}

func TestStateWritesFullRecords(t *testing.T) {
	rec := &recorder{}
	s := NewState(rec, light.DefaultParam())

	s.WriteCamera(camera.NewCamera().Uniform())
	s.WriteLights()
	slot := s.Register()
	require.NoError(t, s.WriteInstance(slot, mgl32.Translate3D(1, 2, 3), nil))
	_, err := s.WriteJoints(slot, []skin.JointMatrix{skin.IdentityJoint()})
	require.NoError(t, err)

	require.Len(t, rec.writes, 4)
	assert.Equal(t, BindingCamera, rec.writes[0].binding)
	assert.Equal(t, 96, rec.writes[0].size)
	assert.Equal(t, BindingLights, rec.writes[1].binding)
	assert.Equal(t, light.GPULightTableSize, rec.writes[1].size)
	assert.Equal(t, BindingInstance, rec.writes[2].binding)
	assert.Equal(t, slot, rec.writes[2].slot)
	assert.Equal(t, 176, rec.writes[2].size)
	assert.Equal(t, BindingJoints, rec.writes[3].binding)
	assert.Equal(t, 512*112, rec.writes[3].size)
}

func TestUnknownSlot(t *testing.T) {
	s := NewState(WriterFunc(func(Binding, int, []byte) {
		t.Fatal("no write expected")
	}), light.DefaultParam())

	err := s.WriteInstance(3, mgl32.Ident4(), nil)
	assert.True(t, errors.Is(err, ErrUnknownSlot))

	slot := s.Register()
	s.Release(slot)
	_, err = s.WriteJoints(slot, nil)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	_, err = s.Instance(slot)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	assert.Equal(t, 0, s.Slots())
}

func TestInstanceNormalDerivedFromModel(t *testing.T) {
	rec := &recorder{}
	s := NewState(rec, light.DefaultParam())
	slot := s.Register()
	model := mgl32.Scale3D(2, 1, 1)
	require.NoError(t, s.WriteInstance(slot, model, nil))

	inst, err := s.Instance(slot)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inst.Normal[0], 1e-6)
	assert.InDelta(t, 1, inst.Normal[4], 1e-6)

	buf := rec.writes[0].data
	assert.InDelta(t, 2, f32At(buf, 0), 1e-6)
	// normal column 0 starts at 64, column 1 at 80
	assert.InDelta(t, 0.5, f32At(buf, 64), 1e-6)
	assert.Equal(t, float32(0), f32At(buf, 76))
	assert.InDelta(t, 1, f32At(buf, 84), 1e-6)
	// identity texcoord transform at 112
	assert.Equal(t, float32(1), f32At(buf, 112))
	assert.Equal(t, float32(1), f32At(buf, 112+5*4))
}

func TestJointTableIdentityFill(t *testing.T) {
	table := NewJointTable()
	posed := skin.NewJointMatrix(mgl32.Translate3D(0, 5, 0))
	dropped := table.Set([]skin.JointMatrix{posed, posed})
	assert.Equal(t, 0, dropped)
	assert.Equal(t, posed, table.Joint(1))
	assert.Equal(t, skin.IdentityJoint(), table.Joint(2))
	assert.Equal(t, skin.IdentityJoint(), table.Joint(MaxSkinJoints))

	table.Set([]skin.JointMatrix{posed})
	assert.Equal(t, skin.IdentityJoint(), table.Joint(1))

	buf := table.Marshal()
	// translation y of joint 0 lives at column 3 row 1
	assert.Equal(t, float32(5), f32At(buf, 13*4))
	// joint 1 transform is identity
	assert.Equal(t, float32(1), f32At(buf, skinJointStride))
	assert.Equal(t, float32(0), f32At(buf, skinJointStride+13*4))
}

func TestJointTableDropsOverflow(t *testing.T) {
	table := NewJointTable()
	joints := make([]skin.JointMatrix, MaxSkinJoints+3)
	for i := range joints {
		joints[i] = skin.IdentityJoint()
	}
	assert.Equal(t, 3, table.Set(joints))
	assert.Len(t, table.Joints(), MaxSkinJoints)
}

func TestTextureTransform(t *testing.T) {
	var none *TextureTransform
	assert.Equal(t, mgl32.Ident4(), none.Matrix())

	tt := &TextureTransform{
		Scale:    mgl32.Vec2{2, 2},
		Rotation: float32(math.Pi / 2),
		Offset:   mgl32.Vec2{0.5, 0},
	}
	// scale (1,0) -> (2,0), rotate -> (0,2), offset -> (0.5,2)
	got := tt.Apply(mgl32.Vec2{1, 0})
	assert.InDelta(t, 0.5, got[0], 1e-5)
	assert.InDelta(t, 2, got[1], 1e-5)

	id := IdentityTextureTransform()
	got = id.Apply(mgl32.Vec2{0.25, 0.75})
	assert.InDelta(t, 0.25, got[0], 1e-6)
	assert.InDelta(t, 0.75, got[1], 1e-6)
}
