// Package uniform holds the host-side copy of every record a shading program reads and pushes
// full-record writes to the GPU. Nothing written here is ever read back from the device.
package uniform

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownSlot is returned when a write targets a drawable slot that was never registered
// or has been released.
var ErrUnknownSlot = errors.New("unknown drawable slot")

// Binding identifies one of the four records, matching bind groups 0 through 3.
type Binding int

const (
	BindingCamera Binding = iota
	BindingLights
	BindingInstance
	BindingJoints
)

// String returns a human-readable name for the binding.
func (b Binding) String() string {
	switch b {
	case BindingCamera:
		return "camera"
	case BindingLights:
		return "lights"
	case BindingInstance:
		return "instance"
	case BindingJoints:
		return "joints"
	default:
		return fmt.Sprintf("binding(%d)", int(b))
	}
}

// Writer receives full-record writes. Camera and light writes always use slot 0; instance and
// joint writes use the drawable's slot. data is only valid for the duration of the call.
type Writer interface {
	Write(binding Binding, slot int, data []byte)
}

// WriterFunc adapts an ordinary function to the Writer interface.
type WriterFunc func(binding Binding, slot int, data []byte)

// Write calls f(binding, slot, data).
func (f WriterFunc) Write(binding Binding, slot int, data []byte) {
	f(binding, slot, data)
}

// drawable is the per-slot state of one registered drawable.
type drawable struct {
	instance GPUInstanceUniform
	joints   *JointTable
}

// State is the canonical host copy of the camera, light table and per-drawable records.
// It is owned by the frame driver and must only be used from the render thread.
type State struct {
	w Writer

	camera camera.GPUCameraUniform
	lights *light.Table

	slots    map[int]*drawable
	nextSlot int
}

// NewState creates a State that pushes writes to w.
//
// Parameters:
//   - w: the destination of every record write
//   - param: the initial toon lighting parameters
//
// Returns:
//   - *State: the new state with no drawables registered
func NewState(w Writer, param light.Param) *State {
	return &State{
		w:      w,
		lights: light.NewTable(param),
		slots:  make(map[int]*drawable),
	}
}

// Camera returns the last camera record written.
func (s *State) Camera() camera.GPUCameraUniform {
	return s.camera
}

// WriteCamera replaces the camera record and writes it.
//
// Parameters:
//   - u: the new camera record
func (s *State) WriteCamera(u camera.GPUCameraUniform) {
	s.camera = u
	s.w.Write(BindingCamera, 0, u.Marshal())
}

// Lights returns the light table. Mutations become visible on the next WriteLights.
func (s *State) Lights() *light.Table {
	return s.lights
}

// WriteLights writes the whole light table.
func (s *State) WriteLights() {
	s.w.Write(BindingLights, 0, s.lights.Marshal())
}

// Register allocates a slot for a new drawable with an identity instance and joint table.
//
// Returns:
//   - int: the slot used for subsequent writes
func (s *State) Register() int {
	slot := s.nextSlot
	s.nextSlot++
	s.slots[slot] = &drawable{
		instance: NewInstanceUniform(mgl32.Ident4(), nil),
		joints:   NewJointTable(),
	}
	return slot
}

// Release forgets a slot. Later writes to it return ErrUnknownSlot.
func (s *State) Release(slot int) {
	delete(s.slots, slot)
}

// Slots returns the number of registered drawables.
func (s *State) Slots() int {
	return len(s.slots)
}

// Instance returns the last instance record written for slot.
func (s *State) Instance(slot int) (GPUInstanceUniform, error) {
	d, ok := s.slots[slot]
	if !ok {
		return GPUInstanceUniform{}, fmt.Errorf("instance of slot %d: %w", slot, ErrUnknownSlot)
	}
	return d.instance, nil
}

// WriteInstance derives the instance record from model and tex and writes it.
//
// Parameters:
//   - slot: the drawable slot
//   - model: the model-to-world transform
//   - tex: the texture coordinate transform, or nil for identity
//
// Returns:
//   - error: wraps ErrUnknownSlot if slot is not registered
func (s *State) WriteInstance(slot int, model mgl32.Mat4, tex *TextureTransform) error {
	d, ok := s.slots[slot]
	if !ok {
		return fmt.Errorf("write instance to slot %d: %w", slot, ErrUnknownSlot)
	}
	d.instance = NewInstanceUniform(model, tex)
	s.w.Write(BindingInstance, slot, d.instance.Marshal())
	return nil
}

// JointTable returns the joint table of slot.
func (s *State) JointTable(slot int) (*JointTable, error) {
	d, ok := s.slots[slot]
	if !ok {
		return nil, fmt.Errorf("joint table of slot %d: %w", slot, ErrUnknownSlot)
	}
	return d.joints, nil
}

// WriteJoints replaces the slot's joint palette and writes the full table.
// Slots past len(joints) are written as identity.
//
// Parameters:
//   - slot: the drawable slot
//   - joints: the posed palette
//
// Returns:
//   - int: the number of joints dropped for exceeding the layout capacity
//   - error: wraps ErrUnknownSlot if slot is not registered
func (s *State) WriteJoints(slot int, joints []skin.JointMatrix) (int, error) {
	d, ok := s.slots[slot]
	if !ok {
		return 0, fmt.Errorf("write joints to slot %d: %w", slot, ErrUnknownSlot)
	}
	dropped := d.joints.Set(joints)
	s.w.Write(BindingJoints, slot, d.joints.Marshal())
	return dropped, nil
}
