// Package control turns platform input events into the control state sampled once per frame.
// Each platform host translates its own events into calls on an InputSink; the Machine behind
// the sink is the same everywhere.
package control

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
)

// InputSink is the control surface every platform host drives.
type InputSink interface {
	// SetAxis sets one movement magnitude. Values are clamped to [0, 1], so repeated key-down
	// events saturate rather than accumulate.
	//
	// Parameters:
	//   - axis: the movement axis
	//   - value: 1 on key-down, 0 on key-up
	SetAxis(axis Axis, value float32)

	// Zoom adds wheel steps. Positive steps zoom in.
	//
	// Parameters:
	//   - step: the signed step count
	Zoom(step int)

	// Look accumulates a pointer delta until the next Sample.
	//
	// Parameters:
	//   - dx: horizontal delta in pixels
	//   - dy: vertical delta in pixels
	Look(dx, dy float32)

	// Resize forwards a new drawable size to the frame driver. Control state is unchanged.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	//   - scale: the content scale of the display
	Resize(width, height int, scale float32)

	// ToggleGUI flips the GUI flag and captures the pointer only while focused with the GUI hidden.
	//
	// Returns:
	//   - bool: the new GUI flag
	ToggleGUI() bool

	// GUIActive reports the GUI flag.
	//
	// Returns:
	//   - bool: true while the GUI owns the pointer
	GUIActive() bool

	// SetFocus records window focus and forwards it to the frame driver.
	//
	// Parameters:
	//   - focused: true when the window gained focus
	SetFocus(focused bool)

	// SetTheme records the host's appearance preference.
	//
	// Parameters:
	//   - theme: the preference
	SetTheme(theme Theme)

	// PointerMoved records the pointer position.
	//
	// Parameters:
	//   - x: horizontal position in window pixels
	//   - y: vertical position in window pixels
	PointerMoved(x, y float32)

	// PointerButton records a button edge. Repeated presses without a release produce one edge.
	//
	// Parameters:
	//   - button: the pointer button
	//   - pressed: true on press, false on release
	PointerButton(button Button, pressed bool)

	// RequestRender asks the frame driver for one frame.
	RequestRender()
}

// PointerCapturer grabs or releases the pointer on the host.
type PointerCapturer interface {
	SetCaptured(captured bool)
}

// Forwarder receives the events the machine passes through to the frame driver.
type Forwarder interface {
	Resize(width, height int, scale float32)
	SetFocus(focused bool)
	RequestRedraw()
}

// Machine owns the control state. It is driven from the host's event thread and sampled by the
// frame driver on the same thread.
type Machine interface {
	InputSink

	// Sample returns the current state and resets the per-frame accumulators: look delta,
	// zoom steps and button edges.
	//
	// Returns:
	//   - State: the snapshot
	Sample() State

	// Peek returns the current state without resetting anything.
	//
	// Returns:
	//   - State: the snapshot
	Peek() State
}

// machine is the implementation of the Machine interface.
type machine struct {
	state     State
	capturer  PointerCapturer
	forwarder Forwarder
}

var _ Machine = &machine{}

// NewMachine creates a Machine. Without a capturer or forwarder the corresponding side effects
// are skipped.
//
// Parameters:
//   - options: functional options to configure the machine
//
// Returns:
//   - Machine: the machine
func NewMachine(options ...MachineBuilderOption) Machine {
	m := &machine{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *machine) SetAxis(axis Axis, value float32) {
	if int(axis) >= AxisCount {
		return
	}
	m.state.Axes[axis] = common.Saturate(value)
}

func (m *machine) Zoom(step int) {
	m.state.ZoomSteps += step
}

func (m *machine) Look(dx, dy float32) {
	m.state.LookDX += dx
	m.state.LookDY += dy
}

func (m *machine) Resize(width, height int, scale float32) {
	if m.forwarder != nil {
		m.forwarder.Resize(width, height, scale)
	}
}

func (m *machine) ToggleGUI() bool {
	m.state.GUIActive = !m.state.GUIActive
	if m.capturer != nil {
		m.capturer.SetCaptured(m.state.Focused && !m.state.GUIActive)
	}
	return m.state.GUIActive
}

func (m *machine) GUIActive() bool {
	return m.state.GUIActive
}

func (m *machine) SetFocus(focused bool) {
	m.state.Focused = focused
	if focused && !m.state.GUIActive && m.capturer != nil {
		m.capturer.SetCaptured(true)
	}
	if m.forwarder != nil {
		m.forwarder.SetFocus(focused)
	}
}

func (m *machine) SetTheme(theme Theme) {
	m.state.Theme = theme
}

func (m *machine) PointerMoved(x, y float32) {
	m.state.PointerX, m.state.PointerY = x, y
}

func (m *machine) PointerButton(button Button, pressed bool) {
	if int(button) >= ButtonCount {
		return
	}
	held := m.state.Held[button]
	switch {
	case pressed && !held:
		m.state.Pressed[button] = true
	case !pressed && held:
		m.state.Released[button] = true
	}
	m.state.Held[button] = pressed
}

func (m *machine) RequestRender() {
	if m.forwarder != nil {
		m.forwarder.RequestRedraw()
	}
}

func (m *machine) Sample() State {
	s := m.state
	m.state.LookDX, m.state.LookDY = 0, 0
	m.state.ZoomSteps = 0
	m.state.Pressed = [ButtonCount]bool{}
	m.state.Released = [ButtonCount]bool{}
	return s
}

func (m *machine) Peek() State {
	return m.state
}
