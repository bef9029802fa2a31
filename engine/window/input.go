package window

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
)

// hostActions are the window-level effects of reserved keys.
type hostActions interface {
	requestClose()
	toggleFullscreen()
}

// axisKeys maps movement keys to control axes.
var axisKeys = map[int]control.Axis{
	common.KeyW:         control.AxisForward,
	common.KeyS:         control.AxisBackward,
	common.KeyA:         control.AxisLeft,
	common.KeyD:         control.AxisRight,
	common.KeySpace:     control.AxisUp,
	common.KeyLeftShift: control.AxisDown,
}

// pointerButtons maps platform mouse buttons to control buttons.
var pointerButtons = map[int]control.Button{
	common.MouseButtonLeft:   control.ButtonLeft,
	common.MouseButtonRight:  control.ButtonRight,
	common.MouseButtonMiddle: control.ButtonMiddle,
}

// inputRouter translates platform events, expressed in GLFW key and button codes, into InputSink
// calls. It holds no platform state so the desktop bindings can be tested without a window.
type inputRouter struct {
	sink   control.InputSink
	host   hostActions
	onDrop func(paths []string)

	cursorX, cursorY float64
	anchored         bool
}

func newInputRouter(host hostActions) *inputRouter {
	return &inputRouter{host: host}
}

// key handles a key edge. Repeats are ignored; axes are level-triggered by press and release.
func (r *inputRouter) key(code int, pressed, repeat bool) {
	if r.sink == nil || repeat {
		return
	}
	if axis, ok := axisKeys[code]; ok {
		if pressed {
			r.sink.SetAxis(axis, 1)
		} else {
			r.sink.SetAxis(axis, 0)
		}
		return
	}
	if !pressed {
		return
	}
	switch code {
	case common.KeyEsc:
		r.host.requestClose()
	case common.KeyF10:
		r.sink.ToggleGUI()
	case common.KeyF11:
		r.host.toggleFullscreen()
	}
}

// scroll converts a vertical wheel offset into one zoom step in its direction.
func (r *inputRouter) scroll(yoff float64) {
	if r.sink == nil {
		return
	}
	switch {
	case yoff > 0:
		r.sink.Zoom(1)
	case yoff < 0:
		r.sink.Zoom(-1)
	}
}

// cursor records the pointer and, while the GUI is hidden, feeds the motion since the previous
// event to Look.
func (r *inputRouter) cursor(x, y float64) {
	if r.sink == nil {
		return
	}
	if r.anchored && !r.sink.GUIActive() {
		r.sink.Look(float32(x-r.cursorX), float32(y-r.cursorY))
	}
	r.cursorX, r.cursorY = x, y
	r.anchored = true
	r.sink.PointerMoved(float32(x), float32(y))
}

func (r *inputRouter) resetCursor() {
	r.anchored = false
}

func (r *inputRouter) button(code int, pressed bool) {
	if r.sink == nil {
		return
	}
	if b, ok := pointerButtons[code]; ok {
		r.sink.PointerButton(b, pressed)
	}
}

func (r *inputRouter) focus(focused bool) {
	if r.sink == nil {
		return
	}
	r.resetCursor()
	r.sink.SetFocus(focused)
}

func (r *inputRouter) resize(width, height int, scale float32) {
	if r.sink == nil {
		return
	}
	r.sink.Resize(width, height, scale)
}

func (r *inputRouter) drop(paths []string) {
	if r.onDrop != nil && len(paths) > 0 {
		r.onDrop(paths)
	}
}
