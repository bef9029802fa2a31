package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	closed      int
	fullscreens int
}

func (h *fakeHost) requestClose()     { h.closed++ }
func (h *fakeHost) toggleFullscreen() { h.fullscreens++ }

type fakeForwarder struct {
	sizes   [][3]float32
	focus   []bool
	redraws int
}

func (f *fakeForwarder) Resize(width, height int, scale float32) {
	f.sizes = append(f.sizes, [3]float32{float32(width), float32(height), scale})
}
func (f *fakeForwarder) SetFocus(focused bool) { f.focus = append(f.focus, focused) }
func (f *fakeForwarder) RequestRedraw()        { f.redraws++ }

type fakeCapturer struct {
	captured []bool
}

func (c *fakeCapturer) SetCaptured(captured bool) { c.captured = append(c.captured, captured) }

func newTestRouter() (*inputRouter, control.Machine, *fakeHost, *fakeForwarder, *fakeCapturer) {
	host := &fakeHost{}
	fwd := &fakeForwarder{}
	capt := &fakeCapturer{}
	m := control.NewMachine(
		control.WithForwarder(fwd),
		control.WithPointerCapturer(capt),
		control.WithFocused(true),
	)
	r := newInputRouter(host)
	r.sink = m
	return r, m, host, fwd, capt
}

func TestMovementKeys(t *testing.T) {
	tests := []struct {
		key  int
		axis control.Axis
	}{
		{common.KeyW, control.AxisForward},
		{common.KeyS, control.AxisBackward},
		{common.KeyA, control.AxisLeft},
		{common.KeyD, control.AxisRight},
		{common.KeySpace, control.AxisUp},
		{common.KeyLeftShift, control.AxisDown},
	}
	for _, tt := range tests {
		t.Run(tt.axis.String(), func(t *testing.T) {
			r, m, _, _, _ := newTestRouter()

			r.key(tt.key, true, false)
			assert.Equal(t, float32(1), m.Peek().Axis(tt.axis))

			// Key repeat neither accumulates nor releases.
			r.key(tt.key, true, true)
			assert.Equal(t, float32(1), m.Peek().Axis(tt.axis))

			r.key(tt.key, false, false)
			assert.Zero(t, m.Peek().Axis(tt.axis))
		})
	}
}

func TestReservedKeys(t *testing.T) {
	r, m, host, _, capt := newTestRouter()

	r.key(common.KeyF10, true, false)
	assert.True(t, m.GUIActive())
	assert.Equal(t, []bool{false}, capt.captured)
	r.key(common.KeyF10, false, false)
	assert.True(t, m.GUIActive())

	r.key(common.KeyF11, true, false)
	assert.Equal(t, 1, host.fullscreens)

	r.key(common.KeyEsc, true, false)
	assert.Equal(t, 1, host.closed)

	// Releases of reserved keys do nothing.
	r.key(common.KeyEsc, false, false)
	assert.Equal(t, 1, host.closed)
}

func TestScrollZooms(t *testing.T) {
	r, m, _, _, _ := newTestRouter()

	r.scroll(2.5)
	r.scroll(1)
	r.scroll(-0.5)
	r.scroll(0)
	assert.Equal(t, 1, m.Peek().ZoomSteps)
}

func TestCursorFeedsLookOnlyWithoutGUI(t *testing.T) {
	r, m, _, _, _ := newTestRouter()

	// The first event anchors the pointer.
	r.cursor(100, 100)
	assert.Zero(t, m.Peek().LookDX)

	r.cursor(110, 95)
	s := m.Sample()
	assert.Equal(t, float32(10), s.LookDX)
	assert.Equal(t, float32(-5), s.LookDY)
	assert.Equal(t, float32(110), s.PointerX)

	m.ToggleGUI()
	r.cursor(200, 200)
	s = m.Sample()
	assert.Zero(t, s.LookDX)
	assert.Equal(t, float32(200), s.PointerX)

	m.ToggleGUI()
	r.resetCursor()
	r.cursor(500, 500)
	assert.Zero(t, m.Peek().LookDX)
}

func TestButtonsFocusAndResize(t *testing.T) {
	r, m, _, fwd, capt := newTestRouter()

	r.button(common.MouseButtonRight, true)
	r.button(7, true)
	s := m.Sample()
	assert.True(t, s.Pressed[control.ButtonRight])
	assert.True(t, s.Held[control.ButtonRight])

	r.focus(false)
	r.focus(true)
	assert.Equal(t, []bool{false, true}, fwd.focus)
	assert.Equal(t, []bool{true}, capt.captured)

	r.resize(1920, 1080, 2)
	require.Len(t, fwd.sizes, 1)
	assert.Equal(t, [3]float32{1920, 1080, 2}, fwd.sizes[0])
}

func TestDropAndUnboundRouter(t *testing.T) {
	r := newInputRouter(&fakeHost{})

	// No sink bound: events are ignored.
	r.key(common.KeyW, true, false)
	r.scroll(1)
	r.cursor(1, 1)

	var got []string
	r.drop([]string{"a.glb"})
	r.onDrop = func(paths []string) { got = paths }
	r.drop(nil)
	assert.Nil(t, got)
	r.drop([]string{"fox.glb", "b.glb"})
	assert.Equal(t, []string{"fox.glb", "b.glb"}, got)
}
