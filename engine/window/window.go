package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the desktop host: it owns the platform window, translates its events into calls on
// a control.InputSink, and runs the redraw-on-demand event loop.
//
// Every method except Wake must be called on the thread that created the window.
type Window interface {
	control.PointerCapturer

	// Bind routes keyboard, pointer, focus, resize and scroll events to sink.
	//
	// Parameters:
	//   - sink: the control surface, usually the frame driver's machine
	Bind(sink control.InputSink)

	// SetUpdateCallback sets the function called once per loop iteration after events are
	// processed, before any scheduled redraw.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetRedrawCallback sets the function that renders one frame. It runs once for every
	// ScheduleRedraw, coalesced per loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetRedrawCallback(callback func())

	// SetDropCallback sets the function receiving paths dropped onto the window.
	//
	// Parameters:
	//   - callback: function receiving the dropped paths
	SetDropCallback(callback func(paths []string))

	// ScheduleRedraw marks a frame as wanted. The event loop stops blocking until it has run.
	ScheduleRedraw()

	// Wake unblocks an event loop waiting for events. Safe to call from any goroutine.
	Wake()

	// RequestClose ends the event loop after the current iteration.
	RequestClose()

	// ToggleFullscreen switches between windowed mode and fullscreen on the primary monitor.
	ToggleFullscreen()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the event loop until the window is closed. The loop blocks waiting
	// for events while no redraw is scheduled.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// ContentScale returns the display content scale, 1 on standard-density displays.
	ContentScale() float32
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth, minHeight, maxWidth and maxHeight bound interactive resizing. Zero is unbounded.
	minWidth, minHeight int
	maxWidth, maxHeight int

	// width and height are the framebuffer size in pixels.
	width, height int

	// scale is the display content scale.
	scale float32

	// fullscreen requests fullscreen at creation; afterwards it tracks the current mode.
	fullscreen bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	router *inputRouter

	redrawPending bool

	onUpdate func()
	onRedraw func()
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-toon",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		scale:     1,
	}
	for _, opt := range options {
		opt(w)
	}
	w.router = newInputRouter(w)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) Bind(sink control.InputSink) {
	w.router.sink = sink
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetRedrawCallback(callback func()) {
	w.onRedraw = callback
}

func (w *engineWindow) SetDropCallback(callback func(paths []string)) {
	w.router.onDrop = callback
}

func (w *engineWindow) ScheduleRedraw() {
	w.redrawPending = true
}

func (w *engineWindow) Wake() {
	platformWake()
}

func (w *engineWindow) SetCaptured(captured bool) {
	// the next cursor event re-anchors so the mode switch does not register as a look
	w.router.resetCursor()
	platformSetCaptured(w, captured)
}

func (w *engineWindow) ToggleFullscreen() {
	platformSetFullscreen(w, !w.fullscreen)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w, !w.redrawPending); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		if w.redrawPending {
			w.redrawPending = false
			if w.onRedraw != nil {
				w.onRedraw()
			}
		}
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) ContentScale() float32 {
	return w.scale
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

// requestClose and the fullscreen toggle are the host-level actions the input router triggers.
func (w *engineWindow) requestClose() {
	w.RequestClose()
}

func (w *engineWindow) toggleFullscreen() {
	w.ToggleFullscreen()
}
