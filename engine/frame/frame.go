// Package frame owns the redraw loop: it coalesces redraw requests from the host, applies
// queued actions, advances the camera from sampled input and hands one frame to the presenter.
package frame

import (
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
)

// RenderResult is the outcome of one Presenter.Render call.
type RenderResult int

const (
	// RenderSucceeded means a frame was submitted and presented.
	RenderSucceeded RenderResult = iota
	// RenderNoSurface means there was no surface to draw into, usually right after a resize.
	RenderNoSurface
	// RenderSurfaceLost means the surface texture could not be acquired.
	RenderSurfaceLost
	// RenderFailed means the frame failed for any other reason.
	RenderFailed
)

// String returns a human-readable name for the result.
func (r RenderResult) String() string {
	switch r {
	case RenderSucceeded:
		return "succeeded"
	case RenderNoSurface:
		return "no surface"
	case RenderSurfaceLost:
		return "surface lost"
	case RenderFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Presenter is the presentation sink the driver renders through.
type Presenter interface {
	// Presenter receives every record the driver's uniform state writes.
	uniform.Writer

	// Resize invalidates the surface and recreates it at the given size.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	Resize(width, height int)

	// RecreateSurface rebuilds the surface at the last size after it was lost.
	//
	// Returns:
	//   - error: an error if the surface could not be recreated
	RecreateSurface() error

	// SetBackgroundColor sets the clear color of later frames.
	//
	// Parameters:
	//   - color: RGBA in [0, 1]
	SetBackgroundColor(color [4]float32)

	// LoadModel decodes model bytes and replaces the current drawables, registering their slots
	// on state.
	//
	// Parameters:
	//   - name: the file name, used to pick the decoder and for logging
	//   - data: the file bytes
	//   - state: the uniform state that owns drawable slots
	//
	// Returns:
	//   - error: an error if the model could not be decoded or uploaded
	LoadModel(name string, data []byte, state *uniform.State) error

	// Animate advances the loaded model's animation. It is called once per frame before Render.
	//
	// Parameters:
	//   - dt: the clamped time since the previous frame
	Animate(dt time.Duration)

	// PlayAnimation starts a clip of the loaded model.
	//
	// Parameters:
	//   - clip: the clip index
	//   - mode: the playback mode
	//
	// Returns:
	//   - error: an error wrapping animator.ErrUnknownClip or animator.ErrUnknownMode
	PlayAnimation(clip int, mode animator.Mode) error

	// StopAnimation holds the current pose.
	StopAnimation()

	// Render draws and presents one frame.
	//
	// Parameters:
	//   - state: the uniform state, already holding this frame's camera and lights
	//
	// Returns:
	//   - RenderResult: the outcome
	Render(state *uniform.State) RenderResult
}

// Scheduler asks the host to call Driver.OnRedraw at its next opportunity.
type Scheduler interface {
	ScheduleRedraw()
}

// SchedulerFunc adapts an ordinary function to the Scheduler interface.
type SchedulerFunc func()

// ScheduleRedraw calls f().
func (f SchedulerFunc) ScheduleRedraw() {
	f()
}
