package frame

import (
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/profiler"
)

// DriverBuilderOption is a functional option used to configure a Driver during construction.
type DriverBuilderOption func(*driver)

// WithCamera sets the camera the driver advances. Defaults to camera.NewCamera().
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - DriverBuilderOption: a function that applies the camera to a driver
func WithCamera(cam camera.Camera) DriverBuilderOption {
	return func(d *driver) {
		d.camera = cam
	}
}

// WithPositionController sets the controller that integrates movement axes.
//
// Parameters:
//   - pc: the position controller
//
// Returns:
//   - DriverBuilderOption: a function that applies the controller to a driver
func WithPositionController(pc camera.PositionController) DriverBuilderOption {
	return func(d *driver) {
		d.controller = pc
	}
}

// WithLightParam sets the initial toon shading constants.
//
// Parameters:
//   - p: the constants
//
// Returns:
//   - DriverBuilderOption: a function that applies the constants to a driver
func WithLightParam(p light.Param) DriverBuilderOption {
	return func(d *driver) {
		d.lightParam = p.Normalized()
	}
}

// WithFocused sets whether the host window starts focused. Defaults to true.
//
// Parameters:
//   - focused: the initial focus flag
//
// Returns:
//   - DriverBuilderOption: a function that applies the focus flag to a driver
func WithFocused(focused bool) DriverBuilderOption {
	return func(d *driver) {
		d.focused = focused
	}
}

// WithSize records an initial drawable size, applied on the first frame.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - DriverBuilderOption: a function that applies the size to a driver
func WithSize(width, height int) DriverBuilderOption {
	return func(d *driver) {
		if width > 0 && height > 0 {
			d.width, d.height = width, height
			d.resized = true
		}
	}
}

// WithActionQueue sets the capacity of the action queue.
func WithActionQueue(size int) DriverBuilderOption {
	return func(d *driver) {
		d.queueSize = size
	}
}

// WithWaker sets a function Post calls after queueing, used to wake a host blocked waiting
// for events. It must be safe to call from any goroutine.
func WithWaker(wake func()) DriverBuilderOption {
	return func(d *driver) {
		d.waker = wake
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) DriverBuilderOption {
	return func(d *driver) {
		d.now = now
	}
}

// WithMachineOptions passes extra options to the control machine, such as the pointer capturer.
func WithMachineOptions(opts ...control.MachineBuilderOption) DriverBuilderOption {
	return func(d *driver) {
		d.machineOpts = append(d.machineOpts, opts...)
	}
}

// WithProfilerOptions passes options to the frame-time profiler.
func WithProfilerOptions(opts ...profiler.ProfilerOption) DriverBuilderOption {
	return func(d *driver) {
		d.profilerOpts = append(d.profilerOpts, opts...)
	}
}
