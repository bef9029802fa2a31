package frame

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/profiler"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
)

// Default queue and timing limits.
const (
	DefaultActionQueue = 64
	MaxFrameDelta      = 100 * time.Millisecond
)

// Driver produces frames on demand. Every method except Post must be called on the render
// thread, which is also the thread the host delivers input events on.
type Driver interface {
	control.Forwarder

	// Post queues an action for the start of the next frame. It is safe to call from any
	// goroutine. When the queue is full the action is dropped.
	//
	// Parameters:
	//   - a: the action
	//
	// Returns:
	//   - bool: true if the action was queued
	Post(a Action) bool

	// Pump requests a redraw if actions are waiting. Hosts call it after waking from an event
	// wait so that off-thread posts reach the screen.
	Pump()

	// OnRedraw renders exactly one frame. The host scheduler calls it once per ScheduleRedraw.
	OnRedraw()

	// Size returns the latest recorded drawable size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Stats returns the rolling frame-time statistics.
	//
	// Returns:
	//   - profiler.Stats: the statistics of the last frames
	Stats() profiler.Stats

	// Machine returns the control machine the host feeds input into.
	//
	// Returns:
	//   - control.Machine: the machine whose forwarder is this driver
	Machine() control.Machine

	// Camera returns the viewer camera.
	//
	// Returns:
	//   - camera.Camera: the camera advanced each frame
	Camera() camera.Camera

	// State returns the uniform state handed to the presenter.
	//
	// Returns:
	//   - *uniform.State: the state
	State() *uniform.State
}

// driver is the implementation of the Driver interface.
type driver struct {
	presenter  Presenter
	scheduler  Scheduler
	machine    control.Machine
	camera     camera.Camera
	controller camera.PositionController
	state      *uniform.State
	perf       *profiler.Profiler

	actions chan Action
	waker   func()
	now     func() time.Time

	pending  bool
	deferred bool
	focused  bool
	resized  bool
	width    int
	height   int
	scale    float32

	lastFrame time.Time

	// construction-only settings
	lightParam   light.Param
	queueSize    int
	machineOpts  []control.MachineBuilderOption
	profilerOpts []profiler.ProfilerOption
}

var _ Driver = &driver{}

// NewDriver creates a Driver rendering through presenter and asking scheduler for redraws.
// The driver builds its own control machine, forwarding resize, focus and render requests to
// itself. It starts focused.
//
// Parameters:
//   - presenter: the presentation sink
//   - scheduler: the host redraw hook
//   - options: functional options to configure the driver
//
// Returns:
//   - Driver: the driver
func NewDriver(presenter Presenter, scheduler Scheduler, options ...DriverBuilderOption) Driver {
	d := &driver{
		presenter:  presenter,
		scheduler:  scheduler,
		now:        time.Now,
		focused:    true,
		scale:      1,
		lightParam: light.DefaultParam(),
		queueSize:  DefaultActionQueue,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.camera == nil {
		d.camera = camera.NewCamera()
	}
	if d.controller == nil {
		d.controller = camera.NewPositionController()
	}
	d.actions = make(chan Action, max(d.queueSize, 1))
	d.state = uniform.NewState(presenter, d.lightParam)
	d.perf = profiler.NewProfiler(d.profilerOpts...)
	d.machine = control.NewMachine(append([]control.MachineBuilderOption{
		control.WithForwarder(d),
		control.WithFocused(d.focused),
	}, d.machineOpts...)...)
	return d
}

func (d *driver) RequestRedraw() {
	if !d.focused {
		d.deferred = true
		return
	}
	if d.pending {
		return
	}
	d.pending = true
	d.scheduler.ScheduleRedraw()
}

func (d *driver) Resize(width, height int, scale float32) {
	if width <= 0 || height <= 0 {
		slog.Debug("ignoring resize to empty surface", "width", width, "height", height)
		return
	}
	d.width, d.height = width, height
	if scale > 0 {
		d.scale = scale
	}
	d.resized = true
	d.RequestRedraw()
}

func (d *driver) SetFocus(focused bool) {
	d.focused = focused
	if !focused {
		// Time spent unfocused must not turn into camera motion.
		d.lastFrame = time.Time{}
		return
	}
	if d.deferred {
		d.deferred = false
		d.RequestRedraw()
	}
}

func (d *driver) Post(a Action) bool {
	select {
	case d.actions <- a:
	default:
		slog.Warn("action queue full, dropping action", "action", a.String())
		return false
	}
	if d.waker != nil {
		d.waker()
	}
	return true
}

func (d *driver) Pump() {
	if len(d.actions) > 0 {
		d.RequestRedraw()
	}
}

func (d *driver) OnRedraw() {
	d.pending = false

	if d.resized {
		d.resized = false
		d.presenter.Resize(d.width, d.height)
		d.camera.SetAspect(float32(d.width) / float32(d.height))
	}

	d.drainActions()

	now := d.now()
	var dt time.Duration
	if !d.lastFrame.IsZero() {
		dt = min(now.Sub(d.lastFrame), MaxFrameDelta)
	}
	d.lastFrame = now

	s := d.machine.Sample()
	d.camera.Rotate(s.LookDX, s.LookDY)
	d.camera.Zoom(s.ZoomSteps)
	d.controller.SetMovement(s.Movement())
	d.controller.Update(dt, d.camera)
	d.presenter.Animate(dt)

	d.state.WriteCamera(d.camera.Uniform())
	d.state.WriteLights()

	switch result := d.presenter.Render(d.state); result {
	case RenderSucceeded:
		if dt > 0 {
			d.perf.Record(dt)
		}
		d.RequestRedraw()
	case RenderNoSurface, RenderSurfaceLost:
		slog.Debug("recreating surface", "result", result.String(), "width", d.width, "height", d.height)
		if err := d.presenter.RecreateSurface(); err != nil {
			slog.Warn("failed to recreate surface", "error", err)
		}
		d.RequestRedraw()
	default:
		slog.Warn("frame failed", "result", result.String())
		d.RequestRedraw()
	}
}

func (d *driver) drainActions() {
	for {
		select {
		case a := <-d.actions:
			if err := a.apply(d); err != nil {
				slog.Error("failed to apply action", "action", a.String(), "error", err)
			}
		default:
			return
		}
	}
}

func (d *driver) Size() (int, int) {
	return d.width, d.height
}

func (d *driver) Stats() profiler.Stats {
	return d.perf.Stats()
}

func (d *driver) Machine() control.Machine {
	return d.machine
}

func (d *driver) Camera() camera.Camera {
	return d.camera
}

func (d *driver) State() *uniform.State {
	return d.state
}
