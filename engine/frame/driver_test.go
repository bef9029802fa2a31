package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/profiler"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresenter struct {
	writes     []uniform.Binding
	resizes    [][2]int
	renders    int
	recreates  int
	background [4]float32
	loaded     []string
	loadErr    error
	results    []RenderResult
	animated   []time.Duration
	played     [][2]int
	playErr    error
	stops      int
}

func (p *fakePresenter) Write(binding uniform.Binding, slot int, data []byte) {
	p.writes = append(p.writes, binding)
}

func (p *fakePresenter) Resize(width, height int) {
	p.resizes = append(p.resizes, [2]int{width, height})
}

func (p *fakePresenter) RecreateSurface() error {
	p.recreates++
	return nil
}

func (p *fakePresenter) SetBackgroundColor(color [4]float32) {
	p.background = color
}

func (p *fakePresenter) LoadModel(name string, data []byte, state *uniform.State) error {
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = append(p.loaded, name)
	state.Register()
	return nil
}

func (p *fakePresenter) Animate(dt time.Duration) {
	p.animated = append(p.animated, dt)
}

func (p *fakePresenter) PlayAnimation(clip int, mode animator.Mode) error {
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, [2]int{clip, int(mode)})
	return nil
}

func (p *fakePresenter) StopAnimation() {
	p.stops++
}

func (p *fakePresenter) Render(state *uniform.State) RenderResult {
	p.renders++
	if len(p.results) == 0 {
		return RenderSucceeded
	}
	r := p.results[0]
	p.results = p.results[1:]
	return r
}

type countingScheduler struct {
	calls int
}

func (s *countingScheduler) ScheduleRedraw() {
	s.calls++
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDriver(opts ...DriverBuilderOption) (Driver, *fakePresenter, *countingScheduler, *fakeClock) {
	p := &fakePresenter{}
	s := &countingScheduler{}
	c := &fakeClock{t: time.Unix(100, 0)}
	opts = append([]DriverBuilderOption{
		WithClock(c.now),
		WithProfilerOptions(profiler.WithLogInterval(0)),
	}, opts...)
	return NewDriver(p, s, opts...), p, s, c
}

func TestResizeCoalescing(t *testing.T) {
	d, p, s, _ := newTestDriver()

	for i := 1; i <= 5; i++ {
		d.Resize(100*i, 50*i, 1)
	}
	assert.Equal(t, 1, s.calls)

	d.OnRedraw()
	assert.Equal(t, [][2]int{{500, 250}}, p.resizes)
	assert.Equal(t, 1, p.renders)
	assert.InDelta(t, 2.0, d.Camera().Aspect(), 1e-6)

	w, h := d.Size()
	assert.Equal(t, 500, w)
	assert.Equal(t, 250, h)

	// The next frame does not resize again.
	d.OnRedraw()
	assert.Len(t, p.resizes, 1)
}

func TestZeroResizeIsIgnored(t *testing.T) {
	d, p, s, _ := newTestDriver(WithSize(640, 480))

	d.Resize(0, 0, 1)
	assert.Zero(t, s.calls)

	d.OnRedraw()
	assert.Equal(t, [][2]int{{640, 480}}, p.resizes)
}

func TestPendingRedrawIsNotRescheduled(t *testing.T) {
	d, _, s, _ := newTestDriver()

	d.RequestRedraw()
	d.RequestRedraw()
	d.Machine().RequestRender()
	assert.Equal(t, 1, s.calls)

	d.OnRedraw()
	// A successful frame asks for the next one.
	assert.Equal(t, 2, s.calls)
}

func TestFocusLossDefersRedraw(t *testing.T) {
	d, p, s, _ := newTestDriver()

	d.Machine().SetFocus(false)
	d.RequestRedraw()
	d.Resize(300, 200, 1)
	d.RequestRedraw()
	assert.Zero(t, s.calls)

	d.Machine().SetFocus(true)
	assert.Equal(t, 1, s.calls)

	d.OnRedraw()
	assert.Equal(t, [][2]int{{300, 200}}, p.resizes)
}

func TestInFlightFrameRendersAfterFocusLoss(t *testing.T) {
	d, p, s, _ := newTestDriver()

	d.RequestRedraw()
	d.SetFocus(false)
	d.OnRedraw()

	assert.Equal(t, 1, p.renders)
	// The follow-up request is held until focus returns.
	assert.Equal(t, 1, s.calls)
	d.SetFocus(true)
	assert.Equal(t, 2, s.calls)
}

func TestSurfaceLossRecreates(t *testing.T) {
	tests := []struct {
		name   string
		result RenderResult
	}{
		{"no surface", RenderNoSurface},
		{"surface lost", RenderSurfaceLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, p, s, c := newTestDriver()
			p.results = []RenderResult{RenderSucceeded, tt.result}

			d.OnRedraw()
			c.advance(16 * time.Millisecond)
			d.OnRedraw()

			assert.Equal(t, 1, p.recreates)
			assert.Equal(t, 2, s.calls)
			assert.Zero(t, d.Stats().Samples)
		})
	}
}

func TestFailedFrameRequestsAnother(t *testing.T) {
	d, p, s, _ := newTestDriver()
	p.results = []RenderResult{RenderFailed}

	d.OnRedraw()
	assert.Zero(t, p.recreates)
	assert.Equal(t, 1, s.calls)
}

func TestFrameWritesCameraThenLights(t *testing.T) {
	d, p, _, _ := newTestDriver()

	d.OnRedraw()
	assert.Equal(t, []uniform.Binding{uniform.BindingCamera, uniform.BindingLights}, p.writes)
	assert.Equal(t, d.Camera().Uniform(), d.State().Camera())
}

func TestActionsApplyBeforeRender(t *testing.T) {
	d, p, _, _ := newTestDriver()

	param := light.DefaultParam()
	param.Start, param.Stop = 0.9, 0.2
	require.True(t, d.Post(SetLightParam(param)))
	require.True(t, d.Post(SetOutline(0.01, 0.25)))
	require.True(t, d.Post(SetBackgroundColor([4]float32{0.8, 0.8, 1, 1})))
	require.True(t, d.Post(LoadModel("fox.glb", []byte("glb"))))
	require.True(t, d.Post(SetLights([]light.Light{
		light.NewLight(light.LightTypePoint, light.WithPosition(0, 0, 5)),
	})))

	d.OnRedraw()

	lights := d.State().Lights()
	assert.InDelta(t, 0.2, lights.Param().Start, 1e-6)
	assert.InDelta(t, 0.9, lights.Param().Stop, 1e-6)
	size, darken := lights.Outline()
	assert.InDelta(t, 0.01, size, 1e-6)
	assert.InDelta(t, 0.25, darken, 1e-6)
	point, _, _ := lights.Counts()
	assert.Equal(t, 1, point)
	assert.Equal(t, [4]float32{0.8, 0.8, 1, 1}, p.background)
	assert.Equal(t, []string{"fox.glb"}, p.loaded)
	assert.Equal(t, 1, d.State().Slots())
}

func TestFailingActionDoesNotStopFrame(t *testing.T) {
	d, p, _, _ := newTestDriver()
	p.loadErr = errors.New("bad magic")

	d.Post(LoadModel("broken.glb", nil))
	d.Post(SetOutline(0.02, 0.5))
	d.OnRedraw()

	size, _ := d.State().Lights().Outline()
	assert.InDelta(t, 0.02, size, 1e-6)
	assert.Equal(t, 1, p.renders)
}

func TestPostQueueAndWaker(t *testing.T) {
	wakes := 0
	d, _, s, _ := newTestDriver(WithActionQueue(1), WithWaker(func() { wakes++ }))

	assert.True(t, d.Post(SetOutline(0, 0)))
	assert.False(t, d.Post(SetOutline(1, 1)))
	assert.Equal(t, 1, wakes)

	d.Pump()
	assert.Equal(t, 1, s.calls)

	d.OnRedraw()
	d.Pump()
	// Nothing queued: the only new request came from the successful frame.
	assert.Equal(t, 2, s.calls)
}

func TestInputMovesCamera(t *testing.T) {
	d, _, _, c := newTestDriver(WithCamera(camera.NewCamera(camera.WithEye(0, 0, 0))))
	m := d.Machine()

	// The first frame has no previous timestamp and does not move.
	m.SetAxis(control.AxisForward, 1)
	d.OnRedraw()
	assert.Equal(t, float32(0), d.Camera().Eye().X())

	c.advance(10 * time.Millisecond)
	m.Zoom(1)
	d.OnRedraw()
	assert.InDelta(t, 0.1, d.Camera().Eye().X(), 1e-5)
	assert.InDelta(t, camera.DefaultFov-camera.FovStep, d.Camera().Fov(), 1e-5)

	m.SetAxis(control.AxisForward, 0)
	m.Look(10, 10)
	c.advance(10 * time.Millisecond)
	d.OnRedraw()
	yaw, pitch := d.Camera().YawPitch()
	assert.InDelta(t, 3, yaw, 1e-5)
	assert.InDelta(t, -3, pitch, 1e-5)
	assert.InDelta(t, 0.1, d.Camera().Eye().X(), 1e-5)
}

func TestFrameDeltaIsClampedAndTracked(t *testing.T) {
	d, _, _, c := newTestDriver(WithCamera(camera.NewCamera(camera.WithEye(0, 0, 0))))
	d.Machine().SetAxis(control.AxisUp, 1)

	d.OnRedraw()
	c.advance(5 * time.Second)
	d.OnRedraw()
	assert.InDelta(t, 1.0, d.Camera().Eye().Y(), 1e-5)

	c.advance(16 * time.Millisecond)
	d.OnRedraw()
	s := d.Stats()
	assert.Equal(t, 2, s.Samples)
	assert.Equal(t, 16*time.Millisecond, s.Min)
	assert.Equal(t, MaxFrameDelta, s.Max)
}

func TestFrameAdvancesAnimationBeforeRender(t *testing.T) {
	d, p, _, c := newTestDriver()

	d.OnRedraw()
	c.advance(16 * time.Millisecond)
	d.OnRedraw()
	c.advance(time.Second)
	d.OnRedraw()

	assert.Equal(t, []time.Duration{0, 16 * time.Millisecond, MaxFrameDelta}, p.animated)
	assert.Equal(t, 3, p.renders)
}

func TestAnimationActions(t *testing.T) {
	d, p, _, _ := newTestDriver()

	require.True(t, d.Post(PlayAnimation(2, animator.ModeLoop)))
	require.True(t, d.Post(StopAnimation()))
	d.OnRedraw()
	assert.Equal(t, [][2]int{{2, int(animator.ModeLoop)}}, p.played)
	assert.Equal(t, 1, p.stops)

	// a clip the model does not have is reported and the frame still renders
	p.playErr = animator.ErrUnknownClip
	require.True(t, d.Post(PlayAnimation(9, animator.ModeOnce)))
	d.OnRedraw()
	assert.Len(t, p.played, 1)
	assert.Equal(t, 2, p.renders)

	assert.Equal(t, "play animation 2 loop", PlayAnimation(2, animator.ModeLoop).String())
	assert.Equal(t, "stop animation", StopAnimation().String())
}

func TestRenderResultString(t *testing.T) {
	assert.Equal(t, "surface lost", RenderSurfaceLost.String())
	assert.Equal(t, "unknown", RenderResult(42).String())
}
