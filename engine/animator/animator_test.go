package animator

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoJointSkeleton() *skin.Skeleton {
	return skin.NewSkeleton([]skin.Joint{
		{Name: "hip", Node: 0, Parent: -1, Local: mgl32.Translate3D(0, 1, 0), InverseBind: mgl32.Ident4()},
		{Name: "arm", Node: 1, Parent: 0, Local: mgl32.Translate3D(0, 0.5, 0), InverseBind: mgl32.Ident4()},
	}, mgl32.Ident4())
}

// slideClip moves the arm from x=0 to x=2 over one second.
func slideClip() Clip {
	return Clip{
		Name:     "slide",
		Duration: 1,
		Channels: []Channel{{
			Joint:  1,
			Path:   PathTranslation,
			Times:  []float32{0, 1},
			Values: []mgl32.Vec4{{0, 0.5, 0, 0}, {2, 0.5, 0, 0}},
		}},
	}
}

func TestChannelSample(t *testing.T) {
	linear := Channel{Path: PathTranslation, Times: []float32{1, 2, 4}, Values: []mgl32.Vec4{{0}, {2}, {6}}}
	step := linear
	step.Interpolation = InterpolationStep

	tests := []struct {
		name string
		ch   Channel
		t    float32
		want float32
	}{
		{"clamps before first key", linear, 0, 0},
		{"clamps after last key", linear, 9, 6},
		{"linear midpoint", linear, 1.5, 1},
		{"linear second segment", linear, 3, 4},
		{"exact key", linear, 2, 2},
		{"step holds previous key", step, 3.9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.ch.Sample(tt.t)[0], 1e-5)
		})
	}
}

func TestChannelSampleCubicSpline(t *testing.T) {
	// in-tangent, value, out-tangent per key
	ch := Channel{
		Path:          PathTranslation,
		Interpolation: InterpolationCubicSpline,
		Times:         []float32{0, 2},
		Values:        []mgl32.Vec4{{0}, {0}, {0}, {0}, {4}, {0}},
	}
	assert.InDelta(t, 2, ch.Sample(1)[0], 1e-5)
	assert.InDelta(t, 4*(3*0.0625-2*0.015625), ch.Sample(0.5)[0], 1e-5)
	assert.InDelta(t, 4, ch.Sample(3)[0], 1e-5)

	// tangents are scaled by the key interval
	ch.Values = []mgl32.Vec4{{0}, {0}, {1}, {0}, {0}, {0}}
	assert.InDelta(t, 2*(0.125-2*0.25+0.5), ch.Sample(1)[0], 1e-5)
}

func TestChannelSampleRotationSlerps(t *testing.T) {
	quarter := mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 0, 1})
	ch := Channel{
		Path:   PathRotation,
		Times:  []float32{0, 1},
		Values: []mgl32.Vec4{quatToVec(mgl32.QuatIdent()), quatToVec(quarter)},
	}
	got := vecToQuat(ch.Sample(0.5))
	want := mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, want.W, got.W, 1e-5)
	assert.InDelta(t, want.V[2], got.V[2], 1e-5)
	assert.InDelta(t, 1, got.Len(), 1e-5)
}

func TestChannelSampleTruncatedValues(t *testing.T) {
	ch := Channel{Times: []float32{0, 1, 2}, Values: []mgl32.Vec4{{1}, {3}}}
	assert.InDelta(t, 3, ch.Sample(5)[0], 1e-6)
	assert.Equal(t, mgl32.Vec4{}, (&Channel{}).Sample(1))
}

func TestPlaybackModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		advance  time.Duration
		wantTime float32
		wantMode Mode
	}{
		{"repeat wraps", ModeRepeat, 1500 * time.Millisecond, 0.5, ModeRepeat},
		{"loop plays backward", ModeLoop, 1250 * time.Millisecond, 0.75, ModeLoop},
		{"loop restarts forward", ModeLoop, 2250 * time.Millisecond, 0.25, ModeLoop},
		{"once holds the end", ModeOnce, 2 * time.Second, 1, ModeStopped},
		{"once before the end", ModeOnce, 500 * time.Millisecond, 0.5, ModeOnce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnimator(twoJointSkeleton(), []Clip{slideClip()})
			require.NoError(t, a.Play(0, tt.mode))
			assert.True(t, a.Update(tt.advance))
			assert.InDelta(t, tt.wantTime, a.Time(), 1e-5)
			assert.Equal(t, tt.wantMode, a.Mode())
		})
	}
}

func TestUpdateWritesSkeletonPose(t *testing.T) {
	sk := twoJointSkeleton()
	a := NewAnimator(sk, []Clip{slideClip()}, WithAutoplay(0, ModeRepeat))
	assert.Equal(t, 0, a.Clip())

	require.True(t, a.Update(500*time.Millisecond))
	palette := sk.Pose()
	// the hip is not animated and keeps its rest pose
	assert.InDelta(t, 1, palette[0].Transform[13], 1e-6)
	assert.InDelta(t, 1, palette[1].Transform[12], 1e-5)
	assert.InDelta(t, 1.5, palette[1].Transform[13], 1e-5)
}

func TestOnceStopsReportingChanges(t *testing.T) {
	a := NewAnimator(twoJointSkeleton(), []Clip{slideClip()})
	require.NoError(t, a.Play(0, ModeOnce))
	assert.True(t, a.Update(3*time.Second))
	assert.False(t, a.Update(time.Second))
	assert.InDelta(t, 1, a.Time(), 1e-6)
}

func TestStopHoldsPose(t *testing.T) {
	sk := twoJointSkeleton()
	a := NewAnimator(sk, []Clip{slideClip()})
	require.NoError(t, a.Play(0, ModeRepeat))
	require.True(t, a.Update(250*time.Millisecond))

	a.Stop()
	assert.Equal(t, ModeStopped, a.Mode())
	assert.False(t, a.Update(time.Second))
	assert.InDelta(t, 0.5, sk.Pose()[1].Transform[12], 1e-5)
}

func TestPlayShowsFirstFrame(t *testing.T) {
	sk := twoJointSkeleton()
	a := NewAnimator(sk, []Clip{slideClip()})
	require.NoError(t, a.Play(0, ModeRepeat))
	require.True(t, a.Update(750*time.Millisecond))

	require.NoError(t, a.Play(0, ModeStopped))
	// a stopped Play still reports the restarted pose once
	assert.True(t, a.Update(time.Second))
	assert.False(t, a.Update(time.Second))
	assert.InDelta(t, 0, sk.Pose()[1].Transform[12], 1e-6)
}

func TestSpeed(t *testing.T) {
	a := NewAnimator(twoJointSkeleton(), []Clip{slideClip()}, WithSpeed(2))
	require.NoError(t, a.Play(0, ModeRepeat))
	a.Update(200 * time.Millisecond)
	assert.InDelta(t, 0.4, a.Time(), 1e-5)

	a.SetSpeed(-3)
	a.Update(time.Second)
	assert.InDelta(t, 0.4, a.Time(), 1e-5)
}

func TestPlayErrors(t *testing.T) {
	a := NewAnimator(twoJointSkeleton(), []Clip{slideClip()}, WithAutoplay(4, ModeLoop))
	assert.Equal(t, -1, a.Clip())
	assert.False(t, a.Update(time.Second))

	assert.ErrorIs(t, a.Play(1, ModeLoop), ErrUnknownClip)
	assert.ErrorIs(t, a.Play(-1, ModeLoop), ErrUnknownClip)
	assert.ErrorIs(t, a.Play(0, Mode(9)), ErrUnknownMode)
	assert.Len(t, a.Clips(), 1)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeStopped},
		{"once", ModeOnce},
		{"Repeat", ModeRepeat},
		{" LOOP ", ModeLoop},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.in != "" {
			assert.Equal(t, tt.want, must(ParseMode(tt.want.String())))
		}
	}

	_, err := ParseMode("bounce")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func must(m Mode, err error) Mode {
	if err != nil {
		panic(err)
	}
	return m
}
