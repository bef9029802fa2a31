// Package animator plays keyframe clips on a skeleton. Clips are sampled on the CPU and the
// sampled joint transforms are written into the skeleton, which then poses the joint palette.
package animator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/chewxy/math32"
)

var (
	// ErrUnknownClip is returned when a clip index is out of range.
	ErrUnknownClip = errors.New("unknown animation clip")
	// ErrUnknownMode is returned for a playback mode name or value that does not exist.
	ErrUnknownMode = errors.New("unknown playback mode")
)

// Mode is how playback continues once a clip reaches its end.
type Mode int

const (
	// ModeStopped holds the current pose.
	ModeStopped Mode = iota
	// ModeOnce plays to the end, holds the last pose and stops.
	ModeOnce
	// ModeRepeat jumps back to the start.
	ModeRepeat
	// ModeLoop plays forward then backward.
	ModeLoop
)

// String returns the mode name accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case ModeStopped:
		return "stopped"
	case ModeOnce:
		return "once"
	case ModeRepeat:
		return "repeat"
	case ModeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name, case-insensitively. The empty string is ModeStopped.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error wrapping ErrUnknownMode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stopped", "stop":
		return ModeStopped, nil
	case "once":
		return ModeOnce, nil
	case "repeat":
		return ModeRepeat, nil
	case "loop":
		return ModeLoop, nil
	}
	return ModeStopped, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Animator drives one skeleton from a list of clips. It is not safe for concurrent use; the
// frame driver calls it from the render thread only.
type Animator interface {
	// Clips returns the clips the animator can play.
	//
	// Returns:
	//   - []Clip: the clips, indexed as Play expects
	Clips() []Clip

	// Play restarts the skeleton from its rest pose and plays a clip from time zero.
	// ModeStopped shows the first frame of the clip and holds it.
	//
	// Parameters:
	//   - clip: the clip index
	//   - mode: how playback continues at the end of the clip
	//
	// Returns:
	//   - error: an error wrapping ErrUnknownClip or ErrUnknownMode
	Play(clip int, mode Mode) error

	// Stop holds the current pose.
	Stop()

	// SetSpeed scales playback time. Negative values are treated as zero.
	//
	// Parameters:
	//   - speed: the time scale, 1 for authored speed
	SetSpeed(speed float32)

	// Mode returns the current playback mode.
	Mode() Mode

	// Clip returns the index of the current clip, or -1 before the first Play.
	Clip() int

	// Time returns the sampled time within the current clip in seconds.
	Time() float32

	// Update advances playback by dt and writes the sampled pose into the skeleton.
	//
	// Parameters:
	//   - dt: the time since the previous update
	//
	// Returns:
	//   - bool: true if the skeleton's pose changed
	Update(dt time.Duration) bool
}

// animator is the implementation of the Animator interface.
type animator struct {
	skeleton *skin.Skeleton
	clips    []Clip
	pose     []skin.Transform

	clip    int
	mode    Mode
	speed   float32
	elapsed float32
	sampled float32
	dirty   bool
}

var _ Animator = &animator{}

func (a *animator) Clips() []Clip {
	return a.clips
}

func (a *animator) Play(clip int, mode Mode) error {
	if clip < 0 || clip >= len(a.clips) {
		return fmt.Errorf("%w: %d of %d", ErrUnknownClip, clip, len(a.clips))
	}
	if mode < ModeStopped || mode > ModeLoop {
		return fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
	a.clip = clip
	a.mode = mode
	a.elapsed = 0
	a.skeleton.ResetPose()
	a.apply(0)
	return nil
}

func (a *animator) Stop() {
	a.mode = ModeStopped
}

func (a *animator) SetSpeed(speed float32) {
	a.speed = max(speed, 0)
}

func (a *animator) Mode() Mode {
	return a.mode
}

func (a *animator) Clip() int {
	return a.clip
}

func (a *animator) Time() float32 {
	return a.sampled
}

func (a *animator) Update(dt time.Duration) bool {
	if a.mode == ModeStopped || a.clip < 0 {
		changed := a.dirty
		a.dirty = false
		return changed
	}

	a.elapsed += float32(dt.Seconds()) * a.speed
	length := a.clips[a.clip].Duration

	var t float32
	switch {
	case length <= 0:
		t = 0
	case a.mode == ModeOnce:
		t = min(a.elapsed, length)
		if a.elapsed >= length {
			a.mode = ModeStopped
		}
	case a.mode == ModeRepeat:
		t = math32.Mod(a.elapsed, length)
	case a.mode == ModeLoop:
		t = math32.Mod(a.elapsed, 2*length)
		if t > length {
			t = 2*length - t
		}
	}

	a.apply(t)
	a.dirty = false
	return true
}

// apply samples the current clip at t and writes every driven joint into the skeleton.
// Properties a clip does not drive keep their rest value.
func (a *animator) apply(t float32) {
	a.sampled = t
	a.dirty = true

	clip := &a.clips[a.clip]
	touched := make(map[int]struct{}, len(clip.Channels))
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		if ch.Joint < 0 || ch.Joint >= len(a.pose) {
			continue
		}
		if _, ok := touched[ch.Joint]; !ok {
			touched[ch.Joint] = struct{}{}
			a.pose[ch.Joint] = a.skeleton.Rest(ch.Joint)
		}

		v := ch.Sample(t)
		p := &a.pose[ch.Joint]
		switch ch.Path {
		case PathTranslation:
			p.Translation = v.Vec3()
		case PathRotation:
			p.Rotation = vecToQuat(v)
		case PathScale:
			p.Scale = v.Vec3()
		}
	}
	for j := range touched {
		a.skeleton.SetPose(j, a.pose[j])
	}
}
