package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithSpeed is an option builder that sets the playback time scale.
//
// Parameters:
//   - speed: the time scale, 1 for authored speed
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.SetSpeed(speed)
	}
}

// WithAutoplay is an option builder that starts a clip as soon as the animator is built.
// An unknown clip or mode is logged and leaves the skeleton at rest.
//
// Parameters:
//   - clip: the clip index
//   - mode: the playback mode
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the autoplay option to an animator
func WithAutoplay(clip int, mode Mode) AnimatorBuilderOption {
	return func(a *animator) {
		if err := a.Play(clip, mode); err != nil {
			slog.Warn("animation autoplay skipped", "clip", clip, "mode", mode, "error", err)
		}
	}
}

// NewAnimator creates an Animator for a skeleton. Nothing plays until Play is called or
// WithAutoplay is given.
//
// Parameters:
//   - skeleton: the skeleton the clips drive
//   - clips: the clips, with channel joint indices into skeleton
//   - options: functional options to configure the animator
//
// Returns:
//   - Animator: the animator
func NewAnimator(skeleton *skin.Skeleton, clips []Clip, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		skeleton: skeleton,
		clips:    clips,
		pose:     make([]skin.Transform, skeleton.Len()),
		clip:     -1,
		speed:    1,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}
