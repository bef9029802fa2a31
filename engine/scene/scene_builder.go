package scene

import (
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/shader"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithProgram replaces the toon program, for tests and custom shading. The program must declare
// every variant entry point.
//
// Parameters:
//   - program: the reflected program
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProgram(program shader.Shader) SceneBuilderOption {
	return func(s *scene) {
		s.program = program
	}
}

// WithDecoder replaces the model decoder. Defaults to asset.Decode.
//
// Parameters:
//   - decode: the decoder
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDecoder(decode Decoder) SceneBuilderOption {
	return func(s *scene) {
		if decode != nil {
			s.decode = decode
		}
	}
}

// WithLighting selects the lit or unlit fragment variants for every drawable. Defaults to lit.
//
// Parameters:
//   - lit: true to accumulate the light table
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLighting(lit bool) SceneBuilderOption {
	return func(s *scene) {
		s.lit = lit
	}
}

// WithOutlines enables the silhouette draw before every filled draw. Defaults to enabled.
//
// Parameters:
//   - outlined: true to draw outlines
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithOutlines(outlined bool) SceneBuilderOption {
	return func(s *scene) {
		s.outlined = outlined
	}
}

// WithSampler sets the sampler configuration used for base-color textures. Zero fields fall
// back to repeat addressing with linear filtering.
//
// Parameters:
//   - sampler: the sampler configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSampler(sampler common.SamplerStagingData) SceneBuilderOption {
	return func(s *scene) {
		s.sampler = sampler
	}
}

// WithPoseWorkers sets the number of worker goroutines that pose skeletons each frame.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPoseWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.poseWorkers = max(n, 1)
	}
}

// WithAutoplay starts a clip whenever a model with animations is loaded. Defaults to
// animator.ModeStopped, which leaves the model in its rest pose.
//
// Parameters:
//   - clip: the clip index
//   - mode: the playback mode
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAutoplay(clip int, mode animator.Mode) SceneBuilderOption {
	return func(s *scene) {
		s.autoplayClip = clip
		s.autoplay = mode
	}
}

// WithAnimationSpeed scales the playback time of every clip. Defaults to 1.
func WithAnimationSpeed(speed float32) SceneBuilderOption {
	return func(s *scene) {
		s.animSpeed = speed
	}
}
