package asset

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// extractClips converts the document's animations into clips over the skeleton's joints.
// Channels that target a node outside the skeleton, or morph weights, are skipped. An animation
// with a malformed channel is logged and dropped, and one with no usable channel is dropped.
//
// Parameters:
//   - jointOf: joint index per joint node
//
// Returns:
//   - []animator.Clip: the clips in document order
func (d *gltfDecoder) extractClips(jointOf map[int]int) []animator.Clip {
	var clips []animator.Clip
	for i, anim := range d.doc.Animations {
		if anim == nil {
			continue
		}
		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation%d", i)
		}
		clip, err := d.extractClip(anim, jointOf)
		if err != nil {
			slog.Warn("skipping animation", "animation", name, "error", err)
			continue
		}
		if len(clip.Channels) == 0 {
			slog.Debug("animation drives no joint", "animation", name)
			continue
		}
		clip.Name = name
		clips = append(clips, clip)
	}
	return clips
}

func (d *gltfDecoder) extractClip(anim *gltf.Animation, jointOf map[int]int) (animator.Clip, error) {
	var clip animator.Clip
	for ci, ch := range anim.Channels {
		if ch == nil {
			continue
		}
		node, ok := gltfIndex(ch.Target.Node)
		if !ok {
			continue
		}
		joint, ok := jointOf[node]
		if !ok {
			continue
		}

		var path animator.Path
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			path = animator.PathTranslation
		case gltf.TRSRotation:
			path = animator.PathRotation
		case gltf.TRSScale:
			path = animator.PathScale
		default:
			continue
		}

		si, ok := gltfIndex(ch.Sampler)
		if !ok || si >= len(anim.Samplers) || anim.Samplers[si] == nil {
			return clip, fmt.Errorf("channel %d references missing sampler", ci)
		}
		channel, err := d.extractChannel(anim.Samplers[si], path)
		if err != nil {
			return clip, fmt.Errorf("channel %d: %w", ci, err)
		}
		channel.Joint = joint

		if n := len(channel.Times); n > 0 {
			clip.Duration = max(clip.Duration, channel.Times[n-1])
			clip.Channels = append(clip.Channels, channel)
		}
	}
	return clip, nil
}

func (d *gltfDecoder) extractChannel(s *gltf.AnimationSampler, path animator.Path) (animator.Channel, error) {
	ch := animator.Channel{Path: path}
	switch s.Interpolation {
	case gltf.InterpolationStep:
		ch.Interpolation = animator.InterpolationStep
	case gltf.InterpolationCubicSpline:
		ch.Interpolation = animator.InterpolationCubicSpline
	default:
		ch.Interpolation = animator.InterpolationLinear
	}

	in, ok := gltfIndex(s.Input)
	if !ok {
		return ch, fmt.Errorf("sampler has no input")
	}
	out, ok := gltfIndex(s.Output)
	if !ok {
		return ch, fmt.Errorf("sampler has no output")
	}

	inAcc, err := d.accessor(uint32(in))
	if err != nil {
		return ch, err
	}
	raw, err := modeler.ReadAccessor(d.doc, inAcc, nil)
	if err != nil {
		return ch, fmt.Errorf("read key times: %w", err)
	}
	times, ok := raw.([]float32)
	if !ok {
		return ch, fmt.Errorf("key times have type %T, want float SCALAR", raw)
	}

	outAcc, err := d.accessor(uint32(out))
	if err != nil {
		return ch, err
	}
	raw, err = modeler.ReadAccessor(d.doc, outAcc, nil)
	if err != nil {
		return ch, fmt.Errorf("read key values: %w", err)
	}
	values, err := keyValues(raw)
	if err != nil {
		return ch, err
	}

	stride := 1
	if ch.Interpolation == animator.InterpolationCubicSpline {
		stride = 3
	}
	if len(values) < len(times)*stride {
		return ch, fmt.Errorf("%d key values for %d key times", len(values), len(times))
	}
	ch.Times = times
	ch.Values = values[:len(times)*stride]
	return ch, nil
}

// keyValues widens sampler output to Vec4. Normalized integer rotations are mapped back to
// [-1, 1] the way glTF defines them.
func keyValues(raw any) ([]mgl32.Vec4, error) {
	switch v := raw.(type) {
	case [][3]float32:
		out := make([]mgl32.Vec4, len(v))
		for i, e := range v {
			out[i] = mgl32.Vec4{e[0], e[1], e[2], 0}
		}
		return out, nil
	case [][4]float32:
		out := make([]mgl32.Vec4, len(v))
		for i, e := range v {
			out[i] = mgl32.Vec4(e)
		}
		return out, nil
	case [][4]int8:
		return normalizedVec4(v, func(c int8) float32 { return max(float32(c)/127, -1) }), nil
	case [][4]uint8:
		return normalizedVec4(v, func(c uint8) float32 { return float32(c) / 255 }), nil
	case [][4]int16:
		return normalizedVec4(v, func(c int16) float32 { return max(float32(c)/32767, -1) }), nil
	case [][4]uint16:
		return normalizedVec4(v, func(c uint16) float32 { return float32(c) / 65535 }), nil
	}
	return nil, fmt.Errorf("key values have unsupported type %T", raw)
}

func normalizedVec4[T int8 | uint8 | int16 | uint16](v [][4]T, norm func(T) float32) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(v))
	for i, e := range v {
		out[i] = mgl32.Vec4{norm(e[0]), norm(e[1]), norm(e[2]), norm(e[3])}
	}
	return out
}

// gltfIndex reads an optional document index.
func gltfIndex[T uint32 | *uint32 | int | *int](v T) (int, bool) {
	switch i := any(v).(type) {
	case *uint32:
		if i == nil {
			return 0, false
		}
		return int(*i), true
	case *int:
		if i == nil {
			return 0, false
		}
		return *i, *i >= 0
	case uint32:
		return int(i), true
	case int:
		return i, i >= 0
	}
	return 0, false
}
