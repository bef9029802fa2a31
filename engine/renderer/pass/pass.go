// Package pass orders the draws of a frame and holds the CPU reference of the per-variant
// fragment rules: outline extrusion, outline darkening and alpha discard.
package pass

import (
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind distinguishes the silhouette draw from the surface draw of one instance.
type Kind int

const (
	// KindOutline is the extruded, front-culled silhouette draw.
	KindOutline Kind = iota
	// KindFilled is the regular surface draw.
	KindFilled
)

// String returns a short name for logging.
func (k Kind) String() string {
	if k == KindOutline {
		return "outline"
	}
	return "filled"
}

// Item is one drawable as the scene describes it. Key.Outline set to Outlined requests a
// silhouette draw in addition to the filled draw.
type Item struct {
	// Slot is the drawable's uniform slot.
	Slot int
	// Key is the drawable's static variant key.
	Key pipeline.VariantKey
}

// Draw is one planned draw call.
type Draw struct {
	Slot    int
	Kind    Kind
	Variant pipeline.Variant
}

// Sequencer turns the frame's items into an ordered draw list. It reuses its backing slice
// between frames; the returned slice is valid until the next Plan call.
type Sequencer struct {
	draws []Draw
}

// NewSequencer creates an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Plan emits, per item and in item order, the outline draw (when requested) immediately
// followed by the filled draw.
//
// Parameters:
//   - items: the frame's drawables
//
// Returns:
//   - []Draw: the ordered draw list
func (s *Sequencer) Plan(items []Item) []Draw {
	s.draws = s.draws[:0]
	for _, it := range items {
		key := it.Key
		if key.Outline == pipeline.Outlined {
			s.draws = append(s.draws, Draw{Slot: it.Slot, Kind: KindOutline, Variant: pipeline.Select(key)})
		}
		key.Outline = pipeline.Filled
		s.draws = append(s.draws, Draw{Slot: it.Slot, Kind: KindFilled, Variant: pipeline.Select(key)})
	}
	return s.draws
}

// OutlineParams are the silhouette constants shared by every outline draw.
type OutlineParams struct {
	// Size is the clip-space extrusion distance.
	Size float32 `yaml:"size" toml:"size"`
	// Darken multiplies the base color of outline fragments.
	Darken float32 `yaml:"darken" toml:"darken"`
}

// DefaultOutlineParams returns size 0.004 and darken 0.5.
func DefaultOutlineParams() OutlineParams {
	return OutlineParams{Size: 0.004, Darken: 0.5}
}

// Offset is the clip-space displacement of an outline vertex: (size/aspect, size, 0) times the
// normalized screen-space tangent. A zero tangent gives no displacement.
//
// Parameters:
//   - clipTangent: the vertex tangent projected into clip space; only xy is used
//   - aspect: viewport width over height
//
// Returns:
//   - mgl32.Vec3: the displacement added to the clip position
func (o OutlineParams) Offset(clipTangent mgl32.Vec2, aspect float32) mgl32.Vec3 {
	l := clipTangent.Len()
	if l == 0 || aspect <= 0 {
		return mgl32.Vec3{}
	}
	d := clipTangent.Mul(1 / l)
	return mgl32.Vec3{o.Size / aspect * d[0], o.Size * d[1], 0}
}

// Color darkens base for the outline pass, keeping alpha.
func (o OutlineParams) Color(base mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{base[0] * o.Darken, base[1] * o.Darken, base[2] * o.Darken, base[3]}
}

// DiscardPolicy decides whether a fragment is dropped before lighting.
type DiscardPolicy func(key pipeline.VariantKey, alpha float32) bool

// AlphaDiscard drops textured fragments, lit or unlit, whose alpha is exactly zero.
// Vertex-colored surfaces never discard.
var AlphaDiscard DiscardPolicy = func(key pipeline.VariantKey, alpha float32) bool {
	return key.Color == pipeline.ColorTexture && alpha == 0
}

// Fragment is the CPU reference of the toon program's fragment stage for one variant.
//
// Parameters:
//   - key: the variant being drawn
//   - s: the fragment surface; Base is the texture sample times the vertex color for textured variants
//   - t: the light table
//   - viewDir: normalized camera view direction
//   - outline: the silhouette constants
//
// Returns:
//   - mgl32.Vec4: the fragment color
//   - bool: false if the fragment is discarded
func Fragment(key pipeline.VariantKey, s light.Surface, t *light.Table, viewDir mgl32.Vec3, outline OutlineParams) (mgl32.Vec4, bool) {
	if AlphaDiscard(key, s.Base[3]) {
		return mgl32.Vec4{}, false
	}
	switch {
	case key.Outline == pipeline.Outlined:
		return outline.Color(s.Base), true
	case key.Lighting == pipeline.Lit:
		return light.Shade(s, t, viewDir), true
	default:
		return s.Base, true
	}
}
