package pipeline

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ColorMode selects where the surface color comes from.
type ColorMode uint8

const (
	// ColorVertex takes the surface color from the vertex color attribute.
	ColorVertex ColorMode = iota
	// ColorTexture samples the base-color texture and multiplies it with the vertex color.
	ColorTexture
)

// Skinning selects the vertex layout.
type Skinning uint8

const (
	// Static vertices carry no joint influences.
	Static Skinning = iota
	// Skinned vertices carry four joint indices and four weights.
	Skinned
)

// Outline selects between the filled draw and the silhouette draw.
type Outline uint8

const (
	// Filled is the regular surface draw.
	Filled Outline = iota
	// Outlined is the extruded, darkened silhouette draw.
	Outlined
)

// Lighting selects whether the light table is accumulated.
type Lighting uint8

const (
	// Unlit outputs the surface color as is.
	Unlit Lighting = iota
	// Lit runs the toon light accumulator.
	Lit
)

// VariantCount is the size of the variant product space.
const VariantCount = 16

// VariantKey is one point in the ColorMode × Skinning × Outline × Lighting product.
type VariantKey struct {
	Color    ColorMode
	Skinning Skinning
	Outline  Outline
	Lighting Lighting
}

// Valid reports whether every axis holds one of its two values.
func (k VariantKey) Valid() bool {
	return k.Color <= ColorTexture && k.Skinning <= Skinned && k.Outline <= Outlined && k.Lighting <= Lit
}

// Index packs the key into 0..15 with Color in bit 0, Skinning in bit 1, Outline in bit 2 and
// Lighting in bit 3. An invalid key panics in debug builds and has each axis masked to its low bit
// otherwise.
func (k VariantKey) Index() int {
	common.Precondition(k.Valid(), "variant key %+v out of range", k)
	return int(k.Color&1) | int(k.Skinning&1)<<1 | int(k.Outline&1)<<2 | int(k.Lighting&1)<<3
}

// KeyFromIndex is the inverse of Index. The index is masked to 4 bits.
func KeyFromIndex(i int) VariantKey {
	i &= VariantCount - 1
	return VariantKey{
		Color:    ColorMode(i & 1),
		Skinning: Skinning((i >> 1) & 1),
		Outline:  Outline((i >> 2) & 1),
		Lighting: Lighting((i >> 3) & 1),
	}
}

// AllVariants lists every key in Index order.
func AllVariants() []VariantKey {
	keys := make([]VariantKey, VariantCount)
	for i := range keys {
		keys[i] = KeyFromIndex(i)
	}
	return keys
}

// String returns the pipeline key, e.g. "texture_skin_outline_light".
func (k VariantKey) String() string {
	return variants[k.Index()].Key
}

// Variant is the resolved, static description of one shading program.
type Variant struct {
	// Key is the pipeline cache key.
	Key string
	// VariantKey is the product point this variant was resolved from.
	VariantKey VariantKey
	// VertexEntry and FragmentEntry name the entry points in the toon program.
	VertexEntry   string
	FragmentEntry string
	// VertexLayout names the WGSL vertex input struct.
	VertexLayout string
	// CullMode is front for outline draws and back otherwise.
	CullMode wgpu.CullMode
	// AlphaDiscard is set for textured variants.
	AlphaDiscard bool
}

var variants = buildVariants()

func buildVariants() [VariantCount]Variant {
	var table [VariantCount]Variant
	for i := range table {
		table[i] = resolve(KeyFromIndex(i))
	}
	return table
}

func resolve(k VariantKey) Variant {
	color := "color"
	if k.Color == ColorTexture {
		color = "texture"
	}

	vs := []string{color}
	fs := []string{color}
	name := []string{color}
	if k.Outline == Outlined {
		vs = append(vs, "outline")
	}
	if k.Skinning == Skinned {
		vs = append(vs, "skin")
		name = append(name, "skin")
	}
	if k.Lighting == Lit {
		fs = append(fs, "light")
	}
	if k.Outline == Outlined {
		fs = append(fs, "outline")
		name = append(name, "outline")
	}
	if k.Lighting == Lit {
		name = append(name, "light")
	}

	v := Variant{
		Key:           strings.Join(name, "_"),
		VariantKey:    k,
		VertexEntry:   strings.Join(vs, "_") + "_vs_main",
		FragmentEntry: strings.Join(fs, "_") + "_fs_main",
		VertexLayout:  shader.StaticVertexStruct,
		CullMode:      wgpu.CullModeBack,
		AlphaDiscard:  k.Color == ColorTexture,
	}
	if k.Skinning == Skinned {
		v.VertexLayout = shader.SkinnedVertexStruct
	}
	if k.Outline == Outlined {
		v.CullMode = wgpu.CullModeFront
	}
	return v
}

// Select resolves a key to its precomputed variant. Every valid key resolves; there is no fallback.
//
// Parameters:
//   - k: the variant key
//
// Returns:
//   - Variant: the resolved variant
func Select(k VariantKey) Variant {
	return variants[k.Index()]
}

// NewVariantPipeline creates the Pipeline for a variant drawn from program. Depth testing uses Less
// with depth writes on, for both filled and outline draws.
//
// Parameters:
//   - v: the resolved variant
//   - program: the program holding the variant's entry points
//
// Returns:
//   - Pipeline: the configured pipeline, not yet initialized on the GPU
//   - error: an error if program lacks either entry point
func NewVariantPipeline(v Variant, program shader.Shader) (Pipeline, error) {
	if !program.HasEntryPoint(shader.ShaderTypeVertex, v.VertexEntry) {
		return nil, fmt.Errorf("variant %s: vertex entry %s: %w", v.Key, v.VertexEntry, shader.ErrNoEntryPoint)
	}
	if !program.HasEntryPoint(shader.ShaderTypeFragment, v.FragmentEntry) {
		return nil, fmt.Errorf("variant %s: fragment entry %s: %w", v.Key, v.FragmentEntry, shader.ErrNoEntryPoint)
	}
	return NewPipeline(v.Key,
		WithProgram(program, v.VertexEntry, v.FragmentEntry),
		WithVertexLayout(v.VertexLayout),
		WithAlphaDiscard(v.AlphaDiscard),
		WithCullMode(v.CullMode),
		WithDepthTestEnabled(true),
		WithDepthWriteEnabled(true),
		WithDepthCompare(wgpu.CompareFunctionLess),
		WithFrontFace(wgpu.FrontFaceCCW),
	), nil
}
