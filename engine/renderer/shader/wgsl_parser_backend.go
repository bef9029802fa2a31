package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

func roundUp(align, n uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// layoutResolver computes struct layouts on demand, so structs may be declared in any order.
type layoutResolver struct {
	structs  map[string]parsedStruct
	done     map[string]wgslType
	visiting map[string]bool
}

// structLayouts resolves every struct whose members are all known types. Structs that hold a
// runtime-sized array, an unknown type or a reference to themselves are left out.
//
// Parameters:
//   - structs: the parsed struct declarations
//
// Returns:
//   - map[string]wgslType: layouts keyed by struct name
func structLayouts(structs []parsedStruct) map[string]wgslType {
	r := &layoutResolver{
		structs:  make(map[string]parsedStruct, len(structs)),
		done:     make(map[string]wgslType, len(structs)),
		visiting: make(map[string]bool),
	}
	for _, ps := range structs {
		r.structs[ps.name] = ps
	}
	for _, ps := range structs {
		r.resolve(ps.name)
	}
	return r.done
}

// resolve returns the layout of a predeclared type, a fixed-size array or a struct.
func (r *layoutResolver) resolve(typeName string) (wgslType, bool) {
	if t, ok := wgslTypes[typeName]; ok {
		return t, true
	}
	if t, ok := r.done[typeName]; ok {
		return t, true
	}

	if inner, ok := strings.CutPrefix(typeName, "array<"); ok {
		elemName, count, ok := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
		if !ok {
			return wgslType{}, false
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimSpace(count), "u"), 10, 64)
		if err != nil {
			return wgslType{}, false
		}
		elem, ok := r.resolve(strings.TrimSpace(elemName))
		if !ok {
			return wgslType{}, false
		}
		return wgslType{size: n * roundUp(elem.align, elem.size), align: elem.align}, true
	}

	ps, ok := r.structs[typeName]
	if !ok || r.visiting[typeName] {
		return wgslType{}, false
	}
	r.visiting[typeName] = true
	defer delete(r.visiting, typeName)

	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.builtin {
			continue
		}
		ft, ok := r.resolve(f.typeName)
		if !ok {
			return wgslType{}, false
		}
		offset = roundUp(ft.align, offset) + ft.size
		align = max(align, ft.align)
	}
	t := wgslType{size: roundUp(align, offset), align: align}
	r.done[typeName] = t
	return t, true
}

// classifyResource builds the layout entry for one module-scope binding. Only uniform buffers,
// filtering samplers and float 2D textures are bound by the viewer.
//
// Parameters:
//   - binding: the @binding index
//   - visibility: the stages that see the binding
//   - addressSpace: the var<...> qualifier, empty for textures and samplers
//   - typeName: the declared type
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the layout entry
//   - bool: false if the resource kind is not supported
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) (wgpu.BindGroupLayoutEntry, bool) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}
	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case addressSpace != "":
		return entry, false
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "texture_2d<f32>":
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	default:
		return entry, false
	}
	return entry, true
}

// stripComments removes // and /* */ comments. Block comments nest in WGSL.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		next := byte(0)
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case source[i] == '/' && next == '*':
			depth++
			i++
		case depth > 0 && source[i] == '*' && next == '/':
			depth--
			i++
		case depth > 0:
		case source[i] == '/' && next == '/':
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// normalizeType drops the whitespace WGSL allows inside a type, so "vec4< f32 >" and
// "vec4<f32>" look up the same entry.
func normalizeType(typeName string) string {
	return strings.Join(strings.Fields(typeName), "")
}

// isVertexInput reports whether a struct is read by a vertex stage: it has @location members
// and no @builtin ones, which sets it apart from inter-stage outputs.
func isVertexInput(ps parsedStruct) bool {
	located := false
	for _, f := range ps.fields {
		if f.builtin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

// vertexBufferLayout packs the struct's members tightly in declaration order.
//
// Parameters:
//   - ps: a vertex input struct
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
//   - bool: false if a member type has no vertex format
func vertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, 0, len(ps.fields)),
	}
	for _, f := range ps.fields {
		t, ok := wgslTypes[f.typeName]
		if !ok || t.vertex == wgpu.VertexFormatUndefined {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         t.vertex,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += t.size
	}
	return layout, true
}

// splitMembers splits a struct body at commas outside angle brackets, so the comma of
// array<T, N> stays inside its member.
func splitMembers(body string) []string {
	var members []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				members = append(members, body[start:i])
				start = i + 1
			}
		}
	}
	return append(members, body[start:])
}
