package shader

import (
	"cmp"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// struct Name { body }
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// [@attr(...)]* name: type
	memberRegex = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)

	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// @group(G) @binding(B) var[<space>] name: type;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	entryPointRegex = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`@vertex\s+fn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`@fragment\s+fn\s+(\w+)`),
	}
)

// parseVertexLayouts returns a tightly packed vertex buffer layout for every vertex input
// struct whose members all have a vertex format.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - map[string]wgpu.VertexBufferLayout: layouts keyed by struct name
func parseVertexLayouts(source string) map[string]wgpu.VertexBufferLayout {
	result := make(map[string]wgpu.VertexBufferLayout)
	for _, ps := range parseStructs(stripComments(source)) {
		if !isVertexInput(ps) {
			continue
		}
		if layout, ok := vertexBufferLayout(ps); ok {
			result[ps.name] = layout
		}
	}
	return result
}

// parseStructLayouts returns the host-shareable size of every struct that resolves.
func parseStructLayouts(source string) map[string]uint64 {
	layouts := structLayouts(parseStructs(stripComments(source)))
	result := make(map[string]uint64, len(layouts))
	for name, t := range layouts {
		result[name] = t.size
	}
	return result
}

// parseBindGroupLayouts reflects every module-scope binding into a layout entry, grouped by
// @group and sorted by @binding. Uniform entries carry the bound struct's size as their minimum
// binding size. Unsupported resource kinds are logged and left out.
//
// Parameters:
//   - source: the pre-processed WGSL source
//   - visibility: the stages every entry is visible to
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group then binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	layouts := structLayouts(parseStructs(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space := strings.TrimSpace(m[3])
		typeName := normalizeType(m[5])

		entry, ok := classifyResource(uint32(binding), visibility, space, typeName)
		if !ok {
			slog.Warn("unsupported shader binding", "group", group, "binding", binding, "var", m[4], "type", typeName)
			continue
		}
		if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
			if t, ok := layouts[typeName]; ok {
				entry.Buffer.MinBindingSize = t.size
			} else if t, ok := wgslTypes[typeName]; ok {
				entry.Buffer.MinBindingSize = t.size
			}
		}

		groups[group] = append(groups[group], entry)
		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names
}

// parseEntryPoints returns the stage's entry point names in declaration order, or nil.
func parseEntryPoints(source string, stage ShaderType) []string {
	re, ok := entryPointRegex[stage]
	if !ok {
		return nil
	}
	var names []string
	for _, m := range re.FindAllStringSubmatch(stripComments(source), -1) {
		names = append(names, m[1])
	}
	return names
}

// parseStructs reads every struct declaration in comment-free source.
func parseStructs(source string) []parsedStruct {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		ps := parsedStruct{name: m[1]}
		for _, member := range splitMembers(m[2]) {
			if f, ok := parseMember(strings.TrimSpace(member)); ok {
				ps.fields = append(ps.fields, f)
			}
		}
		structs = append(structs, ps)
	}
	return structs
}

func parseMember(member string) (parsedField, bool) {
	m := memberRegex.FindStringSubmatch(member)
	if m == nil {
		return parsedField{}, false
	}
	f := parsedField{
		name:     m[2],
		typeName: normalizeType(m[3]),
		location: -1,
		builtin:  strings.Contains(m[1], "@builtin"),
	}
	if loc := locationRegex.FindStringSubmatch(m[1]); loc != nil {
		f.location, _ = strconv.Atoi(loc[1])
	}
	return f, true
}
