package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoEntryPoint is returned when a shader source declares no vertex or no fragment entry point.
var ErrNoEntryPoint = errors.New("shader: no entry point")

// ShaderType identifies a programmable pipeline stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation.
type shader struct {
	key                        string
	source                     string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[string]wgpu.VertexBufferLayout
	structSizes                map[string]uint64
	entryPoints                map[ShaderType][]string
	module                     *wgpu.ShaderModuleDescriptor
	declarations               []Annotation
}

// Shader defines the interface for a pre-processed and reflected WGSL program. One program holds
// the vertex and fragment entry points of every pipeline variant that shares its bind group layout.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// VertexLayout retrieves the vertex buffer layout reflected from a vertex input struct.
	//
	// Parameters:
	//   - structName: the WGSL struct name, e.g. "SkinnedVertexInput"
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the layout
	//   - bool: false if no vertex input struct has that name
	VertexLayout(structName string) (wgpu.VertexBufferLayout, bool)

	// EntryPoints lists the entry point names declared for a stage, in source order.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - []string: the entry point names
	EntryPoints(stage ShaderType) []string

	// HasEntryPoint reports whether the program declares the named entry point for a stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//   - name: the entry point function name
	//
	// Returns:
	//   - bool: true if the entry point exists
	HasEntryPoint(stage ShaderType, name string) bool

	// StructSize returns the host-shareable byte size of a WGSL struct.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false if the struct is unknown or could not be laid out
	StructSize(name string) (uint64, bool)

	// Module returns the wgpu.ShaderModuleDescriptor built from the pre-processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the uniform binding annotations found while pre-processing the source.
	//
	// Returns:
	//   - []Annotation: the group annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects a WGSL program. Every binding is made visible to both the
// vertex and fragment stages so that all variants built from the program share one pipeline layout.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the WGSL source, which may contain @oxy: annotations
//
// Returns:
//   - Shader: the reflected shader
//   - error: an error if pre-processing fails or a stage has no entry point
func NewShader(key string, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: pre-process: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		entryPoints:  make(map[ShaderType][]string, 2),
		declarations: slices.Clone(pp.Declarations()),
	}
	for _, stage := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment} {
		s.entryPoints[stage] = parseEntryPoints(processed, stage)
		if len(s.entryPoints[stage]) == 0 {
			return nil, fmt.Errorf("shader %s: %s stage: %w", key, stage, ErrNoEntryPoint)
		}
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: processed,
		},
	}
	s.vertexLayouts = parseVertexLayouts(processed)
	s.structSizes = parseStructLayouts(processed)
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayout(structName string) (wgpu.VertexBufferLayout, bool) {
	l, ok := s.vertexLayouts[structName]
	return l, ok
}

func (s *shader) EntryPoints(stage ShaderType) []string {
	return s.entryPoints[stage]
}

func (s *shader) HasEntryPoint(stage ShaderType, name string) bool {
	return slices.Contains(s.entryPoints[stage], name)
}

func (s *shader) StructSize(name string) (uint64, bool) {
	size, ok := s.structSizes[name]
	return size, ok
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}
