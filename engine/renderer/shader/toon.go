package shader

import _ "embed"

// ToonShaderKey is the cache key of the toon program.
const ToonShaderKey = "toon"

//go:embed assets/toon.wgsl
var toonSource string

// Vertex input struct names of the toon program.
const (
	StaticVertexStruct  = "VertexInput"
	SkinnedVertexStruct = "SkinnedVertexInput"
)

// ToonSource returns the raw toon program source, before pre-processing.
func ToonSource() string {
	return toonSource
}

// NewToonShader pre-processes and reflects the toon program.
//
// Returns:
//   - Shader: the reflected toon program
//   - error: an error if the embedded source fails to pre-process
func NewToonShader() (Shader, error) {
	return NewShader(ToonShaderKey, toonSource)
}
