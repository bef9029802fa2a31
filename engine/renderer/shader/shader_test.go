package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("let x = 1;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("  //@oxy:include camera", 3)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, annotationTypeInclude, a.Type)
	assert.Equal(t, AnnotationArgCamera, a.Struct())

	a, err = parseAnnotation("//@oxy:group 3 0 uniform joints joints", 4)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 3, *a.Group)
	assert.Equal(t, 0, *a.Binding)
	assert.Equal(t, AnnotationArgJoints, a.Struct())

	for _, bad := range []string{
		"//@oxy:",
		"//@oxy:include",
		"//@oxy:include nothing",
		"//@oxy:group x 0 uniform camera camera",
		"//@oxy:group 0 0 storage camera camera",
		"//@oxy:bogus camera",
	} {
		_, err := parseAnnotation(bad, 1)
		assert.Error(t, err, bad)
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include camera\n//@oxy:include camera\n//@oxy:group 0 0 uniform cam camera\n")
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(out, "struct CameraUniform"))
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> cam: CameraUniform;")
	require.Len(t, pp.Declarations(), 1)
	assert.Equal(t, AnnotationArgCamera, pp.Declarations()[0].Struct())
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestNewShaderRequiresBothStages(t *testing.T) {
	_, err := NewShader("vs-only", "@vertex fn main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = NewShader("bad", "//@oxy:include nope")
	assert.Error(t, err)
}

func TestToonStructSizesMatchRecords(t *testing.T) {
	s, err := NewToonShader()
	require.NoError(t, err)

	var cam camera.GPUCameraUniform
	var inst uniform.GPUInstanceUniform
	var jm uniform.GPUJointMatrix
	cases := map[string]int{
		"CameraUniform":    cam.Size(),
		"InstanceUniform":  inst.Size(),
		"JointMatrix":      jm.Size(),
		"Joints":           uniform.JointTableSize,
		"Lights":           light.GPULightTableSize,
		"PointLight":       48,
		"DirectionalLight": 64,
		"ParallelLight":    32,
	}
	for name, want := range cases {
		got, ok := s.StructSize(name)
		require.True(t, ok, name)
		assert.Equal(t, uint64(want), got, name)
	}
}

func TestToonEntryPoints(t *testing.T) {
	s, err := NewToonShader()
	require.NoError(t, err)

	assert.Len(t, s.EntryPoints(ShaderTypeVertex), 8)
	assert.Len(t, s.EntryPoints(ShaderTypeFragment), 8)
	for _, color := range []string{"color", "texture"} {
		for _, suffix := range []string{"", "_outline", "_skin", "_outline_skin"} {
			assert.True(t, s.HasEntryPoint(ShaderTypeVertex, color+suffix+"_vs_main"), color+suffix)
		}
		for _, suffix := range []string{"", "_light", "_outline", "_light_outline"} {
			assert.True(t, s.HasEntryPoint(ShaderTypeFragment, color+suffix+"_fs_main"), color+suffix)
		}
	}
	assert.False(t, s.HasEntryPoint(ShaderTypeVertex, "color_fs_main"))
}

func TestToonBindGroups(t *testing.T) {
	s, err := NewToonShader()
	require.NoError(t, err)

	groups := s.BindGroupLayoutDescriptors()
	require.Len(t, groups, 4)

	cam := groups[0].Entries
	require.Len(t, cam, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cam[0].Buffer.Type)
	assert.Equal(t, uint64(96), cam[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, cam[0].Visibility)

	assert.Equal(t, uint64(light.GPULightTableSize), groups[1].Entries[0].Buffer.MinBindingSize)

	inst := groups[2].Entries
	require.Len(t, inst, 3)
	assert.Equal(t, uint64(176), inst[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureViewDimension2D, inst[1].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, inst[1].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, inst[2].Sampler.Type)

	assert.Equal(t, uint64(uniform.JointTableSize), groups[3].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, "joints", s.BindGroupVarName(3, 0))
	assert.Equal(t, "base_texture", s.BindGroupVarName(2, 1))

	decls := s.Declarations()
	require.Len(t, decls, 4)
	assert.Equal(t, AnnotationArgInstance, decls[2].Struct())
}

func TestToonVertexLayouts(t *testing.T) {
	s, err := NewToonShader()
	require.NoError(t, err)

	var v model.GPUVertex
	static, ok := s.VertexLayout(StaticVertexStruct)
	require.True(t, ok)
	assert.Equal(t, uint64(v.Size()), static.ArrayStride)
	require.Len(t, static.Attributes, 5)
	assert.Equal(t, uint64(32), static.Attributes[3].Offset)

	var sv model.GPUSkinnedVertex
	skinned, ok := s.VertexLayout(SkinnedVertexStruct)
	require.True(t, ok)
	assert.Equal(t, uint64(sv.Size()), skinned.ArrayStride)
	require.Len(t, skinned.Attributes, 7)
	assert.Equal(t, wgpu.VertexFormatUint32x4, skinned.Attributes[5].Format)
	assert.Equal(t, uint32(6), skinned.Attributes[6].ShaderLocation)

	_, ok = s.VertexLayout("VertexOutput")
	assert.False(t, ok)
}
