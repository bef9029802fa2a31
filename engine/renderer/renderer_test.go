package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls without touching a GPU.
type fakeBackend struct {
	configured  [][2]int
	registered  []string
	draws       []string
	recreated   int
	clear       wgpu.Color
	beginErr    error
	registerErr error
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.configured = append(f.configured, [2]int{width, height})
}
func (f *fakeBackend) RecreateSurface() error    { f.recreated++; return nil }
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) SetClearColor(c wgpu.Color) { f.clear = c }
func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}
func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor) error {
	return nil
}
func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}
func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) {}
func (f *fakeBackend) BeginFrame() error                                { return f.beginErr }
func (f *fakeBackend) DrawCall(p pipeline.Pipeline, _ bind_group_provider.BindGroupProvider, _ uint32, _ []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, p.PipelineKey())
}
func (f *fakeBackend) EndFrame() {}
func (f *fakeBackend) Present()  {}
func (f *fakeBackend) Release()  {}

func newTestRenderer(b *fakeBackend) *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
	}
}

func toonPipelines(t *testing.T) []pipeline.Pipeline {
	program, err := shader.NewToonShader()
	require.NoError(t, err)
	var out []pipeline.Pipeline
	for _, k := range pipeline.AllVariants() {
		p, err := pipeline.NewVariantPipeline(pipeline.Select(k), program)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestRegisterPipelinesSkipsDuplicates(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	ps := toonPipelines(t)

	require.NoError(t, r.RegisterPipelines(ps...))
	require.NoError(t, r.RegisterPipelines(ps[0], ps[3]))
	assert.Len(t, b.registered, pipeline.VariantCount)
	assert.Len(t, r.Pipelines(), pipeline.VariantCount)
	assert.Same(t, ps[5], r.Pipeline(ps[5].PipelineKey()))
}

func TestRegisterPipelinesWrapsBackendError(t *testing.T) {
	boom := errors.New("boom")
	r := newTestRenderer(&fakeBackend{registerErr: boom})
	err := r.RegisterPipelines(toonPipelines(t)[0])
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Pipelines())
}

func TestDrawCallUnknownPipeline(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	err := r.DrawCall("texture_light", mesh, 1, nil)
	assert.ErrorIs(t, err, ErrPipelineNotFound)
	assert.Empty(t, b.draws)

	ps := toonPipelines(t)
	require.NoError(t, r.RegisterPipelines(ps...))
	require.NoError(t, r.DrawCall("texture_light", mesh, 1, nil))
	assert.Equal(t, []string{"texture_light"}, b.draws)
}

func TestResizeIgnoresZeroAndRecreateUsesLastSize(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)

	r.Resize(800, 600)
	r.Resize(0, 0)
	r.Resize(1024, 0)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	require.NoError(t, r.RecreateSurface())
	assert.Equal(t, 1, b.recreated)
	assert.Equal(t, [][2]int{{800, 600}, {800, 600}}, b.configured)
}

func TestBeginFrameSurfaceLost(t *testing.T) {
	r := newTestRenderer(&fakeBackend{beginErr: ErrSurfaceLost})
	assert.ErrorIs(t, r.BeginFrame(), ErrSurfaceLost)
}

func TestSetClearColor(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	r.SetClearColor([4]float32{0.25, 0.5, 0.75, 1})
	assert.Equal(t, wgpu.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}, b.clear)
}

func TestParsePresentModeAndMSAA(t *testing.T) {
	m, err := ParsePresentMode("VSync")
	require.NoError(t, err)
	assert.Equal(t, PresentModeVSync, m)
	m, err = ParsePresentMode("uncapped")
	require.NoError(t, err)
	assert.Equal(t, PresentModeUncapped, m)
	assert.Equal(t, "uncapped", m.String())
	_, err = ParsePresentMode("mailbox")
	assert.Error(t, err)

	assert.Equal(t, MSAAOff, MSAAFromSamples(0))
	assert.Equal(t, MSAAOff, MSAAFromSamples(2))
	assert.Equal(t, MSAA4x, MSAAFromSamples(4))
	assert.Equal(t, MSAA8x, MSAAFromSamples(12))
	assert.Equal(t, MSAA16x, MSAAFromSamples(64))
}
