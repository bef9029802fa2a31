package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/frame"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records the calls a scene makes without touching a GPU.
type fakeRenderer struct {
	width, height int
	registered    []string
	groups        []int
	textures      map[string]common.TextureStagingData
	writes        []bind_group_provider.BufferWrite
	draws         []string
	drawGroups    [][]int
	clear         [4]float32
	recreated     int
	frames        int
	beginErr      error
	meshErr       error
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{width: 800, height: 600, textures: make(map[string]common.TextureStagingData)}
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return nil }
func (f *fakeRenderer) Pipelines() map[string]pipeline.Pipeline { return nil }
func (f *fakeRenderer) Resize(width, height int) { f.width, f.height = width, height }
func (f *fakeRenderer) Size() (int, int) { return f.width, f.height }
func (f *fakeRenderer) RecreateSurface() error { f.recreated++; return nil }
func (f *fakeRenderer) SetClearColor(c [4]float32) { f.clear = c }
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (f *fakeRenderer) EndFrame() {}
func (f *fakeRenderer) Present() { f.frames++ }
func (f *fakeRenderer) Release() {}
func (f *fakeRenderer) WriteBuffers(w []bind_group_provider.BufferWrite) { f.writes = append(f.writes, w...) }
func (f *fakeRenderer) BeginFrame() error { return f.beginErr }

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.registered = append(f.registered, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if f.meshErr != nil {
		return f.meshErr
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.groups = append(f.groups, provider.Group())
	return nil
}

func (f *fakeRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	f.textures[provider.Label()] = stagingData
	return nil
}

func (f *fakeRenderer) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (f *fakeRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.draws = append(f.draws, pipelineKey)
	groups := make([]int, len(bindGroups))
	for i, bg := range bindGroups {
		groups[i] = bg.Group()
	}
	f.drawGroups = append(f.drawGroups, groups)
	return nil
}

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func triangle(skinned bool) []model.GPUSkinnedVertex {
	v := make([]model.GPUSkinnedVertex, 3)
	for i := range v {
		v[i].Position = [3]float32{float32(i), 0, 0}
		v[i].Color = [4]float32{1, 1, 1, 1}
		if skinned {
			v[i].Joints = [4]uint32{uint32(i % 2), 0, 0, 0}
			v[i].Weights = [4]float32{1, 0, 0, 0}
		}
	}
	return v
}

func testSkeleton() *skin.Skeleton {
	return skin.NewSkeleton([]skin.Joint{
		{Name: "root", Node: 0, Parent: -1, Local: mgl32.Ident4(), InverseBind: mgl32.Ident4()},
		{Name: "arm", Node: 1, Parent: 0, Local: mgl32.Translate3D(0, 1, 0), InverseBind: mgl32.Ident4()},
	}, mgl32.Ident4())
}

// reachClip slides the arm from its rest position at y=1 to x=2 over one second.
func reachClip() animator.Clip {
	return animator.Clip{
		Name:     "reach",
		Duration: 1,
		Channels: []animator.Channel{{
			Joint:  1,
			Path:   animator.PathTranslation,
			Times:  []float32{0, 1},
			Values: []mgl32.Vec4{{0, 1, 0, 0}, {2, 1, 0, 0}},
		}},
	}
}

// testDecoder yields a textured static mesh followed by a vertex-colored skinned mesh.
func testDecoder(t *testing.T) Decoder {
	tex := pngBytes(t)
	return func(name string, data []byte) (*model.ImportedModel, error) {
		if string(data) == "broken" {
			return nil, errors.New("bad magic")
		}
		return &model.ImportedModel{
			Name: name,
			Meshes: []model.ImportedMesh{
				{Name: "body", Vertices: triangle(false), Indices: []uint32{0, 1, 2}, TextureIndex: 0},
				{Name: "arm", Vertices: triangle(true), Indices: []uint32{0, 1, 2}, Skinned: true, TextureIndex: -1},
			},
			Skeleton:   testSkeleton(),
			Animations: []animator.Clip{reachClip()},
			Textures:   []common.ImportedTexture{{Name: "skin.png", Data: tex}},
		}, nil
	}
}

func newTestScene(t *testing.T, opts ...SceneBuilderOption) (Scene, *fakeRenderer, *uniform.State) {
	r := newFakeRenderer()
	opts = append([]SceneBuilderOption{WithDecoder(testDecoder(t)), WithPoseWorkers(2)}, opts...)
	s, err := NewScene(r, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s, r, uniform.NewState(s, light.DefaultParam())
}

func TestNewSceneRegistersEveryVariant(t *testing.T) {
	_, r, _ := newTestScene(t)

	assert.Len(t, r.registered, pipeline.VariantCount)
	for _, key := range pipeline.AllVariants() {
		assert.Contains(t, r.registered, key.String())
	}
	assert.Equal(t, []int{0, 1}, r.groups)
}

func TestLoadModelUploadsEveryMesh(t *testing.T) {
	s, r, state := newTestScene(t)

	require.NoError(t, s.LoadModel("fox.glb", []byte("glb"), state))
	assert.Equal(t, 2, s.Drawables())
	assert.Equal(t, 2, state.Slots())

	body := r.textures["fox.glb/body instance"]
	assert.Equal(t, uint32(2), body.Width)
	assert.Equal(t, common.WhiteTexture(), r.textures["fox.glb/arm instance"])
}

func TestLoadModelReplacesPreviousModel(t *testing.T) {
	s, _, state := newTestScene(t)

	require.NoError(t, s.LoadModel("a.glb", nil, state))
	require.NoError(t, s.LoadModel("b.glb", nil, state))
	assert.Equal(t, 2, s.Drawables())
	assert.Equal(t, 2, state.Slots())
}

func TestLoadModelFailureKeepsCurrentModel(t *testing.T) {
	s, r, state := newTestScene(t)
	require.NoError(t, s.LoadModel("a.glb", nil, state))

	assert.Error(t, s.LoadModel("b.glb", []byte("broken"), state))
	assert.Equal(t, 2, s.Drawables())

	r.meshErr = errors.New("out of memory")
	err := s.LoadModel("c.glb", nil, state)
	require.Error(t, err)
	assert.ErrorIs(t, err, r.meshErr)
	assert.Equal(t, 2, s.Drawables())
	assert.Equal(t, 2, state.Slots())
}

func TestRenderDrawsOutlineThenFilled(t *testing.T) {
	s, r, state := newTestScene(t)
	require.NoError(t, s.LoadModel("fox.glb", nil, state))

	assert.Equal(t, frame.RenderSucceeded, s.Render(state))
	assert.Equal(t, []string{
		"texture_outline_light",
		"texture_light",
		"color_skin_outline_light",
		"color_skin_light",
	}, r.draws)
	for _, groups := range r.drawGroups {
		assert.Equal(t, []int{0, 1, 2, 3}, groups)
	}
	assert.Equal(t, 1, r.frames)
}

func TestRenderVariantOptions(t *testing.T) {
	s, r, state := newTestScene(t, WithOutlines(false), WithLighting(false))
	require.NoError(t, s.LoadModel("fox.glb", nil, state))

	s.Render(state)
	assert.Equal(t, []string{"texture", "color_skin"}, r.draws)
}

func TestRenderPosesSkeleton(t *testing.T) {
	s, _, state := newTestScene(t)
	require.NoError(t, s.LoadModel("fox.glb", nil, state))

	s.Render(state)

	// The skinned mesh is the second registered slot.
	table, err := state.JointTable(1)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), table.Joint(1).Transform)

	static, err := state.JointTable(0)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Ident4(), static.Joint(1).Transform)
}

func armTransform(t *testing.T, state *uniform.State) mgl32.Mat4 {
	t.Helper()
	table, err := state.JointTable(1)
	require.NoError(t, err)
	return table.Joint(1).Transform
}

func TestAnimationPosesSkeleton(t *testing.T) {
	s, _, state := newTestScene(t)
	require.NoError(t, s.LoadModel("fox.glb", nil, state))

	// nothing plays until asked
	s.Animate(500 * time.Millisecond)
	s.Render(state)
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), armTransform(t, state))

	require.NoError(t, s.PlayAnimation(0, animator.ModeRepeat))
	s.Animate(500 * time.Millisecond)
	s.Render(state)
	assert.True(t, armTransform(t, state).ApproxEqual(mgl32.Translate3D(1, 1, 0)), "arm %v", armTransform(t, state))

	s.StopAnimation()
	s.Animate(250 * time.Millisecond)
	s.Render(state)
	assert.True(t, armTransform(t, state).ApproxEqual(mgl32.Translate3D(1, 1, 0)))

	assert.ErrorIs(t, s.PlayAnimation(3, animator.ModeOnce), animator.ErrUnknownClip)
}

func TestAutoplayStartsOnLoad(t *testing.T) {
	s, _, state := newTestScene(t, WithAutoplay(0, animator.ModeLoop), WithAnimationSpeed(0.5))
	require.NoError(t, s.LoadModel("fox.glb", nil, state))

	s.Animate(time.Second)
	s.Render(state)
	assert.True(t, armTransform(t, state).ApproxEqual(mgl32.Translate3D(1, 1, 0)), "arm %v", armTransform(t, state))

	// a reload starts the new model from its first frame
	require.NoError(t, s.LoadModel("fox.glb", nil, state))
	s.Render(state)
	assert.True(t, armTransform(t, state).ApproxEqual(mgl32.Translate3D(0, 1, 0)))
}

func TestPlayAnimationWithoutModel(t *testing.T) {
	s, _, _ := newTestScene(t)
	assert.ErrorIs(t, s.PlayAnimation(0, animator.ModeLoop), animator.ErrUnknownClip)
	assert.NotPanics(t, func() {
		s.StopAnimation()
		s.Animate(time.Second)
	})
}

func TestRenderFlushesRecordWrites(t *testing.T) {
	s, r, state := newTestScene(t)
	require.NoError(t, s.LoadModel("fox.glb", nil, state))
	s.Render(state)
	r.writes = nil

	state.WriteCamera(state.Camera())
	state.WriteLights()
	s.Render(state)

	require.Len(t, r.writes, 3)
	assert.Equal(t, "camera", r.writes[0].Provider.Label())
	assert.Equal(t, "lights", r.writes[1].Provider.Label())
	assert.Equal(t, "fox.glb/arm joints", r.writes[2].Provider.Label())
	assert.Len(t, r.writes[1].Data, light.GPULightTableSize)

	r.writes = nil
	s.Render(state)
	assert.Len(t, r.writes, 1)
}

func TestRenderResults(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		beginErr error
		want     frame.RenderResult
	}{
		{"succeeded", 800, nil, frame.RenderSucceeded},
		{"no surface", 0, nil, frame.RenderNoSurface},
		{"surface lost", 800, fmt.Errorf("acquire: %w", renderer.ErrSurfaceLost), frame.RenderSurfaceLost},
		{"failed", 800, errors.New("previous frame surface not yet presented"), frame.RenderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r, state := newTestScene(t)
			r.width = tt.width
			r.beginErr = tt.beginErr
			assert.Equal(t, tt.want, s.Render(state))
		})
	}
}

func TestPresenterPassThrough(t *testing.T) {
	s, r, _ := newTestScene(t)

	s.Resize(1024, 768)
	assert.Equal(t, 1024, r.width)
	require.NoError(t, s.RecreateSurface())
	assert.Equal(t, 1, r.recreated)
	s.SetBackgroundColor([4]float32{0.8, 0.8, 1, 1})
	assert.Equal(t, [4]float32{0.8, 0.8, 1, 1}, r.clear)
}

func TestWriteToUnknownSlotIsDropped(t *testing.T) {
	s, r, _ := newTestScene(t)
	s.Write(uniform.BindingInstance, 42, []byte{1})
	s.Render(uniform.NewState(s, light.DefaultParam()))
	assert.Empty(t, r.writes)
}
