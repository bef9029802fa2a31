package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/asset"
	"github.com/Carmen-Shannon/oxy-toon/engine/frame"
	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-toon/engine/skin"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// Bind group indices of the toon program.
const (
	groupCamera   = 0
	groupLights   = 1
	groupInstance = 2
	groupJoints   = 3

	bindingTexture = 1
	bindingSampler = 2
)

// Decoder turns model file bytes into an imported model.
type Decoder func(name string, data []byte) (*model.ImportedModel, error)

// Scene is the presenter the frame driver renders through. It owns the GPU resources of the
// loaded model, routes record writes to their buffers and draws every drawable once per frame
// with the toon program.
// Scene must only be used from the render thread.
type Scene interface {
	frame.Presenter

	// Drawables returns the number of meshes currently drawn.
	//
	// Returns:
	//   - int: the drawable count
	Drawables() int

	// Release frees every GPU resource the scene created and stops its worker pool.
	Release()
}

// drawable is one uploaded mesh and the providers it draws with.
type drawable struct {
	model     model.Model
	slot      int
	key       pipeline.VariantKey
	transform mgl32.Mat4

	instance bind_group_provider.BindGroupProvider
	joints   bind_group_provider.BindGroupProvider
}

func (d *drawable) release() {
	if p := d.model.MeshProvider(); p != nil {
		p.Release()
	}
	d.instance.Release()
	d.joints.Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	r       renderer.Renderer
	program shader.Shader
	decode  Decoder
	sampler common.SamplerStagingData

	lit      bool
	outlined bool

	cameraProvider bind_group_provider.BindGroupProvider
	lightsProvider bind_group_provider.BindGroupProvider

	drawables []*drawable
	bySlot    map[int]*drawable

	// palettes holds one posed palette per skeleton; meshes of one model share a skeleton.
	palettes  map[*skin.Skeleton][]skin.JointMatrix
	skeletons []*skin.Skeleton
	// stale is set when a skeleton's locals changed since the palettes were last posed.
	stale bool

	anim         animator.Animator
	autoplayClip int
	autoplay     animator.Mode
	animSpeed    float32

	batch     bind_group_provider.WriteBatch
	sequencer *pass.Sequencer
	items     []pass.Item
	bindings  []bind_group_provider.BindGroupProvider

	posePool    worker.DynamicWorkerPool
	poseWorkers int
}

var _ Scene = &scene{}

// NewScene creates a Scene drawing through r. It reflects the toon program, registers every
// pipeline variant and creates the camera and light bind groups.
//
// Parameters:
//   - r: the renderer to draw through
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the scene, with no model loaded
//   - error: an error if the program or a pipeline cannot be created
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		mu:          &sync.Mutex{},
		r:           r,
		decode:      asset.Decode,
		lit:         true,
		outlined:    true,
		bySlot:      make(map[int]*drawable),
		palettes:    make(map[*skin.Skeleton][]skin.JointMatrix),
		sequencer:   pass.NewSequencer(),
		bindings:    make([]bind_group_provider.BindGroupProvider, 4),
		poseWorkers: max(runtime.NumCPU()-1, 1),
		animSpeed:   1,
	}
	for _, option := range options {
		option(s)
	}

	if s.program == nil {
		program, err := shader.NewToonShader()
		if err != nil {
			return nil, fmt.Errorf("toon program: %w", err)
		}
		s.program = program
	}

	pipelines := make([]pipeline.Pipeline, 0, pipeline.VariantCount)
	for _, key := range pipeline.AllVariants() {
		p, err := pipeline.NewVariantPipeline(pipeline.Select(key), s.program)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, p)
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return nil, err
	}

	s.cameraProvider = bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithGroup(groupCamera))
	if err := r.InitBindGroup(s.cameraProvider, s.program.BindGroupLayoutDescriptor(groupCamera)); err != nil {
		return nil, fmt.Errorf("camera bind group: %w", err)
	}
	s.lightsProvider = bind_group_provider.NewBindGroupProvider("lights", bind_group_provider.WithGroup(groupLights))
	if err := r.InitBindGroup(s.lightsProvider, s.program.BindGroupLayoutDescriptor(groupLights)); err != nil {
		s.cameraProvider.Release()
		return nil, fmt.Errorf("light bind group: %w", err)
	}

	// Workers persist across frames; the queue covers one task per skeleton with headroom.
	s.posePool = worker.NewDynamicWorkerPool(s.poseWorkers, 64, time.Second)
	return s, nil
}

func (s *scene) Write(binding uniform.Binding, slot int, data []byte) {
	var provider bind_group_provider.BindGroupProvider
	switch binding {
	case uniform.BindingCamera:
		provider = s.cameraProvider
	case uniform.BindingLights:
		provider = s.lightsProvider
	case uniform.BindingInstance, uniform.BindingJoints:
		d, ok := s.bySlot[slot]
		if !ok {
			slog.Debug("dropping write to unknown slot", "binding", binding.String(), "slot", slot)
			return
		}
		provider = d.instance
		if binding == uniform.BindingJoints {
			provider = d.joints
		}
	default:
		return
	}
	// data is only valid for the duration of the call.
	s.batch.Add(provider, 0, append([]byte(nil), data...))
}

func (s *scene) Resize(width, height int) {
	s.r.Resize(width, height)
}

func (s *scene) RecreateSurface() error {
	return s.r.RecreateSurface()
}

func (s *scene) SetBackgroundColor(color [4]float32) {
	s.r.SetClearColor(color)
}

func (s *scene) Drawables() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drawables)
}

func (s *scene) LoadModel(name string, data []byte, state *uniform.State) error {
	imported, err := s.decode(name, data)
	if err != nil {
		return err
	}
	models, err := model.NewModelsFromImport(imported)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := make([]*drawable, 0, len(models))
	for _, m := range models {
		d, err := s.upload(m, state)
		if err != nil {
			for _, d := range loaded {
				s.forget(d, state)
			}
			return fmt.Errorf("upload %s: %w", m.Name(), err)
		}
		loaded = append(loaded, d)
	}

	for _, d := range s.drawables {
		s.forget(d, state)
	}
	s.drawables = loaded
	clear(s.palettes)
	for _, d := range loaded {
		if d.model.Skinned() {
			s.palettes[d.model.Skeleton()] = nil
		}
	}
	s.stale = true

	s.anim = nil
	if imported.Skeleton != nil && len(imported.Animations) > 0 {
		opts := []animator.AnimatorBuilderOption{animator.WithSpeed(s.animSpeed)}
		if s.autoplay != animator.ModeStopped {
			opts = append(opts, animator.WithAutoplay(s.autoplayClip, s.autoplay))
		}
		s.anim = animator.NewAnimator(imported.Skeleton, imported.Animations, opts...)
	}
	slog.Info("model loaded",
		"name", name,
		"meshes", len(loaded),
		"skeletons", len(s.palettes),
		"animations", len(imported.Animations),
	)
	return nil
}

func (s *scene) Animate(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anim != nil && s.anim.Update(dt) {
		s.stale = true
	}
}

func (s *scene) PlayAnimation(clip int, mode animator.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anim == nil {
		return fmt.Errorf("%w: the loaded model has no animations", animator.ErrUnknownClip)
	}
	if err := s.anim.Play(clip, mode); err != nil {
		return err
	}
	s.stale = true
	slog.Debug("animation started", "clip", s.anim.Clips()[clip].Name, "mode", mode.String())
	return nil
}

func (s *scene) StopAnimation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anim != nil {
		s.anim.Stop()
	}
}

// upload creates the GPU resources of one mesh and registers its slot. Callers hold s.mu.
func (s *scene) upload(m model.Model, state *uniform.State) (*drawable, error) {
	d := &drawable{
		model:     m,
		transform: mgl32.Ident4(),
		key: pipeline.VariantKey{
			Color:    pipeline.ColorVertex,
			Skinning: pipeline.Static,
			Outline:  pipeline.Filled,
			Lighting: pipeline.Unlit,
		},
		instance: bind_group_provider.NewBindGroupProvider(m.Name()+" instance", bind_group_provider.WithGroup(groupInstance)),
		joints:   bind_group_provider.NewBindGroupProvider(m.Name()+" joints", bind_group_provider.WithGroup(groupJoints)),
	}
	if m.Textured() {
		d.key.Color = pipeline.ColorTexture
	}
	if m.Skinned() {
		d.key.Skinning = pipeline.Skinned
	}
	if s.outlined {
		d.key.Outline = pipeline.Outlined
	}
	if s.lit {
		d.key.Lighting = pipeline.Lit
	}

	mesh := bind_group_provider.NewBindGroupProvider(m.Name() + " mesh")
	m.SetMeshProvider(mesh)
	d.slot = state.Register()
	s.bySlot[d.slot] = d

	fail := func(err error) (*drawable, error) {
		s.forget(d, state)
		return nil, err
	}

	if err := s.r.InitMeshBuffers(mesh, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fail(err)
	}
	texture := common.WhiteTexture()
	if tex := m.Texture(); tex != nil {
		texture = *tex
	}
	if err := s.r.InitTextureView(d.instance, bindingTexture, texture); err != nil {
		return fail(err)
	}
	if err := s.r.InitSampler(d.instance, bindingSampler, s.sampler); err != nil {
		return fail(err)
	}
	if err := s.r.InitBindGroup(d.instance, s.program.BindGroupLayoutDescriptor(groupInstance)); err != nil {
		return fail(err)
	}
	if err := s.r.InitBindGroup(d.joints, s.program.BindGroupLayoutDescriptor(groupJoints)); err != nil {
		return fail(err)
	}

	if err := state.WriteInstance(d.slot, d.transform, m.TextureTransform()); err != nil {
		return fail(err)
	}
	// Static meshes keep the identity palette written once here.
	if _, err := state.WriteJoints(d.slot, nil); err != nil {
		return fail(err)
	}
	return d, nil
}

// forget releases a drawable's resources and its slot. Callers hold s.mu.
func (s *scene) forget(d *drawable, state *uniform.State) {
	d.release()
	delete(s.bySlot, d.slot)
	state.Release(d.slot)
}

// pose computes every skeleton's palette on the worker pool and waits for all of them.
// Each skeleton is posed by exactly one task since posing mutates its scratch state.
func (s *scene) pose() {
	if len(s.palettes) == 0 {
		return
	}

	s.skeletons = s.skeletons[:0]
	for sk := range s.palettes {
		s.skeletons = append(s.skeletons, sk)
	}
	posed := make([][]skin.JointMatrix, len(s.skeletons))

	var wg sync.WaitGroup
	for i, sk := range s.skeletons {
		palette := s.palettes[sk]
		wg.Add(1)
		s.posePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				posed[i] = sk.PoseInto(palette)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, sk := range s.skeletons {
		s.palettes[sk] = posed[i]
	}
}

func (s *scene) Render(state *uniform.State) frame.RenderResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale {
		s.pose()
		s.stale = false
	}
	for _, d := range s.drawables {
		if !d.model.Skinned() {
			continue
		}
		dropped, err := state.WriteJoints(d.slot, s.palettes[d.model.Skeleton()])
		if err != nil {
			slog.Warn("failed to write joints", "model", d.model.Name(), "error", err)
			continue
		}
		if dropped > 0 {
			slog.Debug("joints beyond table capacity dropped", "model", d.model.Name(), "dropped", dropped)
		}
	}

	s.r.WriteBuffers(s.batch.Writes())
	s.batch.Reset()

	if w, h := s.r.Size(); w <= 0 || h <= 0 {
		return frame.RenderNoSurface
	}

	if err := s.r.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceLost) {
			slog.Debug("surface lost, dropping frame", "error", err)
			return frame.RenderSurfaceLost
		}
		slog.Warn("failed to begin frame", "error", err)
		return frame.RenderFailed
	}

	s.items = s.items[:0]
	for _, d := range s.drawables {
		s.items = append(s.items, pass.Item{Slot: d.slot, Key: d.key})
	}

	result := frame.RenderSucceeded
	for _, draw := range s.sequencer.Plan(s.items) {
		d := s.bySlot[draw.Slot]
		s.bindings[0] = s.cameraProvider
		s.bindings[1] = s.lightsProvider
		s.bindings[2] = d.instance
		s.bindings[3] = d.joints
		if err := s.r.DrawCall(draw.Variant.Key, d.model.MeshProvider(), 1, s.bindings); err != nil {
			slog.Error("draw failed", "model", d.model.Name(), "pass", draw.Kind.String(), "error", err)
			result = frame.RenderFailed
		}
	}

	s.r.EndFrame()
	s.r.Present()
	return result
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.drawables {
		d.release()
	}
	s.drawables = nil
	s.anim = nil
	clear(s.bySlot)
	clear(s.palettes)
	s.cameraProvider.Release()
	s.lightsProvider.Release()
	s.posePool.Stop()
}
