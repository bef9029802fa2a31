package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/config"
	"github.com/Carmen-Shannon/oxy-toon/engine/control"
	"github.com/Carmen-Shannon/oxy-toon/engine/frame"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toon/engine/scene"
	"github.com/Carmen-Shannon/oxy-toon/engine/window"
)

// Engine is the desktop viewer host. It owns the window, the renderer, the scene and the frame
// driver, and runs the window's event loop until the window closes.
type Engine interface {
	// Window returns the host window.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Driver returns the frame driver.
	//
	// Returns:
	//   - frame.Driver: the driver rendering every frame
	Driver() frame.Driver

	// Post queues an action on the frame driver. It is safe to call from any goroutine.
	//
	// Parameters:
	//   - a: the action
	//
	// Returns:
	//   - bool: true if the action was queued
	Post(a frame.Action) bool

	// LoadFile reads a model file in the background and replaces the displayed model with it.
	// A later LoadFile supersedes one still reading.
	//
	// Parameters:
	//   - path: the model file path
	LoadFile(path string)

	// Run processes window events and renders on demand until the window closes or Quit is
	// called, then releases every resource. It must be called on the thread that created the
	// engine.
	//
	// Returns:
	//   - error: an error if shutting down failed
	Run() error

	// Quit stops the engine. It is safe to call from any goroutine.
	Quit()
}

// engine is the implementation of the Engine interface.
type engine struct {
	mu *sync.Mutex

	win    window.Window
	r      renderer.Renderer
	scene  scene.Scene
	driver frame.Driver
	inbox  control.FileInbox

	cfg        config.Config
	configPath string
	watch      bool
	backend    renderer.RendererBackendType

	ctx    context.Context
	cancel context.CancelFunc

	quitOnce *sync.Once
	quit     bool
}

var _ Engine = &engine{}

// NewEngine creates the window, the renderer, the scene and the frame driver from the
// configuration, and wires input, file drops and configuration reloads into the driver.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: an error wrapping renderer.ErrUnsupportedDevice when no GPU is usable, or any
//     window, configuration or pipeline error
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:       &sync.Mutex{},
		cfg:      config.Default(),
		backend:  renderer.BackendTypeWGPU,
		quitOnce: &sync.Once{},
	}
	for _, opt := range options {
		opt(e)
	}

	if e.configPath != "" {
		cfg, err := config.Load(e.configPath)
		if err != nil {
			return nil, err
		}
		e.cfg = cfg
	}

	win, err := window.NewWindow(
		window.WithTitle(e.cfg.Window.Title),
		window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
		window.WithFullscreen(e.cfg.Window.Fullscreen),
	)
	if err != nil {
		return nil, err
	}
	e.win = win

	r, err := renderer.NewRenderer(e.backend, win,
		renderer.WithPresentMode(e.cfg.PresentMode()),
		renderer.WithMSAA(e.cfg.MSAA()),
		renderer.WithClearColor(e.cfg.Background),
		renderer.WithForceSoftwareRenderer(e.cfg.Renderer.Software),
	)
	if err != nil {
		_ = win.Close()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	e.r = r

	sceneOpts := []scene.SceneBuilderOption{
		scene.WithAutoplay(e.cfg.Animation.Clip, e.cfg.AutoplayMode()),
		scene.WithAnimationSpeed(e.cfg.Animation.Speed),
	}
	if e.cfg.Workers > 0 {
		sceneOpts = append(sceneOpts, scene.WithPoseWorkers(e.cfg.Workers))
	}
	sc, err := scene.NewScene(r, sceneOpts...)
	if err != nil {
		r.Release()
		_ = win.Close()
		return nil, fmt.Errorf("create scene: %w", err)
	}
	e.scene = sc

	cam := e.cfg.Camera
	e.driver = frame.NewDriver(sc, win,
		frame.WithCamera(camera.NewCamera(
			camera.WithEye(cam.Eye[0], cam.Eye[1], cam.Eye[2]),
			camera.WithYawPitch(cam.Yaw, cam.Pitch),
			camera.WithFov(cam.Fov),
			camera.WithRotationSpeed(cam.RotationSpeed),
		)),
		frame.WithPositionController(camera.NewPositionController(camera.WithSpeed(cam.Speed))),
		frame.WithLightParam(e.cfg.Light),
		frame.WithSize(win.Width(), win.Height()),
		frame.WithWaker(win.Wake),
		frame.WithMachineOptions(control.WithPointerCapturer(win)),
	)

	win.Bind(e.driver.Machine())
	win.SetUpdateCallback(e.update)
	win.SetRedrawCallback(e.driver.OnRedraw)
	win.SetDropCallback(e.drop)

	e.inbox = control.NewFileInbox(func(name string, data []byte) {
		e.driver.Post(frame.LoadModel(name, data))
	})

	e.applyConfig(e.cfg)
	e.driver.Machine().SetFocus(true)

	e.ctx, e.cancel = context.WithCancel(context.Background())
	if e.watch && e.configPath != "" {
		go func() {
			if err := config.Watch(e.ctx, e.configPath, e.applyConfig); err != nil {
				slog.Warn("config watch stopped", "path", e.configPath, "error", err)
			}
		}()
	}

	slog.Info("engine started",
		"width", win.Width(),
		"height", win.Height(),
		"msaa", e.cfg.MSAA(),
		"present_mode", e.cfg.Renderer.PresentMode,
	)
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.win
}

func (e *engine) Driver() frame.Driver {
	return e.driver
}

func (e *engine) Post(a frame.Action) bool {
	return e.driver.Post(a)
}

func (e *engine) LoadFile(path string) {
	h := e.inbox.Begin()
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("read model file", "path", path, "error", err)
			e.inbox.Cancel(h)
			return
		}
		if !e.inbox.Deliver(h, filepath.Base(path), data) {
			slog.Debug("superseded model file dropped", "path", path)
		}
	}()
}

func (e *engine) Run() error {
	e.win.ProcessMessages()

	e.cancel()
	e.scene.Release()
	e.r.Release()
	slog.Info("engine stopped", "mean_frame", e.driver.Stats().Mean)
	if err := e.win.Close(); err != nil {
		return fmt.Errorf("close window: %w", err)
	}
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.quit = true
		e.mu.Unlock()
		e.win.Wake()
	})
}

// update runs on the event thread after every event batch.
func (e *engine) update() {
	e.mu.Lock()
	quit := e.quit
	e.mu.Unlock()
	if quit {
		e.win.RequestClose()
		return
	}
	e.driver.Pump()
}

// drop loads the first dropped file; a viewer shows one model at a time.
func (e *engine) drop(paths []string) {
	if len(paths) == 0 {
		return
	}
	if len(paths) > 1 {
		slog.Info("several files dropped, loading the first", "count", len(paths))
	}
	e.LoadFile(paths[0])
}

// applyConfig turns the runtime-adjustable parts of cfg into driver actions.
func (e *engine) applyConfig(cfg config.Config) {
	e.Post(frame.SetLightParam(cfg.Light))
	e.Post(frame.SetOutline(cfg.Outline.Size, cfg.Outline.Darken))
	e.Post(frame.SetBackgroundColor(cfg.Background))
	e.Post(frame.SetLights(cfg.BuildLights()))
}
