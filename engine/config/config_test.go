package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
window:
  title: fox viewer
  width: 800
  height: 600
renderer:
  present_mode: uncapped
  msaa: 1
camera:
  fov: 60
  eye: [0, 1, 4]
light:
  start: 0.9
  stop: 0.2
outline:
  size: 0.01
background: [0, 0, 0, 1]
lights:
  - type: parallel
    direction: [0, -1, 0]
    strength: 0.5
  - type: directional
    position: [0, 2, 0]
    direction: [0, -1, 0]
    inner: 10
    outer: 30
workers: 3
animation:
  autoplay: loop
  clip: 2
  speed: 0.5
`

const tomlConfig = `
background = [0.1, 0.2, 0.3, 1.0]
workers = 2

[window]
title = "toml"

[camera]
speed = 0.05

[[lights]]
type = "point"
position = [1.0, 2.0, 3.0]
`

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"viewer.yaml", FormatYAML, false},
		{"viewer.YML", FormatYAML, false},
		{"viewer.toml", FormatTOML, false},
		{"viewer.json", 0, true},
		{"viewer", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "fox viewer", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, renderer.PresentModeUncapped, cfg.PresentMode())
	assert.Equal(t, renderer.MSAAOff, cfg.MSAA())
	assert.InDelta(t, 60, cfg.Camera.Fov, 1e-6)
	assert.Equal(t, [3]float32{0, 1, 4}, cfg.Camera.Eye)
	// Untouched fields keep their defaults.
	assert.InDelta(t, 0.3, cfg.Camera.RotationSpeed, 1e-6)
	assert.InDelta(t, 0.5, cfg.Outline.Darken, 1e-6)
	assert.InDelta(t, 0.01, cfg.Outline.Size, 1e-6)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Background)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, animator.ModeLoop, cfg.AutoplayMode())
	assert.Equal(t, 2, cfg.Animation.Clip)
	assert.InDelta(t, 0.5, cfg.Animation.Speed, 1e-6)

	// Start and stop are reordered.
	assert.InDelta(t, 0.2, cfg.Light.Start, 1e-6)
	assert.InDelta(t, 0.9, cfg.Light.Stop, 1e-6)
	assert.InDelta(t, light.DefaultParam().Ambient, cfg.Light.Ambient, 1e-6)

	lights := cfg.BuildLights()
	require.Len(t, lights, 2)
	assert.Equal(t, light.LightTypeParallel, lights[0].Type())
	assert.InDelta(t, 0.5, lights[0].Strength(), 1e-6)
	assert.Equal(t, light.LightTypeDirectional, lights[1].Type())
	_, outer := lights[1].AngularRange()
	assert.InDelta(t, 0.5, outer, 1e-5)
}

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(tomlConfig), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "toml", cfg.Window.Title)
	assert.Equal(t, Default().Window.Width, cfg.Window.Width)
	assert.InDelta(t, 0.05, cfg.Camera.Speed, 1e-6)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Background)
	assert.Equal(t, 2, cfg.Workers)
	require.Len(t, cfg.Lights, 1)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Lights[0].Position)
}

func TestParseLightsList(t *testing.T) {
	cfg, err := Parse([]byte("workers: 1\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default().Lights, cfg.Lights)

	cfg, err = Parse([]byte("lights: []\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, cfg.Lights)

	cfg, err = Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("windw:\n  title: typo\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("[windw]\ntitle = \"typo\"\n"), FormatTOML)
	assert.Error(t, err)
}

func TestParseNormalizes(t *testing.T) {
	cfg, err := Parse([]byte("camera:\n  fov: 500\n  speed: -1\nwindow:\n  width: 0\nworkers: -4\n"), FormatYAML)
	require.NoError(t, err)
	assert.InDelta(t, camera.DefaultFov, cfg.Camera.Fov, 1e-6)
	assert.InDelta(t, Default().Camera.Speed, cfg.Camera.Speed, 1e-6)
	assert.Equal(t, Default().Window.Width, cfg.Window.Width)
	assert.Zero(t, cfg.Workers)
	assert.Equal(t, animator.ModeStopped, Default().AutoplayMode())

	cfg, err = Parse([]byte("animation:\n  autoplay: bounce\n  clip: -2\n  speed: 0\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, animator.ModeStopped, cfg.AutoplayMode())
	assert.Zero(t, cfg.Animation.Clip)
	assert.InDelta(t, 1, cfg.Animation.Speed, 1e-6)
}

func TestBuildLightsSkipsUnknownType(t *testing.T) {
	cfg := Default()
	cfg.Lights = append(cfg.Lights, Light{Type: "laser"}, Light{Type: "sun", Disabled: true})

	lights := cfg.BuildLights()
	require.Len(t, lights, 2)
	assert.Equal(t, light.LightTypePoint, lights[0].Type())
	assert.Equal(t, light.LightTypeParallel, lights[1].Type())
	assert.False(t, lights[1].Enabled())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "viewer.ini"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	path := filepath.Join(dir, "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "toml", cfg.Window.Title)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("window: [oops"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// The watcher starts asynchronously, so keep writing until a reload is seen. A reload can
	// also observe the truncated file mid-write.
	deadline := time.After(5 * time.Second)
loop:
	for {
		require.NoError(t, os.WriteFile(path, []byte("workers: 7\n"), 0o644))
		select {
		case got := <-changes:
			if got.Workers == 7 {
				break loop
			}
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchRejectsUnknownFormat(t *testing.T) {
	err := Watch(context.Background(), "viewer.ini", func(Config) {})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
