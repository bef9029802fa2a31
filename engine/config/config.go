// Package config loads the viewer configuration from YAML or TOML and watches it for edits.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer/pass"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a configuration file whose extension is neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown config format")

// Format is a configuration file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatOf picks the encoding from a file extension (.yaml, .yml or .toml).
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - Format: the encoding
//   - error: ErrUnknownFormat for any other extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Config is the complete viewer configuration. Zero-valued sections in a file keep their defaults.
type Config struct {
	Window     Window             `yaml:"window" toml:"window"`
	Renderer   Renderer           `yaml:"renderer" toml:"renderer"`
	Camera     Camera             `yaml:"camera" toml:"camera"`
	Light      light.Param        `yaml:"light" toml:"light"`
	Outline    pass.OutlineParams `yaml:"outline" toml:"outline"`
	Background [4]float32         `yaml:"background" toml:"background"`
	Lights     []Light            `yaml:"lights" toml:"lights"`
	Animation  Animation          `yaml:"animation" toml:"animation"`
	// Workers is the skeleton posing pool size. Zero picks one less than the CPU count.
	Workers int `yaml:"workers" toml:"workers"`
}

// Window describes the host window.
type Window struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
}

// Renderer selects surface presentation and multisampling.
type Renderer struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `yaml:"present_mode" toml:"present_mode"`
	// MSAA is the sample count: 1 or 4.
	MSAA     int  `yaml:"msaa" toml:"msaa"`
	Software bool `yaml:"software" toml:"software"`
}

// Camera holds the initial view and the fly-camera speeds.
type Camera struct {
	Fov           float32    `yaml:"fov" toml:"fov"`
	Speed         float32    `yaml:"speed" toml:"speed"`
	RotationSpeed float32    `yaml:"rotation_speed" toml:"rotation_speed"`
	Eye           [3]float32 `yaml:"eye" toml:"eye"`
	Yaw           float32    `yaml:"yaw" toml:"yaw"`
	Pitch         float32    `yaml:"pitch" toml:"pitch"`
}

// Animation selects the clip played whenever a model loads.
type Animation struct {
	// Autoplay is "stopped", "once", "repeat" or "loop".
	Autoplay string `yaml:"autoplay" toml:"autoplay"`
	// Clip is the index of the clip to play.
	Clip  int     `yaml:"clip" toml:"clip"`
	Speed float32 `yaml:"speed" toml:"speed"`
}

// Light describes one scene light. Type is "point", "directional" or "parallel". Cone angles
// are in degrees and only apply to directional lights.
type Light struct {
	Type        string     `yaml:"type" toml:"type"`
	Position    [3]float32 `yaml:"position" toml:"position"`
	Direction   [3]float32 `yaml:"direction" toml:"direction"`
	Color       [3]float32 `yaml:"color" toml:"color"`
	Attenuation [3]float32 `yaml:"attenuation" toml:"attenuation"`
	Inner       float32    `yaml:"inner" toml:"inner"`
	Outer       float32    `yaml:"outer" toml:"outer"`
	Strength    float32    `yaml:"strength" toml:"strength"`
	Disabled    bool       `yaml:"disabled" toml:"disabled"`
}

// Default returns the stock configuration: a lavender background, default toon constants and a
// single white point light above and in front of the origin.
func Default() Config {
	return Config{
		Window: Window{Title: "oxy-toon", Width: 1280, Height: 720},
		Renderer: Renderer{
			PresentMode: "vsync",
			MSAA:        int(renderer.MSAA4x),
		},
		Camera: Camera{
			Fov:           camera.DefaultFov,
			Speed:         0.01,
			RotationSpeed: 0.3,
			Eye:           [3]float32{1, 1, 1},
		},
		Light:      light.DefaultParam(),
		Outline:    pass.DefaultOutlineParams(),
		Background: [4]float32{0.8, 0.8, 1.0, 1.0},
		Animation:  Animation{Autoplay: animator.ModeStopped.String(), Speed: 1},
		Lights: []Light{{
			Type:        "point",
			Position:    [3]float32{0, 3, 3},
			Color:       [3]float32{1, 1, 1},
			Attenuation: [3]float32{1, 0, 0},
			Strength:    1,
		}},
	}
}

// Load reads a configuration file over the defaults. A missing file yields the defaults.
//
// Parameters:
//   - path: the file path; the extension selects YAML or TOML
//
// Returns:
//   - Config: the loaded configuration
//   - error: ErrUnknownFormat, a read error or a parse error
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration bytes over the defaults and normalizes the result.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding
//
// Returns:
//   - Config: the configuration
//   - error: a decode error
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	// A lights list in the file replaces the default list rather than merging into it.
	cfg.Lights = nil

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, ErrUnknownFormat
	}

	if !hasLights(data, format) {
		cfg.Lights = Default().Lights
	}
	cfg.normalize()
	return cfg, nil
}

// hasLights reports whether the document declares a lights key, so an explicit empty list can
// turn every light off.
func hasLights(data []byte, format Format) bool {
	var probe map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &probe)
	case FormatTOML:
		err = toml.Unmarshal(data, &probe)
	}
	if err != nil {
		return false
	}
	_, ok := probe["lights"]
	return ok
}

func (c *Config) normalize() {
	d := Default()
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = d.Window.Width, d.Window.Height
	}
	if c.Camera.Fov < camera.MinFov || c.Camera.Fov > camera.MaxFov {
		slog.Warn("camera fov out of range, using default", "fov", c.Camera.Fov)
		c.Camera.Fov = d.Camera.Fov
	}
	if c.Camera.Speed <= 0 {
		c.Camera.Speed = d.Camera.Speed
	}
	if c.Camera.RotationSpeed <= 0 {
		c.Camera.RotationSpeed = d.Camera.RotationSpeed
	}
	c.Light = c.Light.Normalized()
	if c.Workers < 0 {
		c.Workers = 0
	}
	if _, err := animator.ParseMode(c.Animation.Autoplay); err != nil {
		slog.Warn("unknown animation autoplay mode, not playing", "autoplay", c.Animation.Autoplay)
		c.Animation.Autoplay = d.Animation.Autoplay
	}
	if c.Animation.Clip < 0 {
		c.Animation.Clip = 0
	}
	if c.Animation.Speed <= 0 {
		c.Animation.Speed = d.Animation.Speed
	}
}

// AutoplayMode maps the configured autoplay mode.
func (c Config) AutoplayMode() animator.Mode {
	mode, err := animator.ParseMode(c.Animation.Autoplay)
	if err != nil {
		return animator.ModeStopped
	}
	return mode
}

// PresentMode maps the configured present mode, defaulting to vsync.
func (c Config) PresentMode() renderer.PresentMode {
	if strings.EqualFold(c.Renderer.PresentMode, "uncapped") {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}

// MSAA maps the configured sample count. Counts other than 1 fall back to 4x.
func (c Config) MSAA() renderer.MSAASampleCount {
	if c.Renderer.MSAA == int(renderer.MSAAOff) {
		return renderer.MSAAOff
	}
	return renderer.MSAA4x
}

// BuildLights converts the configured lights. Entries with an unknown type are skipped with a
// warning.
//
// Returns:
//   - []light.Light: the lights in declaration order
func (c Config) BuildLights() []light.Light {
	out := make([]light.Light, 0, len(c.Lights))
	for i, l := range c.Lights {
		var t light.LightType
		switch strings.ToLower(l.Type) {
		case "", "point":
			t = light.LightTypePoint
		case "directional", "spot":
			t = light.LightTypeDirectional
		case "parallel", "sun":
			t = light.LightTypeParallel
		default:
			slog.Warn("skipping light with unknown type", "index", i, "type", l.Type)
			continue
		}

		opts := []light.LightBuilderOption{
			light.WithPosition(l.Position[0], l.Position[1], l.Position[2]),
			light.WithEnabled(!l.Disabled),
		}
		if l.Direction != ([3]float32{}) {
			opts = append(opts, light.WithDirection(l.Direction[0], l.Direction[1], l.Direction[2]))
		}
		if l.Color != ([3]float32{}) {
			opts = append(opts, light.WithColor(l.Color[0], l.Color[1], l.Color[2]))
		}
		if l.Attenuation != ([3]float32{}) {
			opts = append(opts, light.WithAttenuation(l.Attenuation[0], l.Attenuation[1], l.Attenuation[2]))
		}
		if l.Outer > 0 {
			opts = append(opts, light.WithConeDegrees(l.Inner, l.Outer))
		}
		if l.Strength > 0 {
			opts = append(opts, light.WithStrength(l.Strength))
		}
		out = append(out, light.NewLight(t, opts...))
	}
	return out
}
