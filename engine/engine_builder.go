package engine

import (
	"github.com/Carmen-Shannon/oxy-toon/engine/config"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration used when no configuration file is given.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithConfigPath loads the configuration from a YAML or TOML file. A missing file falls back to
// the defaults.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.configPath = path
	}
}

// WithWatch reapplies lighting, outline and background settings whenever the configuration
// file changes. It has no effect without WithConfigPath.
func WithWatch(watch bool) EngineBuilderOption {
	return func(e *engine) {
		e.watch = watch
	}
}

// WithBackend selects the rendering backend.
//
// Parameters:
//   - backend: the backend type (default renderer.BackendTypeWGPU)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(backend renderer.RendererBackendType) EngineBuilderOption {
	return func(e *engine) {
		e.backend = backend
	}
}
