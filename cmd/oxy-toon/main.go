// Command oxy-toon opens a window and displays a glTF model with toon shading.
//
// Usage:
//
//	oxy-toon [-config viewer.yaml] [-watch] [-log-level debug] [model.glb]
//
// Models can also be dropped onto the window. WASD, Space and Shift move the camera, the mouse
// looks around, the wheel zooms, F10 releases the pointer, F11 toggles fullscreen and Esc quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-toon/engine"
	"github.com/Carmen-Shannon/oxy-toon/engine/renderer"
)

// exit codes
const (
	exitOK = iota
	exitError
	exitUnsupportedDevice
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("oxy-toon", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML or TOML configuration file")
	watch := fs.Bool("watch", false, "reapply lighting and outline settings when the configuration file changes")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	modelPath := fs.String("model", "", "glTF or GLB model to open")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		return exitError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	model := *modelPath
	if model == "" && fs.NArg() > 0 {
		model = fs.Arg(0)
	}

	opts := []engine.EngineBuilderOption{engine.WithWatch(*watch)}
	if *configPath != "" {
		opts = append(opts, engine.WithConfigPath(*configPath))
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		slog.Error("start viewer", "error", err)
		if errors.Is(err, renderer.ErrUnsupportedDevice) {
			return exitUnsupportedDevice
		}
		return exitError
	}

	if model != "" {
		eng.LoadFile(model)
	}

	if err := eng.Run(); err != nil {
		slog.Error("shut down viewer", "error", err)
		return exitError
	}
	return exitOK
}
