package control

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-toon/engine/camera"
)

// Axis names one of the six movement magnitudes.
type Axis uint8

const (
	AxisForward Axis = iota
	AxisBackward
	AxisLeft
	AxisRight
	AxisUp
	AxisDown

	// AxisCount is the number of movement axes.
	AxisCount = 6
)

func (a Axis) String() string {
	switch a {
	case AxisForward:
		return "forward"
	case AxisBackward:
		return "backward"
	case AxisLeft:
		return "left"
	case AxisRight:
		return "right"
	case AxisUp:
		return "up"
	case AxisDown:
		return "down"
	default:
		return fmt.Sprintf("Axis(%d)", uint8(a))
	}
}

// Theme is the host's appearance preference.
type Theme uint8

const (
	ThemeUnspecified Theme = iota
	ThemeDark
	ThemeLight
)

func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	case ThemeLight:
		return "light"
	default:
		return "unspecified"
	}
}

// ParseTheme maps "dark" or "light" (case-insensitive) to a Theme. Anything else is ThemeUnspecified.
func ParseTheme(s string) Theme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ThemeDark
	case "light":
		return ThemeLight
	default:
		return ThemeUnspecified
	}
}

// Button is a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle

	// ButtonCount is the number of tracked pointer buttons.
	ButtonCount = 3
)

// State is one frame's snapshot of the control state. The frame driver reads it and never writes it back.
type State struct {
	// Axes holds the movement magnitudes, each 0 or 1 for keyboard input.
	Axes [AxisCount]float32
	// LookDX and LookDY are the pointer deltas accumulated since the previous sample.
	LookDX, LookDY float32
	// ZoomSteps is the net wheel steps since the previous sample; positive zooms in.
	ZoomSteps int
	GUIActive bool
	Focused   bool
	Theme     Theme
	// PointerX and PointerY are the last reported pointer position in window pixels.
	PointerX, PointerY float32
	// Held is the current button state. Pressed and Released are the edges since the previous sample.
	Held, Pressed, Released [ButtonCount]bool
}

// Axis returns the magnitude of one axis, or 0 for an unknown axis.
func (s State) Axis(a Axis) float32 {
	if int(a) >= AxisCount {
		return 0
	}
	return s.Axes[a]
}

// Movement converts the axes into the camera position controller's input.
func (s State) Movement() camera.Movement {
	return camera.Movement{
		Forward:  s.Axes[AxisForward],
		Backward: s.Axes[AxisBackward],
		Left:     s.Axes[AxisLeft],
		Right:    s.Axes[AxisRight],
		Up:       s.Axes[AxisUp],
		Down:     s.Axes[AxisDown],
	}
}
