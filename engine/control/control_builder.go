package control

// MachineBuilderOption is a functional option used to configure a Machine during construction.
type MachineBuilderOption func(*machine)

// WithPointerCapturer sets the host hook that grabs and releases the pointer.
//
// Parameters:
//   - c: the capturer
//
// Returns:
//   - MachineBuilderOption: a function that applies the capturer to a machine
func WithPointerCapturer(c PointerCapturer) MachineBuilderOption {
	return func(m *machine) {
		m.capturer = c
	}
}

// WithForwarder sets the frame driver that receives resize, focus and render requests.
//
// Parameters:
//   - f: the forwarder
//
// Returns:
//   - MachineBuilderOption: a function that applies the forwarder to a machine
func WithForwarder(f Forwarder) MachineBuilderOption {
	return func(m *machine) {
		m.forwarder = f
	}
}

// WithFocused sets the initial focus flag. Hosts whose window starts focused pass true.
//
// Parameters:
//   - focused: the initial focus flag
//
// Returns:
//   - MachineBuilderOption: a function that applies the focus flag to a machine
func WithFocused(focused bool) MachineBuilderOption {
	return func(m *machine) {
		m.state.Focused = focused
	}
}

// WithTheme sets the initial theme preference.
//
// Parameters:
//   - theme: the initial theme
//
// Returns:
//   - MachineBuilderOption: a function that applies the theme to a machine
func WithTheme(theme Theme) MachineBuilderOption {
	return func(m *machine) {
		m.state.Theme = theme
	}
}
