package frame

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-toon/engine/animator"
	"github.com/Carmen-Shannon/oxy-toon/engine/light"
)

// Action is a deferred change applied on the render thread at the start of the next frame.
type Action interface {
	apply(d *driver) error
	fmt.Stringer
}

type setLightParam struct {
	param light.Param
}

// SetLightParam replaces the toon shading constants. Both threshold pairs are ordered first.
func SetLightParam(p light.Param) Action {
	return setLightParam{param: p.Normalized()}
}

func (a setLightParam) apply(d *driver) error {
	d.state.Lights().SetParam(a.param)
	return nil
}

func (a setLightParam) String() string { return "set light param" }

type setBackgroundColor struct {
	color [4]float32
}

// SetBackgroundColor sets the clear color of later frames.
func SetBackgroundColor(color [4]float32) Action {
	return setBackgroundColor{color: color}
}

func (a setBackgroundColor) apply(d *driver) error {
	d.presenter.SetBackgroundColor(a.color)
	return nil
}

func (a setBackgroundColor) String() string { return "set background color" }

type loadModel struct {
	name string
	data []byte
}

// LoadModel replaces the displayed model with the decoded bytes.
func LoadModel(name string, data []byte) Action {
	return loadModel{name: name, data: data}
}

func (a loadModel) apply(d *driver) error {
	if err := d.presenter.LoadModel(a.name, a.data, d.state); err != nil {
		return fmt.Errorf("load model %q: %w", a.name, err)
	}
	return nil
}

func (a loadModel) String() string { return "load model " + a.name }

type setOutline struct {
	size, darken float32
}

// SetOutline sets the outline extrusion size and darkening factor.
func SetOutline(size, darken float32) Action {
	return setOutline{size: size, darken: darken}
}

func (a setOutline) apply(d *driver) error {
	d.state.Lights().SetOutline(a.size, a.darken)
	return nil
}

func (a setOutline) String() string { return "set outline" }

type setLights struct {
	lights []light.Light
}

// SetLights replaces every light in the table. Lights past a category's capacity are dropped
// and reported.
func SetLights(lights []light.Light) Action {
	return setLights{lights: lights}
}

func (a setLights) apply(d *driver) error {
	dropped, err := d.state.Lights().Set(a.lights)
	if err != nil {
		return fmt.Errorf("set lights: %d dropped: %w", dropped, err)
	}
	return nil
}

func (a setLights) String() string { return "set lights" }

type playAnimation struct {
	clip int
	mode animator.Mode
}

// PlayAnimation restarts the loaded model's clip from its first frame in the given mode.
func PlayAnimation(clip int, mode animator.Mode) Action {
	return playAnimation{clip: clip, mode: mode}
}

func (a playAnimation) apply(d *driver) error {
	if err := d.presenter.PlayAnimation(a.clip, a.mode); err != nil {
		return fmt.Errorf("play animation %d: %w", a.clip, err)
	}
	return nil
}

func (a playAnimation) String() string {
	return fmt.Sprintf("play animation %d %s", a.clip, a.mode)
}

type stopAnimation struct{}

// StopAnimation holds the current pose of the loaded model.
func StopAnimation() Action {
	return stopAnimation{}
}

func (stopAnimation) apply(d *driver) error {
	d.presenter.StopAnimation()
	return nil
}

func (stopAnimation) String() string { return "stop animation" }
