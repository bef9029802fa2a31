package light

// Param holds the toon shading constants shared by every light in the table.
//
// Start, Stop and Max shape the strength map applied to every diffuse term. BorderStart,
// BorderStop and BorderMax shape the rim term. Ambient scales the base color unconditionally.
type Param struct {
	Start       float32 `yaml:"start" toml:"start"`
	Stop        float32 `yaml:"stop" toml:"stop"`
	Max         float32 `yaml:"max" toml:"max"`
	BorderStart float32 `yaml:"border_start" toml:"border_start"`
	BorderStop  float32 `yaml:"border_stop" toml:"border_stop"`
	BorderMax   float32 `yaml:"border_max" toml:"border_max"`
	Ambient     float32 `yaml:"ambient" toml:"ambient"`
}

// DefaultParam returns the stock toon constants.
func DefaultParam() Param {
	return Param{
		Start:       0.30,
		Stop:        1.00,
		Max:         0.80,
		BorderStart: 0.40,
		BorderStop:  0.80,
		BorderMax:   0.20,
		Ambient:     0.60,
	}
}

// SetStart sets the lower strength threshold, lowering Stop if needed so Start <= Stop.
func (p *Param) SetStart(v float32) {
	p.Start = v
	if p.Stop < v {
		p.Stop = v
	}
}

// SetStop sets the upper strength threshold, raising Start if needed so Start <= Stop.
func (p *Param) SetStop(v float32) {
	p.Stop = v
	if p.Start > v {
		p.Start = v
	}
}

// SetBorderStart sets the lower rim threshold, keeping BorderStart <= BorderStop.
func (p *Param) SetBorderStart(v float32) {
	p.BorderStart = v
	if p.BorderStop < v {
		p.BorderStop = v
	}
}

// SetBorderStop sets the upper rim threshold, keeping BorderStart <= BorderStop.
func (p *Param) SetBorderStop(v float32) {
	p.BorderStop = v
	if p.BorderStart > v {
		p.BorderStart = v
	}
}

// Normalized returns a copy with both threshold pairs ordered.
func (p Param) Normalized() Param {
	if p.Start > p.Stop {
		p.Start, p.Stop = p.Stop, p.Start
	}
	if p.BorderStart > p.BorderStop {
		p.BorderStart, p.BorderStop = p.BorderStop, p.BorderStart
	}
	return p
}
