package light

import (
	"errors"
	"fmt"
)

// ErrTableFull is returned when a light category has reached its fixed capacity.
var ErrTableFull = errors.New("light table full")

// Table is the fixed-capacity light record: three bounded arrays plus authoritative live counts.
// Entries at or beyond a category's count are ignored by every reader regardless of content.
type Table struct {
	header      GPULightHeader
	point       [MaxPointLights]GPUPointLight
	directional [MaxDirectionalLights]GPUDirectionalLight
	parallel    [MaxParallelLights]GPUParallelLight
}

// NewTable creates an empty table using the given shading constants.
//
// Parameters:
//   - param: toon constants shared by every light
//
// Returns:
//   - *Table: the empty table
func NewTable(param Param) *Table {
	t := &Table{}
	t.header.Param = param
	return t
}

// Param returns the shading constants.
func (t *Table) Param() Param {
	return t.header.Param
}

// SetParam replaces the shading constants.
func (t *Table) SetParam(p Param) {
	t.header.Param = p
}

// Outline returns the outline extrusion size and darkening factor carried in the header.
func (t *Table) Outline() (size, darken float32) {
	return t.header.OutlineSize, t.header.OutlineDarken
}

// SetOutline stores the outline constants read by the outline entry points.
func (t *Table) SetOutline(size, darken float32) {
	t.header.OutlineSize = size
	t.header.OutlineDarken = darken
}

// Counts returns the live point, directional and parallel counts.
func (t *Table) Counts() (point, directional, parallel int) {
	return int(t.header.PointCount), int(t.header.DirectionalCount), int(t.header.ParallelCount)
}

// Reset sets every live count to zero. Slot contents are left as they are.
func (t *Table) Reset() {
	t.header.PointCount = 0
	t.header.DirectionalCount = 0
	t.header.ParallelCount = 0
}

// Add packs a light into the next free slot of its category. Disabled lights are skipped.
//
// Parameters:
//   - l: the light to add
//
// Returns:
//   - error: ErrTableFull when the category is at capacity
func (t *Table) Add(l Light) error {
	if !l.Enabled() {
		return nil
	}
	att := l.Attenuation()
	switch l.Type() {
	case LightTypePoint:
		if t.header.PointCount >= MaxPointLights {
			return fmt.Errorf("point lights (max %d): %w", MaxPointLights, ErrTableFull)
		}
		t.point[t.header.PointCount] = GPUPointLight{
			Position:  l.Position(),
			Color:     l.Color(),
			Constant:  att[0],
			Linear:    att[1],
			Quadratic: att[2],
		}
		t.header.PointCount++
	case LightTypeDirectional:
		if t.header.DirectionalCount >= MaxDirectionalLights {
			return fmt.Errorf("directional lights (max %d): %w", MaxDirectionalLights, ErrTableFull)
		}
		inner, outer := l.AngularRange()
		t.directional[t.header.DirectionalCount] = GPUDirectionalLight{
			Position:   l.Position(),
			Constant:   att[0],
			Direction:  l.Direction(),
			Linear:     att[1],
			Color:      l.Color(),
			Quadratic:  att[2],
			RangeInner: inner,
			RangeOuter: outer,
		}
		t.header.DirectionalCount++
	case LightTypeParallel:
		if t.header.ParallelCount >= MaxParallelLights {
			return fmt.Errorf("parallel lights (max %d): %w", MaxParallelLights, ErrTableFull)
		}
		t.parallel[t.header.ParallelCount] = GPUParallelLight{
			Direction: l.Direction(),
			Color:     l.Color(),
			Strength:  l.Strength(),
		}
		t.header.ParallelCount++
	default:
		return fmt.Errorf("unknown light type %d", l.Type())
	}
	return nil
}

// Set resets the table and adds every light in order. Lights that do not fit are dropped and
// counted; the first capacity error is returned alongside the count.
//
// Parameters:
//   - lights: the lights to pack
//
// Returns:
//   - int: the number of lights dropped
//   - error: the first error encountered, or nil
func (t *Table) Set(lights []Light) (int, error) {
	t.Reset()
	dropped := 0
	var first error
	for _, l := range lights {
		if err := t.Add(l); err != nil {
			dropped++
			if first == nil {
				first = err
			}
		}
	}
	return dropped, first
}

// Marshal serializes the full table record, GPULightTableSize bytes, in the layout declared by
// GPULightSource. Every slot is written so the record always replaces the GPU copy wholesale.
//
// Returns:
//   - []byte: the serialized record
func (t *Table) Marshal() []byte {
	buf := make([]byte, GPULightTableSize)
	t.header.MarshalTo(buf[0:headerSize])
	for i := range t.point {
		off := pointOffset + i*pointSize
		t.point[i].MarshalTo(buf[off : off+pointSize])
	}
	for i := range t.directional {
		off := directionalOffset + i*directionalSize
		t.directional[i].MarshalTo(buf[off : off+directionalSize])
	}
	for i := range t.parallel {
		off := parallelOffset + i*parallelSize
		t.parallel[i].MarshalTo(buf[off : off+parallelSize])
	}
	return buf
}
