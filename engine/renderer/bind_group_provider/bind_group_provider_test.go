package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera", WithGroup(0))
	assert.Equal(t, "camera", p.Label())
	assert.Equal(t, 0, p.Group())
	assert.False(t, p.Ready())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))

	p = NewBindGroupProvider("joints", WithGroup(3))
	assert.Equal(t, 3, p.Group())
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetIndexCount(36)
	assert.NotPanics(t, p.Release)
	assert.Equal(t, 0, p.IndexCount())
}

func TestWriteBatch(t *testing.T) {
	var b WriteBatch
	camera := NewBindGroupProvider("camera")
	lights := NewBindGroupProvider("lights", WithGroup(1))

	b.Add(camera, 0, []byte{1, 2})
	b.Add(lights, 0, []byte{3})
	assert.Equal(t, 2, b.Len())

	writes := b.Writes()
	assert.Same(t, camera, writes[0].Provider)
	assert.Equal(t, []byte{1, 2}, writes[0].Data)
	assert.Equal(t, uint64(0), writes[1].Offset)
	assert.Equal(t, 1, writes[1].Provider.Group())

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Writes())
}
