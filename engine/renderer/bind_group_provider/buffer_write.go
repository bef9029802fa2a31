package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBatch collects the buffer writes of one frame so they reach the queue in a single call.
// The zero value is ready to use.
type WriteBatch struct {
	writes []BufferWrite
}

// Add stages a full-record write at offset 0. Writes to a provider that has no buffer at the
// binding are kept and later skipped by the Renderer.
//
// Parameters:
//   - provider: the provider owning the target buffer
//   - binding: the binding index of the buffer
//   - data: the record bytes; the slice is retained until Reset
func (b *WriteBatch) Add(provider BindGroupProvider, binding int, data []byte) {
	b.writes = append(b.writes, BufferWrite{Provider: provider, Binding: binding, Data: data})
}

// Writes returns the staged writes in the order they were added.
func (b *WriteBatch) Writes() []BufferWrite {
	return b.writes
}

// Len returns the number of staged writes.
func (b *WriteBatch) Len() int {
	return len(b.writes)
}

// Reset drops every staged write and keeps the backing array.
func (b *WriteBatch) Reset() {
	clear(b.writes)
	b.writes = b.writes[:0]
}
