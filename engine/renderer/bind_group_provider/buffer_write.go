package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a binding of a BindGroupProvider at a
// byte offset. Writes are staged during a frame and flushed before the render pass is submitted.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
