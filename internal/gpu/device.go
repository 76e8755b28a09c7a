package gpu

// Releaser frees the GPU object behind a handle. Release must be called
// exactly once, by the owner.
type Releaser interface {
	Release()
}

// Texture is a 2-D texture together with its default full-size view.
type Texture interface {
	Releaser
	View() TextureView
	Width() uint32
	Height() uint32
	Format() TextureFormat
}

// TextureView is a view of a texture that can be bound or rendered to.
type TextureView interface {
	Releaser
}

// Sampler is a texture sampler.
type Sampler interface {
	Releaser
}

// Buffer is a GPU buffer.
type Buffer interface {
	Releaser
	Size() uint64
}

// BindGroupLayout is the declared shape of a bind group.
type BindGroupLayout interface {
	Releaser
}

// BindGroup is a set of resources validated against a BindGroupLayout.
type BindGroup interface {
	Releaser
}

// ComputePipeline is a compiled compute program with its layout.
type ComputePipeline interface {
	Releaser
}

// RenderPipeline is a compiled vertex+fragment program with its layout.
type RenderPipeline interface {
	Releaser
}

// Device creates GPU resources and uploads data through the device queue.
// Creation failures are returned as errors; the render core treats them as
// unrecoverable.
type Device interface {
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateBufferInit(desc *BufferDescriptor, contents []byte) (Buffer, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipeline, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	// WriteBuffer schedules a write of data into buf at offset. The write is
	// ordered before any command buffer submitted afterwards.
	WriteBuffer(buf Buffer, offset uint64, data []byte)
}

// CommandEncoder records the passes of one frame into a single command
// stream. Passes execute in the order they were begun.
type CommandEncoder interface {
	BeginComputePass(label string) ComputePass
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass
}

// ComputePass records compute dispatches. End must be called before the
// next pass is begun.
type ComputePass interface {
	SetPipeline(p ComputePipeline)
	SetBindGroup(index uint32, group BindGroup)
	DispatchWorkgroups(x, y, z uint32)
	End()
}

// RenderPass records draw calls. End must be called before the next pass
// is begun.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End()
}
