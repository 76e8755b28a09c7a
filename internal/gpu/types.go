// Package gpu describes the GPU resources the render core works with,
// independently of the WebGPU binding that backs them.
//
// Every handle is exclusively owned by the component that created it and
// must be released by that component. Descriptors mirror the subset of
// WebGPU the core needs: 2-D textures, samplers, uniform/storage/vertex
// buffers, bind groups, and compute/render pipelines built from opaque WGSL
// programs.
package gpu

import "fmt"

// TextureFormat specifies the texel format of a texture.
type TextureFormat uint32

// Texture formats.
const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatBGRA8Unorm
	TextureFormatRGBA16Float
	TextureFormatRGBA32Float
)

// String returns the WGSL storage-format spelling of f.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatRGBA32Float:
		return "rgba32float"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint32(f))
	}
}

// TextureUsage is a bitmask of the ways a texture may be used.
type TextureUsage uint32

// Texture usage flags.
const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// BufferUsage is a bitmask of the ways a buffer may be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	BufferUsageCopyDst BufferUsage = 1 << iota
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
)

// ShaderStage is a bitmask of the shader stages a binding is visible to.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
	ShaderStageCompute
)

// BindingType is the kind of resource bound at a layout slot.
type BindingType uint32

// Binding types.
const (
	BindingTypeUniformBuffer BindingType = iota + 1
	BindingTypeReadOnlyStorageBuffer
	BindingTypeSampler
	BindingTypeSampledTexture
	BindingTypeStorageTexture
)

// FilterMode selects texel filtering for a sampler.
type FilterMode uint32

// Filter modes.
const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// VertexFormat is the layout of a single vertex attribute.
type VertexFormat uint32

// Vertex formats.
const (
	VertexFormatFloat32x2 VertexFormat = iota + 1
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// TextureDescriptor describes a 2-D, single-mip texture.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
}

// SamplerDescriptor describes a clamp-to-edge sampler.
type SamplerDescriptor struct {
	Label  string
	Filter FilterMode
}

// BufferDescriptor describes a buffer.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// BindGroupLayoutEntry describes one slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType

	// StorageFormat is the texel format of a BindingTypeStorageTexture slot.
	StorageFormat TextureFormat
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds one resource to a layout slot. Exactly one of
// Buffer, Sampler and TextureView is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Size        uint64
	Sampler     Sampler
	TextureView TextureView
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ShaderSource is an opaque WGSL program.
type ShaderSource struct {
	Label string
	WGSL  string
}

// ComputePipelineDescriptor describes a compute pipeline. Bind group
// layouts are listed in group order.
type ComputePipelineDescriptor struct {
	Label            string
	Shader           ShaderSource
	EntryPoint       string
	BindGroupLayouts []BindGroupLayout
}

// VertexAttribute describes one attribute of a vertex buffer.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the per-vertex stride and attributes of a
// vertex buffer.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

// RenderPipelineDescriptor describes a triangle-list render pipeline with a
// single color target and no blending.
type RenderPipelineDescriptor struct {
	Label              string
	Shader             ShaderSource
	VertexEntryPoint   string
	FragmentEntryPoint string
	BindGroupLayouts   []BindGroupLayout
	VertexBuffers      []VertexBufferLayout
	TargetFormat       TextureFormat
}

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// RenderPassDescriptor describes a render pass with one color attachment.
// A nil Clear loads the existing contents of Target.
type RenderPassDescriptor struct {
	Label  string
	Target TextureView
	Clear  *Color
}
