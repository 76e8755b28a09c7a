// Package webgpu implements the gpu resource model on top of
// github.com/rajveermalviya/go-webgpu.
package webgpu

import (
	"fmt"

	"github.com/rajveermalviya/go-webgpu/wgpu"

	"zurie/internal/gpu"
)

type texture struct {
	tex    *wgpu.Texture
	view   *view
	width  uint32
	height uint32
	format gpu.TextureFormat
}

func (t *texture) View() gpu.TextureView     { return t.view }
func (t *texture) Width() uint32             { return t.width }
func (t *texture) Height() uint32            { return t.height }
func (t *texture) Format() gpu.TextureFormat { return t.format }

func (t *texture) Release() {
	t.view.Release()
	t.tex.Release()
}

type view struct{ v *wgpu.TextureView }

func (v *view) Release() { v.v.Release() }

// WrapView adapts a swap chain view so it can be used as a render target.
// The caller keeps ownership and releases the underlying view itself.
func WrapView(v *wgpu.TextureView) gpu.TextureView { return &borrowedView{view{v}} }

type borrowedView struct{ view }

func (*borrowedView) Release() {}

type sampler struct{ s *wgpu.Sampler }

func (s *sampler) Release() { s.s.Release() }

type buffer struct {
	b    *wgpu.Buffer
	size uint64
}

func (b *buffer) Size() uint64 { return b.size }
func (b *buffer) Release()     { b.b.Release() }

type bindGroupLayout struct{ l *wgpu.BindGroupLayout }

func (l *bindGroupLayout) Release() { l.l.Release() }

type bindGroup struct{ g *wgpu.BindGroup }

func (g *bindGroup) Release() { g.g.Release() }

type computePipeline struct{ p *wgpu.ComputePipeline }

func (p *computePipeline) Release() { p.p.Release() }

type renderPipeline struct{ p *wgpu.RenderPipeline }

func (p *renderPipeline) Release() { p.p.Release() }

// Device is a gpu.Device backed by a WebGPU device and its queue.
type Device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

// NewDevice wraps device and queue. Ownership stays with the caller.
func NewDevice(device *wgpu.Device, queue *wgpu.Queue) *Device {
	return &Device{device: device, queue: queue}
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	format := textureFormat(desc.Format)
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        format,
		Usage:         textureUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}

	v, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label + "_view",
		Format:          format,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		tex.Release()
		return nil, err
	}

	return &texture{
		tex:    tex,
		view:   &view{v},
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
	}, nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	filter := filterMode(desc.Filter)
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:          desc.Label,
		AddressModeU:   wgpu.AddressMode_ClampToEdge,
		AddressModeV:   wgpu.AddressMode_ClampToEdge,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      filter,
		MinFilter:      filter,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return nil, err
	}
	return &sampler{s}, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &buffer{b: b, size: desc.Size}, nil
}

func (d *Device) CreateBufferInit(desc *gpu.BufferDescriptor, contents []byte) (gpu.Buffer, error) {
	b, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    desc.Label,
		Contents: contents,
		Usage:    bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &buffer{b: b, size: uint64(len(contents))}, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = layoutEntry(e)
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroupLayout{l}, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: layout %T is not a webgpu layout", desc.Label, desc.Layout)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = e.Buffer.(*buffer).b
			entry.Size = e.Size
		case e.Sampler != nil:
			entry.Sampler = e.Sampler.(*sampler).s
		case e.TextureView != nil:
			entry.TextureView = unwrapView(e.TextureView)
		}
		entries[i] = entry
	}
	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.l,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroup{g}, nil
}

func (d *Device) pipelineLayout(label string, layouts []gpu.BindGroupLayout) (*wgpu.PipelineLayout, error) {
	raw := make([]*wgpu.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		raw[i] = l.(*bindGroupLayout).l
	}
	return d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: raw,
	})
}

func (d *Device) shaderModule(src gpu.ShaderSource) (*wgpu.ShaderModule, error) {
	return d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          src.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src.WGSL},
	})
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipeline, error) {
	shader, err := d.shaderModule(desc.Shader)
	if err != nil {
		return nil, fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	layout, err := d.pipelineLayout(desc.Label, desc.BindGroupLayouts)
	if err != nil {
		return nil, fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer layout.Release()

	p, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		return nil, err
	}
	return &computePipeline{p}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	shader, err := d.shaderModule(desc.Shader)
	if err != nil {
		return nil, fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	layout, err := d.pipelineLayout(desc.Label, desc.BindGroupLayouts)
	if err != nil {
		return nil, fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer layout.Release()

	buffers := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, vb := range desc.VertexBuffers {
		attrs := make([]wgpu.VertexAttribute, len(vb.Attributes))
		for j, a := range vb.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         vertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: vb.ArrayStride,
			StepMode:    wgpu.VertexStepMode_Vertex,
			Attributes:  attrs,
		}
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    textureFormat(desc.TargetFormat),
				Blend:     &wgpu.BlendState_Replace,
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopology_TriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	return &renderPipeline{p}, nil
}

func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) {
	d.queue.WriteBuffer(buf.(*buffer).b, offset, data)
}

func unwrapView(v gpu.TextureView) *wgpu.TextureView {
	switch v := v.(type) {
	case *view:
		return v.v
	case *borrowedView:
		return v.v
	default:
		panic(fmt.Sprintf("webgpu: texture view %T is not a webgpu view", v))
	}
}
