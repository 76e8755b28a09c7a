package webgpu

import (
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"zurie/internal/gpu"
)

// Encoder records one frame's passes into a WebGPU command encoder.
type Encoder struct {
	device  *Device
	encoder *wgpu.CommandEncoder
}

// NewEncoder starts a command stream on d.
func (d *Device) NewEncoder(label string) (*Encoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &Encoder{device: d, encoder: enc}, nil
}

func (e *Encoder) BeginComputePass(label string) gpu.ComputePass {
	return &computePass{e.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})}
}

func (e *Encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	attachment := wgpu.RenderPassColorAttachment{
		View:    unwrapView(desc.Target),
		LoadOp:  wgpu.LoadOp_Load,
		StoreOp: wgpu.StoreOp_Store,
	}
	if desc.Clear != nil {
		attachment.LoadOp = wgpu.LoadOp_Clear
		attachment.ClearValue = wgpu.Color{R: desc.Clear.R, G: desc.Clear.G, B: desc.Clear.B, A: desc.Clear.A}
	}
	return &renderPass{e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})}
}

// Submit finishes the command stream and submits it to the queue. The
// encoder cannot be used afterwards.
func (e *Encoder) Submit() error {
	defer e.encoder.Release()
	cmd, err := e.encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return err
	}
	defer cmd.Release()
	e.device.queue.Submit(cmd)
	return nil
}

// Release drops the command stream without submitting it.
func (e *Encoder) Release() { e.encoder.Release() }

type computePass struct{ p *wgpu.ComputePassEncoder }

func (c *computePass) SetPipeline(p gpu.ComputePipeline) {
	c.p.SetPipeline(p.(*computePipeline).p)
}

func (c *computePass) SetBindGroup(index uint32, g gpu.BindGroup) {
	c.p.SetBindGroup(index, g.(*bindGroup).g, nil)
}

func (c *computePass) DispatchWorkgroups(x, y, z uint32) { c.p.DispatchWorkgroups(x, y, z) }
func (c *computePass) End()                              { c.p.End() }

type renderPass struct{ p *wgpu.RenderPassEncoder }

func (r *renderPass) SetPipeline(p gpu.RenderPipeline) {
	r.p.SetPipeline(p.(*renderPipeline).p)
}

func (r *renderPass) SetBindGroup(index uint32, g gpu.BindGroup) {
	r.p.SetBindGroup(index, g.(*bindGroup).g, nil)
}

func (r *renderPass) SetVertexBuffer(slot uint32, b gpu.Buffer) {
	r.p.SetVertexBuffer(slot, b.(*buffer).b, 0, wgpu.WholeSize)
}

func (r *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.p.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (r *renderPass) End() { r.p.End() }
