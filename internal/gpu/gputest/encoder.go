package gputest

import (
	"fmt"

	"zurie/internal/gpu"
)

// PassKind distinguishes recorded compute and render passes.
type PassKind int

const (
	ComputePassKind PassKind = iota
	RenderPassKind
)

// Pass is everything recorded between Begin*Pass and End.
type Pass struct {
	Kind  PassKind
	Label string

	// Render pass attachment.
	Target gpu.TextureView
	Clear  *gpu.Color

	ComputePipeline gpu.ComputePipeline
	RenderPipeline  gpu.RenderPipeline
	BindGroups      map[uint32]gpu.BindGroup
	VertexBuffers   map[uint32]gpu.Buffer

	Dispatches [][3]uint32
	Draws      []Draw
	Ended      bool
}

// Draw records one Draw call.
type Draw struct {
	VertexCount   uint32
	InstanceCount uint32
}

// Encoder is a recording gpu.CommandEncoder.
type Encoder struct {
	Passes []*Pass
}

// NewEncoder returns an empty recording encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) begin(p *Pass) {
	if n := len(e.Passes); n > 0 && !e.Passes[n-1].Ended {
		panic(fmt.Sprintf("gputest: pass %q begun while %q is still open", p.Label, e.Passes[n-1].Label))
	}
	p.BindGroups = make(map[uint32]gpu.BindGroup)
	p.VertexBuffers = make(map[uint32]gpu.Buffer)
	e.Passes = append(e.Passes, p)
}

func (e *Encoder) BeginComputePass(label string) gpu.ComputePass {
	p := &Pass{Kind: ComputePassKind, Label: label}
	e.begin(p)
	return &computePass{p}
}

func (e *Encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	p := &Pass{Kind: RenderPassKind, Label: desc.Label, Target: desc.Target, Clear: desc.Clear}
	e.begin(p)
	return &renderPass{p}
}

// Count returns the number of recorded passes of kind.
func (e *Encoder) Count(kind PassKind) int {
	n := 0
	for _, p := range e.Passes {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func checkLive(kind string, h any) {
	var r *Resource
	switch v := h.(type) {
	case *Resource:
		r = v
	case *BindGroup:
		r = &v.Resource
	case *Buffer:
		r = &v.Resource
	case *ComputePipeline:
		r = &v.Resource
	case *RenderPipeline:
		r = &v.Resource
	}
	if r != nil && r.Released {
		panic(fmt.Sprintf("gputest: %s %q used after release", kind, r.Label))
	}
}

type computePass struct{ *Pass }

func (p *computePass) SetPipeline(pl gpu.ComputePipeline) {
	checkLive("compute pipeline", pl)
	p.ComputePipeline = pl
}

func (p *computePass) SetBindGroup(index uint32, g gpu.BindGroup) {
	checkLive("bind group", g)
	p.BindGroups[index] = g
}

func (p *computePass) DispatchWorkgroups(x, y, z uint32) {
	if p.ComputePipeline == nil {
		panic("gputest: dispatch without a compute pipeline")
	}
	p.Dispatches = append(p.Dispatches, [3]uint32{x, y, z})
}

func (p *computePass) End() { p.Ended = true }

type renderPass struct{ *Pass }

func (p *renderPass) SetPipeline(pl gpu.RenderPipeline) {
	checkLive("render pipeline", pl)
	p.RenderPipeline = pl
}

func (p *renderPass) SetBindGroup(index uint32, g gpu.BindGroup) {
	checkLive("bind group", g)
	p.BindGroups[index] = g
}

func (p *renderPass) SetVertexBuffer(slot uint32, b gpu.Buffer) {
	checkLive("vertex buffer", b)
	p.VertexBuffers[slot] = b
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.RenderPipeline == nil {
		panic("gputest: draw without a render pipeline")
	}
	p.Draws = append(p.Draws, Draw{VertexCount: vertexCount, InstanceCount: instanceCount})
}

func (p *renderPass) End() { p.Ended = true }

// NewView returns a standalone view standing in for a presentable surface
// image. It is not tracked by any Device.
func NewView(label string) *TextureView {
	return &TextureView{Resource: Resource{Kind: "view", Label: label, dev: &Device{live: map[string]int{}}}}
}
