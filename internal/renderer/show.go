package renderer

import (
	"fmt"

	"zurie/internal/gpu"
)

// ShowPass copies a sampled texture onto the presentable surface by drawing
// the shared quad. It overwrites the target; nothing is blended.
type ShowPass struct {
	pipeline gpu.RenderPipeline
	clear    gpu.Color
}

// NewShowPass builds the blit pipeline for the given surface format. The
// sampled layout is the texture manager's shared sampled layout.
func NewShowPass(device gpu.Device, surfaceFormat gpu.TextureFormat, sampledLayout gpu.BindGroupLayout, quad *QuadPass, clear gpu.Color) (*ShowPass, error) {
	pipeline, err := device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:              "show_pipeline",
		Shader:             gpu.ShaderSource{Label: "show_shader", WGSL: ShowShader},
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		BindGroupLayouts:   []gpu.BindGroupLayout{sampledLayout},
		VertexBuffers:      []gpu.VertexBufferLayout{quad.Layout()},
		TargetFormat:       surfaceFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("show pipeline creation failed: %w", err)
	}
	return &ShowPass{pipeline: pipeline, clear: clear}, nil
}

// Render draws source over the whole of target in one draw call.
func (s *ShowPass) Render(encoder gpu.CommandEncoder, source gpu.BindGroup, target gpu.TextureView, quad *QuadPass) {
	clear := s.clear
	pass := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:  "show_pass",
		Target: target,
		Clear:  &clear,
	})
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, source)
	quad.Bind(pass)
	pass.Draw(quad.VertexCount(), 1, 0, 0)
	pass.End()
}

// Release frees the pipeline.
func (s *ShowPass) Release() {
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
}
