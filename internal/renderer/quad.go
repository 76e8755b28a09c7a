package renderer

import (
	"fmt"
	"unsafe"

	"zurie/internal/gpu"
)

// Vertex represents a vertex with position and texture coordinates
type Vertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// quadVertices covers clip space with two triangles; texture v grows
// downwards so the image is shown upright.
var quadVertices = []Vertex{
	{Position: [2]float32{-1, -1}, TexCoord: [2]float32{0, 1}},
	{Position: [2]float32{1, -1}, TexCoord: [2]float32{1, 1}},
	{Position: [2]float32{1, 1}, TexCoord: [2]float32{1, 0}},
	{Position: [2]float32{-1, -1}, TexCoord: [2]float32{0, 1}},
	{Position: [2]float32{1, 1}, TexCoord: [2]float32{1, 0}},
	{Position: [2]float32{-1, 1}, TexCoord: [2]float32{0, 0}},
}

// QuadPass provides the full-screen quad shared by passes that sample a
// texture onto a render target.
type QuadPass struct {
	vertexBuffer gpu.Buffer
}

// NewQuadPass uploads the quad geometry.
func NewQuadPass(device gpu.Device) (*QuadPass, error) {
	buf, err := device.CreateBufferInit(&gpu.BufferDescriptor{
		Label: "quad_vertex_buffer",
		Usage: gpu.BufferUsageVertex,
	}, toBytes(quadVertices))
	if err != nil {
		return nil, fmt.Errorf("quad vertex buffer creation failed: %w", err)
	}
	return &QuadPass{vertexBuffer: buf}, nil
}

// Layout describes the quad's vertex buffer to a render pipeline.
func (q *QuadPass) Layout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}
}

// VertexCount is the number of vertices to draw.
func (q *QuadPass) VertexCount() uint32 { return uint32(len(quadVertices)) }

// Bind attaches the quad geometry to slot 0 of pass.
func (q *QuadPass) Bind(pass gpu.RenderPass) {
	pass.SetVertexBuffer(0, q.vertexBuffer)
}

// Release frees the vertex buffer.
func (q *QuadPass) Release() {
	if q.vertexBuffer != nil {
		q.vertexBuffer.Release()
		q.vertexBuffer = nil
	}
}
