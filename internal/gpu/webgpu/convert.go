package webgpu

import (
	"fmt"

	"github.com/rajveermalviya/go-webgpu/wgpu"

	"zurie/internal/gpu"
)

// FormatFromWGPU maps a surface format onto the formats the core knows.
// Formats outside that set are reported as an error.
func FormatFromWGPU(f wgpu.TextureFormat) (gpu.TextureFormat, error) {
	switch f {
	case wgpu.TextureFormat_RGBA8Unorm:
		return gpu.TextureFormatRGBA8Unorm, nil
	case wgpu.TextureFormat_BGRA8Unorm:
		return gpu.TextureFormatBGRA8Unorm, nil
	case wgpu.TextureFormat_RGBA16Float:
		return gpu.TextureFormatRGBA16Float, nil
	case wgpu.TextureFormat_RGBA32Float:
		return gpu.TextureFormatRGBA32Float, nil
	default:
		return gpu.TextureFormatUndefined, fmt.Errorf("unsupported surface format %v", f)
	}
}

func textureFormat(f gpu.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gpu.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormat_RGBA8Unorm
	case gpu.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormat_BGRA8Unorm
	case gpu.TextureFormatRGBA16Float:
		return wgpu.TextureFormat_RGBA16Float
	case gpu.TextureFormatRGBA32Float:
		return wgpu.TextureFormat_RGBA32Float
	default:
		return wgpu.TextureFormat_Undefined
	}
}

func textureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpu.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsage_CopySrc
	}
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsage_CopyDst
	}
	if u&gpu.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsage_TextureBinding
	}
	if u&gpu.TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsage_StorageBinding
	}
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsage_RenderAttachment
	}
	return out
}

func bufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsage_CopyDst
	}
	if u&gpu.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsage_Vertex
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsage_Uniform
	}
	if u&gpu.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsage_Storage
	}
	return out
}

func shaderStage(s gpu.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gpu.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStage_Vertex
	}
	if s&gpu.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStage_Fragment
	}
	if s&gpu.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStage_Compute
	}
	return out
}

func filterMode(f gpu.FilterMode) wgpu.FilterMode {
	if f == gpu.FilterModeLinear {
		return wgpu.FilterMode_Linear
	}
	return wgpu.FilterMode_Nearest
}

func vertexFormat(f gpu.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gpu.VertexFormatFloat32x3:
		return wgpu.VertexFormat_Float32x3
	case gpu.VertexFormatFloat32x4:
		return wgpu.VertexFormat_Float32x4
	default:
		return wgpu.VertexFormat_Float32x2
	}
}

func layoutEntry(e gpu.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	out := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: shaderStage(e.Visibility),
	}
	switch e.Type {
	case gpu.BindingTypeUniformBuffer:
		out.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform}
	case gpu.BindingTypeReadOnlyStorageBuffer:
		out.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_ReadOnlyStorage}
	case gpu.BindingTypeSampler:
		out.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_NonFiltering}
	case gpu.BindingTypeSampledTexture:
		// Float32 targets are not filterable without an optional feature.
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleType_UnfilterableFloat,
			ViewDimension: wgpu.TextureViewDimension_2D,
		}
	case gpu.BindingTypeStorageTexture:
		out.StorageTexture = wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccess_WriteOnly,
			Format:        textureFormat(e.StorageFormat),
			ViewDimension: wgpu.TextureViewDimension_2D,
		}
	}
	return out
}
