// Package texture owns the named render targets of the render core and the
// bind groups through which passes write and sample them.
package texture

import (
	"fmt"
	"math"

	"zurie/internal/gpu"
)

// Kind selects the format and usage class of a texture.
type Kind int

const (
	// Standard textures are compute-writable RGBA16Float targets.
	Standard Kind = iota
	// SceneTexture textures are full-precision RGBA32Float targets that can
	// also be rendered to.
	SceneTexture
)

var kinds = []Kind{Standard, SceneTexture}

func (k Kind) String() string {
	switch k {
	case Standard:
		return "Standard"
	case SceneTexture:
		return "SceneTexture"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Format returns the texel format backing textures of kind k.
func (k Kind) Format() gpu.TextureFormat {
	switch k {
	case SceneTexture:
		return gpu.TextureFormatRGBA32Float
	default:
		return gpu.TextureFormatRGBA16Float
	}
}

func (k Kind) usage() gpu.TextureUsage {
	u := gpu.TextureUsageStorageBinding | gpu.TextureUsageTextureBinding | gpu.TextureUsageCopySrc
	if k == SceneTexture {
		u |= gpu.TextureUsageRenderAttachment
	}
	return u
}

// BackingSize returns the texel size of a texture registered at
// width×height with the given resolution scale: each dimension is rounded
// and never smaller than 1.
func BackingSize(width, height uint32, scale float32) (uint32, uint32) {
	return scaled(width, scale), scaled(height, scale)
}

func scaled(dim uint32, scale float32) uint32 {
	v := math.Round(float64(dim) * float64(scale))
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Texture is a registered render target: the backing image plus the two
// bind groups used to write it from compute and to sample it. All three are
// replaced together on resize.
type Texture struct {
	name  string
	kind  Kind
	scale float32

	image        gpu.Texture
	computeGroup gpu.BindGroup
	sampledGroup gpu.BindGroup
}

func (t *Texture) Name() string   { return t.name }
func (t *Texture) Kind() Kind     { return t.kind }
func (t *Texture) Scale() float32 { return t.scale }

// Size returns the backing size in texels.
func (t *Texture) Size() (uint32, uint32) {
	return t.image.Width(), t.image.Height()
}

// View returns the view of the current backing image.
func (t *Texture) View() gpu.TextureView { return t.image.View() }

// ComputeBindGroup binds the texture as a write-only storage image at
// binding 0; it matches Manager.ComputeLayout(t.Kind()).
func (t *Texture) ComputeBindGroup() gpu.BindGroup { return t.computeGroup }

// SampledBindGroup binds the texture and the shared sampler at bindings 0
// and 1; it matches Manager.SampledLayout().
func (t *Texture) SampledBindGroup() gpu.BindGroup { return t.sampledGroup }

func (t *Texture) release() {
	t.sampledGroup.Release()
	t.computeGroup.Release()
	t.image.Release()
}
