package renderer

import (
	"fmt"
	"slices"

	"zurie/internal/gpu"
	"zurie/internal/logging"
	"zurie/internal/texture"
)

// Names of the textures every manager registers.
const (
	SceneTexture       = "SceneTexture"
	RaymarchingTexture = "Raymarching"
)

// TextureStats describes one registered texture.
type TextureStats struct {
	Name          string
	Kind          texture.Kind
	Width, Height uint32
}

// Stats is a diagnostic snapshot of a RenderPassManager.
type Stats struct {
	Width, Height  uint32
	Textures       []TextureStats
	Frames         uint64
	Objects        int
	ObjectCapacity int
	BlitsPerformed uint64
	BlitsSkipped   uint64
}

// RenderPassManager owns the texture manager and every pass, and sequences
// them into one command stream per frame: raymarching compute first, then
// the blit of the selected texture.
type RenderPassManager struct {
	device gpu.Device
	cfg    managerConfig

	textures    *texture.Manager
	quad        *QuadPass
	show        *ShowPass
	raymarching *RaymarchingPass
	rayTarget   texture.Handle

	options RenderOptions
	objects []Object

	width  uint32
	height uint32

	frames         uint64
	blitsPerformed uint64
	blitsSkipped   uint64
}

// New builds a manager drawing to surfaces of surfaceFormat. Zero
// dimensions are clamped to one. Any failing step releases what was built
// and returns the error.
func New(device gpu.Device, surfaceFormat gpu.TextureFormat, width, height uint32, opts ...Option) (*RenderPassManager, error) {
	cfg := newManagerConfig(opts)

	m := &RenderPassManager{
		device:  device,
		cfg:     cfg,
		options: DefaultRenderOptions(),
		width:   max(width, 1),
		height:  max(height, 1),
	}
	if err := m.init(surfaceFormat); err != nil {
		m.Release()
		return nil, err
	}

	logging.Logger().Debug("render pass manager created",
		"width", m.width, "height", m.height, "format", surfaceFormat.String(),
		"object_capacity", cfg.objectCapacity)
	return m, nil
}

func (m *RenderPassManager) init(surfaceFormat gpu.TextureFormat) error {
	var err error
	m.textures, err = texture.NewManager(m.device, m.width, m.height)
	if err != nil {
		return fmt.Errorf("texture manager creation failed: %w", err)
	}
	if _, err = m.textures.Create(SceneTexture, m.width, m.height, texture.SceneTexture, 1.0); err != nil {
		return fmt.Errorf("scene texture creation failed: %w", err)
	}
	m.rayTarget, err = m.textures.Create(RaymarchingTexture, m.width, m.height, texture.Standard, 1.0)
	if err != nil {
		return fmt.Errorf("raymarching texture creation failed: %w", err)
	}

	m.quad, err = NewQuadPass(m.device)
	if err != nil {
		return err
	}

	c := m.cfg.clearColor
	m.show, err = NewShowPass(m.device, surfaceFormat, m.textures.SampledLayout(), m.quad,
		gpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]})
	if err != nil {
		return err
	}

	m.raymarching, err = NewRaymarchingPass(m.device, m.textures, m.rayTarget, m.cfg.objectCapacity)
	if err != nil {
		return err
	}
	return nil
}

// Options returns the live options. Changes are picked up by the next
// Render.
func (m *RenderPassManager) Options() *RenderOptions { return &m.options }

// SetOptions replaces the options wholesale.
func (m *RenderPassManager) SetOptions(o RenderOptions) { m.options = o }

// Objects returns the scene objects rendered each frame.
func (m *RenderPassManager) Objects() []Object { return m.objects }

// SetObjects stores a copy of the scene objects. Capacity is checked at
// render time.
func (m *RenderPassManager) SetObjects(objects []Object) {
	m.objects = slices.Clone(objects)
}

// ObjectCapacity returns how many scene objects the manager can render.
func (m *RenderPassManager) ObjectCapacity() int { return m.cfg.objectCapacity }

// Size returns the last applied dimensions.
func (m *RenderPassManager) Size() (uint32, uint32) { return m.width, m.height }

// Textures exposes the texture manager for diagnostics.
func (m *RenderPassManager) Textures() *texture.Manager { return m.textures }

// Resize reallocates every texture for width×height. Degenerate or
// unchanged sizes are ignored. Pipelines are kept.
func (m *RenderPassManager) Resize(width, height uint32) error {
	if width == 0 || height == 0 || (width == m.width && height == m.height) {
		return nil
	}
	if _, err := m.textures.Resize(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d failed: %w", width, height, err)
	}
	m.width, m.height = width, height
	return nil
}

// Render records the frame into encoder. A Show name that matches no
// texture leaves target untouched and is not an error.
func (m *RenderPassManager) Render(encoder gpu.CommandEncoder, target gpu.TextureView) error {
	if err := m.raymarching.Render(encoder, m.textures, m.width, m.height, m.options.Raymarching, m.objects); err != nil {
		return err
	}
	m.frames++

	tex, ok := m.textures.Get(m.options.Show)
	if !ok {
		m.blitsSkipped++
		logging.Logger().Debug("show texture not registered, skipping blit", "show", m.options.Show)
		return nil
	}
	m.show.Render(encoder, tex.SampledBindGroup(), target, m.quad)
	m.blitsPerformed++
	return nil
}

// Stats returns a diagnostic snapshot.
func (m *RenderPassManager) Stats() Stats {
	s := Stats{
		Width:          m.width,
		Height:         m.height,
		Frames:         m.frames,
		Objects:        len(m.objects),
		ObjectCapacity: m.cfg.objectCapacity,
		BlitsPerformed: m.blitsPerformed,
		BlitsSkipped:   m.blitsSkipped,
	}
	for _, name := range m.textures.Names() {
		tex, _ := m.textures.Get(name)
		w, h := tex.Size()
		s.Textures = append(s.Textures, TextureStats{Name: name, Kind: tex.Kind(), Width: w, Height: h})
	}
	return s
}

// Release frees every pass and texture. The manager must not be used
// afterwards.
func (m *RenderPassManager) Release() {
	if m.raymarching != nil {
		m.raymarching.Release()
		m.raymarching = nil
	}
	if m.show != nil {
		m.show.Release()
		m.show = nil
	}
	if m.quad != nil {
		m.quad.Release()
		m.quad = nil
	}
	if m.textures != nil {
		m.textures.Release()
		m.textures = nil
	}
}
