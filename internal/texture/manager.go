package texture

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"zurie/internal/gpu"
	"zurie/internal/logging"
)

var (
	// ErrDuplicateTexture is returned by Create when the name is taken.
	ErrDuplicateTexture = errors.New("texture: name already registered")

	// ErrUnknownHandle is returned for handles not issued by the manager.
	ErrUnknownHandle = errors.New("texture: unknown handle")

	// ErrInvalidScale is returned by Create for a scale that is not a
	// positive finite number.
	ErrInvalidScale = errors.New("texture: invalid resolution scale")
)

// Handle identifies a registered texture. It stays valid across resizes,
// so passes can hold it instead of the texture's GPU objects.
type Handle int

// Manager owns a set of named textures that are resized together. Every
// texture keeps its own resolution scale relative to the manager's size.
type Manager struct {
	device gpu.Device

	sampler        gpu.Sampler
	sampledLayout  gpu.BindGroupLayout
	computeLayouts map[Kind]gpu.BindGroupLayout

	textures []*Texture
	byName   map[string]Handle

	width  uint32
	height uint32

	// recreations counts textures reallocated by Resize.
	recreations int
}

// NewManager creates an empty manager sized width×height along with the
// layouts shared by all of its textures.
func NewManager(device gpu.Device, width, height uint32) (*Manager, error) {
	m := &Manager{
		device:         device,
		computeLayouts: make(map[Kind]gpu.BindGroupLayout),
		byName:         make(map[string]Handle),
		width:          max(width, 1),
		height:         max(height, 1),
	}

	var err error
	m.sampler, err = device.CreateSampler(&gpu.SamplerDescriptor{
		Label:  "texture_manager_sampler",
		Filter: gpu.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler creation failed: %w", err)
	}

	m.sampledLayout, err = device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "sampled_texture_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageFragment | gpu.ShaderStageCompute, Type: gpu.BindingTypeSampledTexture},
			{Binding: 1, Visibility: gpu.ShaderStageFragment | gpu.ShaderStageCompute, Type: gpu.BindingTypeSampler},
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("sampled layout creation failed: %w", err)
	}

	for _, k := range kinds {
		layout, err := device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
			Label: "compute_write_layout_" + k.String(),
			Entries: []gpu.BindGroupLayoutEntry{{
				Binding:       0,
				Visibility:    gpu.ShaderStageCompute,
				Type:          gpu.BindingTypeStorageTexture,
				StorageFormat: k.Format(),
			}},
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("compute layout creation for %s failed: %w", k, err)
		}
		m.computeLayouts[k] = layout
	}

	return m, nil
}

// Size returns the size all textures were last created or resized at.
func (m *Manager) Size() (uint32, uint32) { return m.width, m.height }

// SampledLayout is the single layout shape of every SampledBindGroup.
func (m *Manager) SampledLayout() gpu.BindGroupLayout { return m.sampledLayout }

// ComputeLayout is the layout shape of every ComputeBindGroup of kind k.
func (m *Manager) ComputeLayout(k Kind) gpu.BindGroupLayout { return m.computeLayouts[k] }

// Create allocates a texture of width×height scaled by scale and registers
// it under name. Zero dimensions mean the manager's current size. A size
// different from the manager's resizes every registered texture to it in
// the same step, so all textures keep sharing one base size.
func (m *Manager) Create(name string, width, height uint32, kind Kind, scale float32) (Handle, error) {
	if _, ok := m.byName[name]; ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateTexture, name)
	}
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		return -1, fmt.Errorf("texture %q creation failed: %w: %v", name, ErrInvalidScale, scale)
	}
	if width == 0 || height == 0 {
		width, height = m.width, m.height
	}

	t := &Texture{name: name, kind: kind, scale: scale}
	if err := m.allocate(t, width, height); err != nil {
		return -1, fmt.Errorf("texture %q creation failed: %w", name, err)
	}
	if _, err := m.Resize(width, height); err != nil {
		t.release()
		return -1, fmt.Errorf("texture %q creation failed: %w", name, err)
	}

	h := Handle(len(m.textures))
	m.textures = append(m.textures, t)
	m.byName[name] = h
	logging.Logger().Debug("texture created", "name", name, "kind", kind, "width", t.image.Width(), "height", t.image.Height())
	return h, nil
}

// allocate fills t with a new image and bind groups for the given base
// size. On failure t is left untouched.
func (m *Manager) allocate(t *Texture, width, height uint32) error {
	w, h := BackingSize(width, height, t.scale)
	image, err := m.device.CreateTexture(&gpu.TextureDescriptor{
		Label:  t.name,
		Width:  w,
		Height: h,
		Format: t.kind.Format(),
		Usage:  t.kind.usage(),
	})
	if err != nil {
		return err
	}

	computeGroup, err := m.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   t.name + "_compute_write",
		Layout:  m.computeLayouts[t.kind],
		Entries: []gpu.BindGroupEntry{{Binding: 0, TextureView: image.View()}},
	})
	if err != nil {
		image.Release()
		return err
	}

	sampledGroup, err := m.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  t.name + "_sampled",
		Layout: m.sampledLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, TextureView: image.View()},
			{Binding: 1, Sampler: m.sampler},
		},
	})
	if err != nil {
		computeGroup.Release()
		image.Release()
		return err
	}

	t.image, t.computeGroup, t.sampledGroup = image, computeGroup, sampledGroup
	return nil
}

// Lookup returns the handle registered under name.
func (m *Manager) Lookup(name string) (Handle, bool) {
	h, ok := m.byName[name]
	return h, ok
}

// Get returns the texture registered under name. A missing name is not an
// error: callers skip whatever they meant to do with it.
func (m *Manager) Get(name string) (*Texture, bool) {
	h, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.textures[h], true
}

// Texture resolves a handle.
func (m *Manager) Texture(h Handle) (*Texture, error) {
	if h < 0 || int(h) >= len(m.textures) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return m.textures[h], nil
}

// Names returns the registered names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered textures.
func (m *Manager) Len() int { return len(m.textures) }

// Recreations returns how many textures Resize has reallocated so far.
func (m *Manager) Recreations() int { return m.recreations }

// Resize reallocates every texture for the new base size. It reports false
// and does nothing when either dimension is zero or the size is unchanged.
// All replacements are allocated before any old resource is released; if
// one fails, the new ones are dropped and the previous state is kept.
func (m *Manager) Resize(width, height uint32) (bool, error) {
	if width == 0 || height == 0 {
		return false, nil
	}
	if width == m.width && height == m.height {
		return false, nil
	}

	fresh := make([]*Texture, len(m.textures))
	for i, old := range m.textures {
		t := &Texture{name: old.name, kind: old.kind, scale: old.scale}
		if err := m.allocate(t, width, height); err != nil {
			for _, done := range fresh[:i] {
				done.release()
			}
			return false, fmt.Errorf("texture %q resize to %dx%d failed: %w", old.name, width, height, err)
		}
		fresh[i] = t
	}

	for i, old := range m.textures {
		old.release()
		// Swap contents so *Texture pointers held by callers stay current.
		*old = *fresh[i]
	}
	m.width, m.height = width, height
	m.recreations += len(m.textures)
	logging.Logger().Debug("textures resized", "width", width, "height", height, "count", len(m.textures))
	return true, nil
}

// Release frees every texture and the shared layouts and sampler.
func (m *Manager) Release() {
	for _, t := range m.textures {
		t.release()
	}
	m.textures = nil
	m.byName = make(map[string]Handle)
	for k, layout := range m.computeLayouts {
		layout.Release()
		delete(m.computeLayouts, k)
	}
	if m.sampledLayout != nil {
		m.sampledLayout.Release()
		m.sampledLayout = nil
	}
	if m.sampler != nil {
		m.sampler.Release()
		m.sampler = nil
	}
}
