// Package gputest provides an in-memory gpu.Device and gpu.CommandEncoder
// that record every resource and command, so render logic can be tested
// without a GPU.
package gputest

import (
	"fmt"

	"zurie/internal/gpu"
)

// Resource is the common bookkeeping of every fake handle.
type Resource struct {
	Kind     string
	Label    string
	ID       int
	Released bool

	dev *Device
}

// Release marks the resource released. Releasing twice panics so double
// frees surface in tests.
func (r *Resource) Release() {
	if r.Released {
		panic(fmt.Sprintf("gputest: %s %q (#%d) released twice", r.Kind, r.Label, r.ID))
	}
	r.Released = true
	r.dev.live[r.Kind]--
}

// Texture is a fake gpu.Texture.
type Texture struct {
	Resource
	Desc gpu.TextureDescriptor
	view *TextureView
}

func (t *Texture) View() gpu.TextureView     { return t.view }
func (t *Texture) Width() uint32             { return t.Desc.Width }
func (t *Texture) Height() uint32            { return t.Desc.Height }
func (t *Texture) Format() gpu.TextureFormat { return t.Desc.Format }

// Release releases the texture and its default view.
func (t *Texture) Release() {
	t.view.Release()
	t.Resource.Release()
}

// TextureView is a fake gpu.TextureView.
type TextureView struct {
	Resource
	Texture *Texture
}

// Buffer is a fake gpu.Buffer that keeps the bytes written to it.
type Buffer struct {
	Resource
	Desc gpu.BufferDescriptor
	Data []byte
}

func (b *Buffer) Size() uint64 { return b.Desc.Size }

// BindGroup is a fake gpu.BindGroup.
type BindGroup struct {
	Resource
	Desc gpu.BindGroupDescriptor
}

// ComputePipeline is a fake gpu.ComputePipeline.
type ComputePipeline struct {
	Resource
	Desc gpu.ComputePipelineDescriptor
}

// RenderPipeline is a fake gpu.RenderPipeline.
type RenderPipeline struct {
	Resource
	Desc gpu.RenderPipelineDescriptor
}

// Device is a recording gpu.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	// Fail makes the named Create method (e.g. "CreateComputePipeline")
	// return the given error.
	Fail map[string]error

	created map[string]int
	live    map[string]int
	nextID  int

	Textures []*Texture
	Writes   []Write
}

// Write records a WriteBuffer call.
type Write struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Fail:    make(map[string]error),
		created: make(map[string]int),
		live:    make(map[string]int),
	}
}

// Created returns how many resources of kind were ever created.
func (d *Device) Created(kind string) int { return d.created[kind] }

// Live returns how many resources of kind are created and not released.
func (d *Device) Live(kind string) int { return d.live[kind] }

// LiveTotal returns the number of unreleased resources of every kind.
func (d *Device) LiveTotal() int {
	n := 0
	for _, c := range d.live {
		n += c
	}
	return n
}

func (d *Device) newResource(kind, label string) Resource {
	d.nextID++
	d.created[kind]++
	d.live[kind]++
	return Resource{Kind: kind, Label: label, ID: d.nextID, dev: d}
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	if err := d.Fail["CreateTexture"]; err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gputest: texture %q has zero extent %dx%d", desc.Label, desc.Width, desc.Height)
	}
	t := &Texture{Resource: d.newResource("texture", desc.Label), Desc: *desc}
	t.view = &TextureView{Resource: d.newResource("view", desc.Label), Texture: t}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	if err := d.Fail["CreateSampler"]; err != nil {
		return nil, err
	}
	r := d.newResource("sampler", desc.Label)
	return &r, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if err := d.Fail["CreateBuffer"]; err != nil {
		return nil, err
	}
	return &Buffer{Resource: d.newResource("buffer", desc.Label), Desc: *desc, Data: make([]byte, desc.Size)}, nil
}

func (d *Device) CreateBufferInit(desc *gpu.BufferDescriptor, contents []byte) (gpu.Buffer, error) {
	if err := d.Fail["CreateBufferInit"]; err != nil {
		return nil, err
	}
	b := &Buffer{Resource: d.newResource("buffer", desc.Label), Desc: *desc}
	b.Desc.Size = uint64(len(contents))
	b.Data = append([]byte(nil), contents...)
	return b, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	if err := d.Fail["CreateBindGroupLayout"]; err != nil {
		return nil, err
	}
	r := d.newResource("bind_group_layout", desc.Label)
	return &r, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if err := d.Fail["CreateBindGroup"]; err != nil {
		return nil, err
	}
	if desc.Layout == nil {
		return nil, fmt.Errorf("gputest: bind group %q has no layout", desc.Label)
	}
	return &BindGroup{Resource: d.newResource("bind_group", desc.Label), Desc: *desc}, nil
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipeline, error) {
	if err := d.Fail["CreateComputePipeline"]; err != nil {
		return nil, err
	}
	return &ComputePipeline{Resource: d.newResource("compute_pipeline", desc.Label), Desc: *desc}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if err := d.Fail["CreateRenderPipeline"]; err != nil {
		return nil, err
	}
	return &RenderPipeline{Resource: d.newResource("render_pipeline", desc.Label), Desc: *desc}, nil
}

// WriteBuffer copies data into the fake buffer and records the write.
func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) {
	b := buf.(*Buffer)
	if b.Released {
		panic(fmt.Sprintf("gputest: write to released buffer %q", b.Label))
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows buffer %q of %d bytes",
			len(data), offset, b.Label, len(b.Data)))
	}
	copy(b.Data[offset:], data)
	d.Writes = append(d.Writes, Write{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
}
