package renderer

import (
	"errors"
	"fmt"
	"slices"
	"time"
	"unsafe"

	"zurie/internal/gpu"
	"zurie/internal/logging"
	"zurie/internal/texture"
)

// WorkgroupSize is the edge of the square thread tile of the raymarching
// shader. Dispatch math and the shader's @workgroup_size must agree or
// border pixels are never written.
const WorkgroupSize = 16

// DefaultObjectCapacity is the number of objects the scene buffer holds
// unless configured otherwise.
const DefaultObjectCapacity = 64

var (
	// ErrObjectCapacity is returned when more objects are rendered than the
	// scene buffer was created for. The buffer does not grow.
	ErrObjectCapacity = errors.New("renderer: object count exceeds scene buffer capacity")

	// ErrTargetKind is returned when the raymarching output is not a
	// texture.Standard texture.
	ErrTargetKind = errors.New("renderer: raymarching target must be a Standard texture")
)

// Object is a sphere of the raymarched scene. Its layout matches the
// shader's Object struct (16 bytes).
type Object struct {
	Position [3]float32
	Radius   float32
}

// raymarchingConstants matches the shader's Constants uniform (48 bytes,
// ray_origin aligned to 16).
type raymarchingConstants struct {
	TextureSize [2]uint32
	Time        float32
	Rotation    float32
	RayOrigin   [3]float32
	FOV         float32
	ObjectCount uint32
	_           [3]uint32
}

// DispatchSize returns the workgroup grid covering width×height pixels.
func DispatchSize(width, height uint32) (uint32, uint32) {
	return (width + WorkgroupSize - 1) / WorkgroupSize, (height + WorkgroupSize - 1) / WorkgroupSize
}

// RaymarchingPass renders the sphere scene into a compute-writable texture.
type RaymarchingPass struct {
	device gpu.Device
	target texture.Handle

	pipeline        gpu.ComputePipeline
	paramsLayout    gpu.BindGroupLayout
	paramsGroup     gpu.BindGroup
	constantsBuffer gpu.Buffer
	objectBuffer    gpu.Buffer
	capacity        int

	uploaded []Object
	synced   bool

	start time.Time
	now   func() time.Time
}

// NewRaymarchingPass builds the compute pipeline writing into target and
// a scene buffer holding up to capacity objects.
func NewRaymarchingPass(device gpu.Device, textures *texture.Manager, target texture.Handle, capacity int) (*RaymarchingPass, error) {
	tex, err := textures.Texture(target)
	if err != nil {
		return nil, err
	}
	if tex.Kind() != texture.Standard {
		return nil, fmt.Errorf("%w: %q is %s", ErrTargetKind, tex.Name(), tex.Kind())
	}
	if capacity < 1 {
		return nil, fmt.Errorf("raymarching object capacity must be at least 1, got %d", capacity)
	}

	r := &RaymarchingPass{
		device:   device,
		target:   target,
		capacity: capacity,
		start:    time.Now(),
		now:      time.Now,
	}
	if err := r.init(textures); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *RaymarchingPass) init(textures *texture.Manager) error {
	var err error
	r.constantsBuffer, err = r.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "raymarching_constants",
		Size:  uint64(unsafe.Sizeof(raymarchingConstants{})),
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("constants buffer creation failed: %w", err)
	}

	r.objectBuffer, err = r.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "raymarching_objects",
		Size:  uint64(r.capacity) * uint64(unsafe.Sizeof(Object{})),
		Usage: gpu.BufferUsageStorage | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("object buffer creation failed: %w", err)
	}

	r.paramsLayout, err = r.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "raymarching_params_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageCompute, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: gpu.ShaderStageCompute, Type: gpu.BindingTypeReadOnlyStorageBuffer},
		},
	})
	if err != nil {
		return fmt.Errorf("params layout creation failed: %w", err)
	}

	r.paramsGroup, err = r.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "raymarching_params",
		Layout: r.paramsLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Buffer: r.constantsBuffer, Size: r.constantsBuffer.Size()},
			{Binding: 1, Buffer: r.objectBuffer, Size: r.objectBuffer.Size()},
		},
	})
	if err != nil {
		return fmt.Errorf("params bind group creation failed: %w", err)
	}

	r.pipeline, err = r.device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:      "raymarching_pipeline",
		Shader:     gpu.ShaderSource{Label: "raymarching_shader", WGSL: RaymarchingShader},
		EntryPoint: "compute_main",
		BindGroupLayouts: []gpu.BindGroupLayout{
			textures.ComputeLayout(texture.Standard),
			r.paramsLayout,
		},
	})
	if err != nil {
		return fmt.Errorf("raymarching pipeline creation failed: %w", err)
	}
	return nil
}

// Capacity returns how many objects the scene buffer holds.
func (r *RaymarchingPass) Capacity() int { return r.capacity }

// Elapsed returns the time since the pass was created.
func (r *RaymarchingPass) Elapsed() time.Duration { return r.now().Sub(r.start) }

// Render uploads objects if they changed since the last frame, writes the
// frame constants, and dispatches one thread per pixel of width×height
// into the target texture.
func (r *RaymarchingPass) Render(encoder gpu.CommandEncoder, textures *texture.Manager, width, height uint32, opts RaymarchingOptions, objects []Object) error {
	if len(objects) > r.capacity {
		return fmt.Errorf("%w: %d objects, capacity %d", ErrObjectCapacity, len(objects), r.capacity)
	}
	tex, err := textures.Texture(r.target)
	if err != nil {
		return err
	}

	if !r.synced || !slices.Equal(r.uploaded, objects) {
		if len(objects) > 0 {
			r.device.WriteBuffer(r.objectBuffer, 0, toBytes(objects))
		}
		r.uploaded = append(r.uploaded[:0], objects...)
		r.synced = true
	}

	constants := raymarchingConstants{
		TextureSize: [2]uint32{width, height},
		Time:        float32(r.Elapsed().Seconds()),
		Rotation:    opts.Rotation,
		RayOrigin:   opts.RayOrigin,
		FOV:         opts.FOV,
		ObjectCount: uint32(len(objects)),
	}
	r.device.WriteBuffer(r.constantsBuffer, 0, toBytes([]raymarchingConstants{constants}))

	x, y := DispatchSize(width, height)
	pass := encoder.BeginComputePass("raymarching_pass")
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, tex.ComputeBindGroup())
	pass.SetBindGroup(1, r.paramsGroup)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()

	logging.Logger().Debug("raymarching dispatched", "groups_x", x, "groups_y", y, "objects", len(objects))
	return nil
}

// Release frees the pipeline, bind group, layout and buffers.
func (r *RaymarchingPass) Release() {
	for _, res := range []gpu.Releaser{r.pipeline, r.paramsGroup, r.paramsLayout, r.objectBuffer, r.constantsBuffer} {
		if res != nil {
			res.Release()
		}
	}
	r.pipeline, r.paramsGroup, r.paramsLayout, r.objectBuffer, r.constantsBuffer = nil, nil, nil, nil, nil
}
