package renderer

import (
	"fmt"
	"slices"

	"zurie/internal/gpu"
	"zurie/internal/logging"
)

// State is the rebuild state of a Session.
type State int

const (
	// StateReady renders with the current manager.
	StateReady State = iota
	// StateRebuildPending replaces the manager at the next frame boundary.
	StateRebuildPending
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRebuildPending:
		return "rebuild_pending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns the live RenderPassManager and replaces it at frame
// boundaries: pending resizes are applied and requested rebuilds are
// carried out before the next frame is recorded. Options and scene
// objects survive a rebuild; GPU objects do not.
type Session struct {
	device        gpu.Device
	surfaceFormat gpu.TextureFormat
	opts          []Option

	manager *RenderPassManager
	state   State

	pendingResize bool
	pendingW      uint32
	pendingH      uint32

	// Objects too many for the live manager, waiting for the rebuild
	// that raises its capacity.
	pendingObjects    []Object
	hasPendingObjects bool

	rebuilds int
}

// NewSession builds the first manager.
func NewSession(device gpu.Device, surfaceFormat gpu.TextureFormat, width, height uint32, opts ...Option) (*Session, error) {
	m, err := New(device, surfaceFormat, width, height, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{
		device:        device,
		surfaceFormat: surfaceFormat,
		opts:          slices.Clone(opts),
		manager:       m,
	}, nil
}

// Manager returns the current manager. The pointer changes after a
// rebuild.
func (s *Session) Manager() *RenderPassManager { return s.manager }

// Options returns the live options of the current manager.
func (s *Session) Options() *RenderOptions { return s.manager.Options() }

// State reports whether a rebuild is pending.
func (s *Session) State() State { return s.state }

// Rebuilds returns how many times the manager has been replaced.
func (s *Session) Rebuilds() int { return s.rebuilds }

// RequestRebuild schedules a full rebuild for the next Render.
func (s *Session) RequestRebuild() { s.state = StateRebuildPending }

// SetManagerOptions replaces the construction options used by the next
// rebuild. The live manager is not touched.
func (s *Session) SetManagerOptions(opts ...Option) {
	s.opts = slices.Clone(opts)
}

// SetObjects replaces the scene objects. Objects that fit the live manager
// apply at once. Objects that only fit the capacity of the next rebuild
// are held back and a rebuild is scheduled. Anything larger is rejected
// with ErrObjectCapacity and the current scene is kept.
func (s *Session) SetObjects(objects []Object) error {
	if len(objects) <= s.manager.ObjectCapacity() {
		s.manager.SetObjects(objects)
		s.pendingObjects, s.hasPendingObjects = nil, false
		return nil
	}
	capacity := newManagerConfig(s.opts).objectCapacity
	if len(objects) > capacity {
		return fmt.Errorf("%w: %d objects, capacity %d", ErrObjectCapacity, len(objects), capacity)
	}
	s.pendingObjects, s.hasPendingObjects = slices.Clone(objects), true
	s.state = StateRebuildPending
	logging.Logger().Info("scene exceeds live object capacity, rebuilding",
		"objects", len(objects), "live_capacity", s.manager.ObjectCapacity(), "capacity", capacity)
	return nil
}

// Resize records a new size. It is applied at the start of the next
// Render, never while a frame is being recorded.
func (s *Session) Resize(width, height uint32) {
	s.pendingResize = true
	s.pendingW, s.pendingH = width, height
}

// Render applies pending work and records a frame into encoder.
func (s *Session) Render(encoder gpu.CommandEncoder, target gpu.TextureView) error {
	if err := s.applyPending(); err != nil {
		return err
	}
	return s.manager.Render(encoder, target)
}

func (s *Session) applyPending() error {
	if s.pendingResize {
		s.pendingResize = false
		if err := s.manager.Resize(s.pendingW, s.pendingH); err != nil {
			return err
		}
	}
	if s.state == StateRebuildPending {
		if err := s.rebuild(); err != nil {
			return err
		}
		s.state = StateReady
	}
	return nil
}

// rebuild constructs a replacement manager at the current size before
// releasing the old one.
func (s *Session) rebuild() error {
	old := s.manager
	w, h := old.Size()
	fresh, err := New(s.device, s.surfaceFormat, w, h, s.opts...)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	fresh.SetOptions(*old.Options())
	objects := old.Objects()
	if s.hasPendingObjects {
		objects = s.pendingObjects
	}
	if len(objects) > fresh.ObjectCapacity() {
		fresh.Release()
		return fmt.Errorf("rebuild failed: %w: %d objects, capacity %d", ErrObjectCapacity, len(objects), fresh.ObjectCapacity())
	}
	fresh.SetObjects(objects)
	s.pendingObjects, s.hasPendingObjects = nil, false
	old.Release()

	s.manager = fresh
	s.rebuilds++
	logging.Logger().Info("render pass manager rebuilt", "width", w, "height", h, "rebuilds", s.rebuilds)
	return nil
}

// Release frees the current manager.
func (s *Session) Release() {
	if s.manager != nil {
		s.manager.Release()
		s.manager = nil
	}
}
