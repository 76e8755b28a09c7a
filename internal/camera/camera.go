package camera

import (
	"github.com/chewxy/math32"

	"zurie/internal/renderer"
)

const (
	MinDistance = 0.5
	MaxDistance = 50

	MinFOV = 10
	MaxFOV = 150

	MaxHeight = 20
)

// Camera orbits the scene origin in the horizontal plane. The raymarching
// shader only turns rays around Y, so the view stays level and Height just
// raises the eye.
type Camera struct {
	// Yaw around the Y axis in radians; 0 looks down -Z.
	Yaw float32

	// Distance from the orbit center in the XZ plane.
	Distance float32

	// Height of the eye above the orbit center.
	Height float32

	// FOV is the vertical field of view in degrees.
	FOV float32

	// Viewport dimensions
	ViewportWidth  int
	ViewportHeight int

	// Movement speeds
	KeyOrbitSpeed float32 // radians per frame
	KeyRiseSpeed  float32 // units per frame
	ZoomFactor    float32 // distance multiplier per scroll step

	// State tracking
	isDragging bool
	lastDragX  float64
	lastDragY  float64
}

// NewCamera creates a camera at distance from the origin, looking at it
// from +Z.
func NewCamera(distance, fov float32, width, height int) *Camera {
	c := &Camera{
		Distance:       distance,
		FOV:            fov,
		ViewportWidth:  width,
		ViewportHeight: height,
		KeyOrbitSpeed:  0.03,
		KeyRiseSpeed:   0.05,
		ZoomFactor:     0.9,
	}
	c.clamp()
	return c
}

// FromOptions creates a camera that reproduces opts.
func FromOptions(opts renderer.RaymarchingOptions, width, height int) *Camera {
	x, z := opts.RayOrigin[0], opts.RayOrigin[2]
	c := NewCamera(math32.Sqrt(x*x+z*z), opts.FOV, width, height)
	c.Yaw = opts.Rotation
	c.Height = opts.RayOrigin[1]
	c.clamp()
	return c
}

// SetViewport updates the viewport dimensions
func (c *Camera) SetViewport(width, height int) {
	c.ViewportWidth = width
	c.ViewportHeight = height
}

// Orbit turns the camera around the origin by delta radians.
func (c *Camera) Orbit(delta float32) {
	c.Yaw = math32.Mod(c.Yaw+delta, 2*math32.Pi)
}

// Rise moves the eye up or down.
func (c *Camera) Rise(delta float32) {
	c.Height += delta
	c.clamp()
}

// Zoom moves the camera towards the origin for positive steps and away
// for negative ones.
func (c *Camera) Zoom(steps float64) {
	c.Distance *= math32.Pow(c.ZoomFactor, float32(steps))
	c.clamp()
}

// AdjustFOV widens or narrows the field of view by delta degrees.
func (c *Camera) AdjustFOV(delta float32) float32 {
	c.FOV += delta
	c.clamp()
	return c.FOV
}

// StartDrag begins a drag operation
func (c *Camera) StartDrag(x, y float64) {
	c.isDragging = true
	c.lastDragX = x
	c.lastDragY = y
}

// Drag continues a drag operation. A horizontal drag across the whole
// viewport is one full turn; a vertical one raises the eye by MaxHeight.
func (c *Camera) Drag(x, y float64) {
	if !c.isDragging {
		return
	}

	if c.ViewportWidth > 0 {
		c.Orbit(-float32((x-c.lastDragX)/float64(c.ViewportWidth)) * 2 * math32.Pi)
	}
	if c.ViewportHeight > 0 {
		c.Rise(float32((y-c.lastDragY)/float64(c.ViewportHeight)) * MaxHeight)
	}

	c.lastDragX = x
	c.lastDragY = y
}

// EndDrag ends a drag operation
func (c *Camera) EndDrag() {
	c.isDragging = false
}

// IsDragging returns whether a drag is in progress
func (c *Camera) IsDragging() bool {
	return c.isDragging
}

// Origin returns the eye position in world space.
func (c *Camera) Origin() [3]float32 {
	s, co := math32.Sincos(c.Yaw)
	return [3]float32{s * c.Distance, c.Height, co * c.Distance}
}

// Apply writes the camera into the raymarching options.
func (c *Camera) Apply(opts *renderer.RaymarchingOptions) {
	opts.Rotation = c.Yaw
	opts.RayOrigin = c.Origin()
	opts.FOV = c.FOV
}

// clamp keeps distance, height and FOV within usable bounds.
func (c *Camera) clamp() {
	c.Distance = math32.Max(MinDistance, math32.Min(MaxDistance, c.Distance))
	c.Height = math32.Max(-MaxHeight, math32.Min(MaxHeight, c.Height))
	c.FOV = math32.Max(MinFOV, math32.Min(MaxFOV, c.FOV))
}
