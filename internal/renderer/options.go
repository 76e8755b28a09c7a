package renderer

// RaymarchingOptions are the camera parameters of the raymarching pass.
type RaymarchingOptions struct {
	// FOV is the vertical field of view in degrees.
	FOV float32
	// Rotation turns the view direction around the Y axis, in radians.
	Rotation  float32
	RayOrigin [3]float32
}

// RenderOptions holds the user-tunable parameters read on every frame. It
// owns no GPU resources and is copied by value across rebuilds.
type RenderOptions struct {
	// Show names the texture presented to the surface. An unknown name
	// skips the blit for that frame.
	Show        string
	Raymarching RaymarchingOptions
}

// DefaultRenderOptions presents the raymarching output from a camera
// placed behind the origin.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Show: RaymarchingTexture,
		Raymarching: RaymarchingOptions{
			FOV:       60,
			RayOrigin: [3]float32{0, 0, 5},
		},
	}
}

// Option configures a RenderPassManager at construction.
type Option func(*managerConfig)

type managerConfig struct {
	objectCapacity int
	clearColor     [4]float64
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		objectCapacity: DefaultObjectCapacity,
		clearColor:     [4]float64{0, 0, 0, 1},
	}
}

func newManagerConfig(opts []Option) managerConfig {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithObjectCapacity sets how many scene objects the raymarching buffer
// holds.
func WithObjectCapacity(n int) Option {
	return func(c *managerConfig) { c.objectCapacity = n }
}

// WithClearColor sets the color the surface is cleared to before the blit.
func WithClearColor(rgba [4]float64) Option {
	return func(c *managerConfig) { c.clearColor = rgba }
}
