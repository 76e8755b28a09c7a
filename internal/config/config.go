package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"zurie/internal/renderer"
)

// DefaultPath is where the engine looks for its configuration.
const DefaultPath = "engine.toml"

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds application configuration
type Config struct {
	Window    Window    `toml:"window"`
	Rendering Rendering `toml:"rendering"`
	Scene     Scene     `toml:"scene"`
	Logging   Logging   `toml:"logging"`
}

// Window contains the initial window settings
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Rendering contains rendering parameters
type Rendering struct {
	// VSync presents with Fifo when on and Immediate when off
	VSync bool `toml:"vsync"`

	// Show names the texture presented to the window
	Show string `toml:"show"`

	// FOV is the vertical field of view in degrees (1-179)
	FOV float32 `toml:"fov"`

	// Rotation of the view around the Y axis in radians
	Rotation  float32    `toml:"rotation"`
	RayOrigin [3]float32 `toml:"ray_origin"`

	// ObjectCapacity is the number of spheres the scene buffer holds
	ObjectCapacity int `toml:"object_capacity"`

	ClearColor [4]float64 `toml:"clear_color"`
}

// Scene lists the raymarched spheres
type Scene struct {
	Spheres []Sphere `toml:"spheres"`
}

// Sphere is a single scene object
type Sphere struct {
	Position [3]float32 `toml:"position"`
	Radius   float32    `toml:"radius"`
}

// Logging configures the process logger
type Logging struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	opts := renderer.DefaultRenderOptions()
	return &Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "zurie",
		},
		Rendering: Rendering{
			VSync:          true,
			Show:           opts.Show,
			FOV:            opts.Raymarching.FOV,
			Rotation:       opts.Raymarching.Rotation,
			RayOrigin:      opts.Raymarching.RayOrigin,
			ObjectCapacity: renderer.DefaultObjectCapacity,
			ClearColor:     [4]float64{0, 0, 0, 1},
		},
		Scene: Scene{
			Spheres: []Sphere{
				{Position: [3]float32{0, 0, 0}, Radius: 1},
				{Position: [3]float32{2.2, 0.3, -0.5}, Radius: 0.6},
				{Position: [3]float32{-1.8, -0.4, 0.8}, Radius: 0.45},
			},
		},
		Logging: Logging{Level: "info"},
	}
}

// Get returns the global configuration instance, loading DefaultPath on
// first use. A missing or invalid file yields the defaults.
func Get() *Config {
	once.Do(func() {
		cfg, err := Load(DefaultPath)
		if err != nil {
			cfg = DefaultConfig()
		}
		mu.Lock()
		if instance == nil {
			instance = cfg
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Set replaces the global configuration instance.
func Set(cfg *Config) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Load reads path over the defaults and validates the result. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	defaults := cfg.Scene.Spheres
	// Array tables would otherwise be appended to the default spheres.
	cfg.Scene.Spheres = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if cfg.Scene.Spheres == nil {
		cfg.Scene.Spheres = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every out-of-range value, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Rendering.FOV < 1 || c.Rendering.FOV > 179 {
		errs = append(errs, fmt.Errorf("fov %g outside 1-179 degrees", c.Rendering.FOV))
	}
	if c.Rendering.ObjectCapacity < 1 {
		errs = append(errs, fmt.Errorf("object_capacity %d must be at least 1", c.Rendering.ObjectCapacity))
	}
	if len(c.Scene.Spheres) > c.Rendering.ObjectCapacity {
		errs = append(errs, fmt.Errorf("%d spheres exceed object_capacity %d", len(c.Scene.Spheres), c.Rendering.ObjectCapacity))
	}
	for i, s := range c.Scene.Spheres {
		if s.Radius <= 0 {
			errs = append(errs, fmt.Errorf("sphere %d radius %g must be positive", i, s.Radius))
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logging level %q", c.Logging.Level))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// RenderOptions returns the options the renderer starts with.
func (c *Config) RenderOptions() renderer.RenderOptions {
	return renderer.RenderOptions{
		Show: c.Rendering.Show,
		Raymarching: renderer.RaymarchingOptions{
			FOV:       c.Rendering.FOV,
			Rotation:  c.Rendering.Rotation,
			RayOrigin: c.Rendering.RayOrigin,
		},
	}
}

// Objects converts the scene spheres into renderer objects.
func (c *Config) Objects() []renderer.Object {
	out := make([]renderer.Object, len(c.Scene.Spheres))
	for i, s := range c.Scene.Spheres {
		out[i] = renderer.Object{Position: s.Position, Radius: s.Radius}
	}
	return out
}

// ManagerOptions returns the construction options of the render pass
// manager.
func (c *Config) ManagerOptions() []renderer.Option {
	return []renderer.Option{
		renderer.WithObjectCapacity(c.Rendering.ObjectCapacity),
		renderer.WithClearColor(c.Rendering.ClearColor),
	}
}
