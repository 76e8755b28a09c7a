package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zurie/internal/renderer"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, renderer.DefaultRenderOptions(), cfg.RenderOptions())
	assert.Len(t, cfg.Objects(), 3)
	assert.Equal(t, renderer.DefaultObjectCapacity, cfg.Rendering.ObjectCapacity)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
width = 800
height = 600

[rendering]
show = "SceneTexture"
fov = 75.0
vsync = false

[[scene.spheres]]
position = [1.0, 2.0, 3.0]
radius = 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "zurie", cfg.Window.Title)
	assert.False(t, cfg.Rendering.VSync)
	assert.Equal(t, float32(75), cfg.Rendering.FOV)
	assert.Equal(t, [3]float32{0, 0, 5}, cfg.Rendering.RayOrigin)
	assert.Equal(t, "SceneTexture", cfg.RenderOptions().Show)
	assert.Equal(t, []renderer.Object{{Position: [3]float32{1, 2, 3}, Radius: 0.5}}, cfg.Objects())
}

func TestParseKeepsDefaultSpheresWhenAbsent(t *testing.T) {
	cfg, err := Parse([]byte("[logging]\nlevel = \"debug\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scene.Spheres, cfg.Scene.Spheres)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":       "[rendering]\nbogus = 1\n",
		"malformed":         "[rendering\n",
		"zero width":        "[window]\nwidth = 0\n",
		"fov too wide":      "[rendering]\nfov = 180.0\n",
		"zero capacity":     "[rendering]\nobject_capacity = 0\n",
		"negative radius":   "[[scene.spheres]]\nradius = -1.0\n",
		"unknown log level": "[logging]\nlevel = \"loud\"\n",
		"over capacity": `
[rendering]
object_capacity = 1
[[scene.spheres]]
radius = 1.0
[[scene.spheres]]
radius = 1.0
`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	cfg := DefaultConfig()
	cfg.Rendering.Show = "SceneTexture"
	cfg.Rendering.Rotation = 1.5
	cfg.Scene.Spheres = cfg.Scene.Spheres[:1]

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestManagerOptionsBuildManager(t *testing.T) {
	assert.Len(t, DefaultConfig().ManagerOptions(), 2)
}

func TestSetAndGet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Title = "custom"
	Set(cfg)
	assert.Same(t, cfg, Get())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }))

	cfg := DefaultConfig()
	cfg.Rendering.FOV = 90
	require.NoError(t, Save(path, cfg))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-changes:
			if got.Rendering.FOV == 90 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchIgnoresInvalidEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }))

	require.NoError(t, os.WriteFile(path, []byte("[rendering]\nfov = 500.0\n"), 0644))
	// Unrelated files in the same directory are not reloads.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected reload with fov %g", got.Rendering.FOV)
	case <-time.After(500 * time.Millisecond):
	}
}
