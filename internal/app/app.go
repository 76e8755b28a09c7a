package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"zurie/internal/camera"
	"zurie/internal/config"
	"zurie/internal/gpu/webgpu"
	"zurie/internal/logging"
	"zurie/internal/renderer"
)

const (
	// FOVStep is the change in degrees per [ or ] press.
	FOVStep = 5
)

// ErrSurfaceOutOfMemory is returned by Run when the surface reports that
// it ran out of memory.
var ErrSurfaceOutOfMemory = errors.New("app: surface out of memory")

type App struct {
	configPath string

	window   *glfw.Window
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	swapChain       *wgpu.SwapChain
	swapChainFormat wgpu.TextureFormat
	swapChainDirty  bool

	gpu     *webgpu.Device
	session *renderer.Session
	camera  *camera.Camera

	vsync        bool
	appliedVSync bool

	keys   map[glfw.Key]bool
	keysMu sync.RWMutex

	reloads  chan *config.Config
	cancel   context.CancelFunc
	logLevel *slog.LevelVar

	width, height int
}

// New opens the window, acquires the GPU and builds the render session
// described by the global configuration. configPath is watched for live
// edits.
func New(configPath string) (*App, error) {
	runtime.LockOSThread()
	cfg := config.Get()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("GLFW init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window creation failed: %w", err)
	}

	app := &App{
		configPath: configPath,
		window:     window,
		vsync:      cfg.Rendering.VSync,
		keys:       make(map[glfw.Key]bool),
		reloads:    make(chan *config.Config, 1),
	}
	app.width, app.height = window.GetFramebufferSize()

	if err := app.initWebGPU(); err != nil {
		app.Cleanup()
		return nil, err
	}
	if err := app.configureSwapChain(); err != nil {
		app.Cleanup()
		return nil, err
	}

	format, err := webgpu.FormatFromWGPU(app.swapChainFormat)
	if err != nil {
		app.Cleanup()
		return nil, err
	}
	app.gpu = webgpu.NewDevice(app.device, app.queue)
	app.session, err = renderer.NewSession(app.gpu, format, uint32(app.width), uint32(app.height), cfg.ManagerOptions()...)
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("render pass manager creation failed: %w", err)
	}
	*app.session.Options() = cfg.RenderOptions()
	if err := app.session.SetObjects(cfg.Objects()); err != nil {
		app.Cleanup()
		return nil, err
	}
	app.camera = camera.FromOptions(app.session.Options().Raymarching, app.width, app.height)

	app.setupCallbacks()

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	if configPath != "" {
		err := config.Watch(ctx, configPath, func(c *config.Config) {
			// Keep only the newest edit; the frame loop applies it.
			select {
			case <-app.reloads:
			default:
			}
			app.reloads <- c
		})
		if err != nil {
			logging.Logger().Warn("config hot reload disabled", "path", configPath, "error", err)
		}
	}

	return app, nil
}

func (app *App) initWebGPU() error {
	app.instance = wgpu.CreateInstance(instanceDescriptor())
	if app.instance == nil {
		return fmt.Errorf("failed to create WebGPU instance")
	}

	app.surface = CreateSurface(app.instance, app.window)
	if app.surface == nil {
		return fmt.Errorf("surface creation failed")
	}

	// Request adapter - try with surface first, then without
	var err error
	app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: app.surface,
		PowerPreference:   wgpu.PowerPreference_HighPerformance,
	})
	if err != nil {
		logging.Logger().Warn("no adapter for surface, retrying without surface constraint", "error", err)
		app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreference_HighPerformance,
		})
		if err != nil {
			return fmt.Errorf("adapter request failed: %w", err)
		}
	}

	props := app.adapter.GetProperties()
	logging.Logger().Info("adapter selected", "name", props.Name, "driver", props.DriverDescription)

	app.device, err = app.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "ZurieDevice",
	})
	if err != nil {
		return fmt.Errorf("device request failed: %w", err)
	}

	app.queue = app.device.GetQueue()
	app.swapChainFormat = app.surface.GetPreferredFormat(app.adapter)
	return nil
}

// configureSwapChain (re)creates the swap chain for the current size and
// present mode.
func (app *App) configureSwapChain() error {
	if app.swapChain != nil {
		app.swapChain.Release()
		app.swapChain = nil
	}

	var err error
	app.swapChain, err = app.device.CreateSwapChain(app.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      app.swapChainFormat,
		Width:       uint32(max(app.width, 1)),
		Height:      uint32(max(app.height, 1)),
		PresentMode: webgpu.PresentMode(app.vsync),
	})
	if err != nil {
		return fmt.Errorf("swap chain creation failed: %w", err)
	}
	app.appliedVSync = app.vsync
	app.swapChainDirty = false
	return nil
}

func (app *App) setupCallbacks() {
	app.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		app.width = width
		app.height = height
		app.camera.SetViewport(width, height)
		if width > 0 && height > 0 {
			app.session.Resize(uint32(width), uint32(height))
			app.swapChainDirty = true
		}
	})

	app.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			x, y := w.GetCursorPos()
			if action == glfw.Press {
				app.camera.StartDrag(x, y)
			} else {
				app.camera.EndDrag()
			}
		}
	})

	app.window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if app.camera.IsDragging() {
			app.camera.Drag(x, y)
		}
	})

	app.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		app.camera.Zoom(yoff)
	})

	app.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		app.keysMu.Lock()
		if action == glfw.Press {
			app.keys[key] = true
		} else if action == glfw.Release {
			app.keys[key] = false
		}
		app.keysMu.Unlock()

		// Handle single-press actions (not held)
		if action == glfw.Press {
			switch key {
			case glfw.KeyEscape:
				w.SetShouldClose(true)
			case glfw.KeyLeftBracket:
				app.camera.AdjustFOV(-FOVStep)
			case glfw.KeyRightBracket:
				app.camera.AdjustFOV(FOVStep)
			case glfw.KeyTab:
				app.cycleShow()
			case glfw.KeyR:
				app.session.RequestRebuild()
				logging.Logger().Info("rebuild requested")
			case glfw.KeyV:
				app.vsync = !app.vsync
			}
		}
	})
}

// SetLogLevel lets config reloads change the level of the installed
// logger.
func (app *App) SetLogLevel(v *slog.LevelVar) { app.logLevel = v }

// cycleShow presents the next registered texture. An unknown current name
// restarts from the first.
func (app *App) cycleShow() {
	names := app.session.Manager().Textures().Names()
	if len(names) == 0 {
		return
	}
	opts := app.session.Options()
	next := (slices.Index(names, opts.Show) + 1) % len(names)
	opts.Show = names[next]
	logging.Logger().Info("showing texture", "name", opts.Show)
}

func (app *App) processInput() {
	app.keysMu.RLock()
	defer app.keysMu.RUnlock()

	var orbit, rise float32
	if app.keys[glfw.KeyA] || app.keys[glfw.KeyLeft] {
		orbit += app.camera.KeyOrbitSpeed
	}
	if app.keys[glfw.KeyD] || app.keys[glfw.KeyRight] {
		orbit -= app.camera.KeyOrbitSpeed
	}
	if app.keys[glfw.KeyW] || app.keys[glfw.KeyUp] {
		rise += app.camera.KeyRiseSpeed
	}
	if app.keys[glfw.KeyS] || app.keys[glfw.KeyDown] {
		rise -= app.camera.KeyRiseSpeed
	}

	if orbit != 0 {
		app.camera.Orbit(orbit)
	}
	if rise != 0 {
		app.camera.Rise(rise)
	}
}

// applyReload takes the newest config edit, if any. Window size only
// applies at the next start; manager construction options apply at the
// next rebuild, which a scene larger than the live capacity schedules.
func (app *App) applyReload() {
	select {
	case cfg := <-app.reloads:
		app.session.SetManagerOptions(cfg.ManagerOptions()...)
		if err := app.session.SetObjects(cfg.Objects()); err != nil {
			logging.Logger().Warn("config reload rejected", "error", err)
			app.session.SetManagerOptions(config.Get().ManagerOptions()...)
			return
		}
		config.Set(cfg)
		*app.session.Options() = cfg.RenderOptions()
		app.camera = camera.FromOptions(cfg.RenderOptions().Raymarching, app.width, app.height)
		app.vsync = cfg.Rendering.VSync
		if app.logLevel != nil {
			app.logLevel.Set(logging.ParseLevel(cfg.Logging.Level))
		}
	default:
	}
}

// Run drives the frame loop until the window closes or a fatal error
// occurs.
func (app *App) Run() error {
	lastTime := time.Now()
	frames := 0

	for !app.window.ShouldClose() {
		glfw.PollEvents()
		app.processInput()
		app.applyReload()

		if err := app.renderFrame(); err != nil {
			return err
		}

		frames++
		if time.Since(lastTime) >= time.Second {
			app.window.SetTitle(fmt.Sprintf("%s | %s | FPS: %d", config.Get().Window.Title, app.session.Options().Show, frames))
			app.logStats()
			frames = 0
			lastTime = time.Now()
		}
	}

	return nil
}

// logStats reports the manager's diagnostics at debug level.
func (app *App) logStats() {
	log := logging.Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	st := app.session.Manager().Stats()
	textures := make([]string, 0, len(st.Textures))
	for _, t := range st.Textures {
		textures = append(textures, fmt.Sprintf("%s=%dx%d", t.Name, t.Width, t.Height))
	}
	log.Debug("render stats",
		"size", fmt.Sprintf("%dx%d", st.Width, st.Height),
		"textures", textures,
		"frames", st.Frames,
		"objects", st.Objects,
		"capacity", st.ObjectCapacity,
		"blits", st.BlitsPerformed,
		"blits_skipped", st.BlitsSkipped,
		"rebuilds", app.session.Rebuilds(),
		"state", app.session.State().String())
}

// renderFrame records, submits and presents one frame. Transient surface
// problems skip the frame and return nil.
func (app *App) renderFrame() error {
	if app.width == 0 || app.height == 0 {
		return nil
	}

	if app.vsync != app.appliedVSync || app.swapChainDirty {
		if app.vsync != app.appliedVSync {
			logging.Logger().Info("vsync changed", "enabled", app.vsync)
		}
		if err := app.configureSwapChain(); err != nil {
			return err
		}
	}

	app.camera.Apply(&app.session.Options().Raymarching)

	view, err := app.swapChain.GetCurrentTextureView()
	if err != nil {
		return app.handleSurfaceError(err)
	}
	defer view.Release()

	encoder, err := app.gpu.NewEncoder("frame_encoder")
	if err != nil {
		return fmt.Errorf("command encoder creation failed: %w", err)
	}
	if err := app.session.Render(encoder, webgpu.WrapView(view)); err != nil {
		encoder.Release()
		return err
	}
	if err := encoder.Submit(); err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}
	app.swapChain.Present()
	return nil
}

func (app *App) handleSurfaceError(err error) error {
	status := webgpu.ClassifySurfaceError(err)
	switch {
	case status.NeedsReconfigure():
		logging.Logger().Info("surface needs reconfiguring, skipping frame", "status", status.String())
		return app.configureSwapChain()
	case status == webgpu.SurfaceOutOfMemory:
		return fmt.Errorf("%w: %v", ErrSurfaceOutOfMemory, err)
	default:
		logging.Logger().Warn("surface image unavailable, skipping frame", "error", err)
		return nil
	}
}

func (app *App) Cleanup() {
	if app.cancel != nil {
		app.cancel()
	}
	if app.session != nil {
		app.session.Release()
	}
	if app.swapChain != nil {
		app.swapChain.Release()
	}
	if app.queue != nil {
		app.queue.Release()
	}
	if app.device != nil {
		app.device.Release()
	}
	if app.adapter != nil {
		app.adapter.Release()
	}
	if app.surface != nil {
		app.surface.Release()
	}
	if app.instance != nil {
		app.instance.Release()
	}
	if app.window != nil {
		app.window.Destroy()
	}
	glfw.Terminate()
}
