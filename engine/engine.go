package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/input"
	"github.com/Carmen-Shannon/oxy-splat/engine/loader"
	"github.com/Carmen-Shannon/oxy-splat/engine/profiler"
	"github.com/Carmen-Shannon/oxy-splat/engine/renderer"
	"github.com/Carmen-Shannon/oxy-splat/engine/window"
)

// idleSleep is how long the message loop sleeps after a frame with nothing to draw.
const idleSleep = 2 * time.Millisecond

// engine implements the Engine interface.
// All state is owned by the goroutine running the window message loop.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	intents  *input.Queue
	adapter  input.Adapter

	profiler         *profiler.Profiler
	profilingEnabled bool

	title            string
	scene            *loader.Scene
	needsRender      bool
	pendingResize    *[2]int
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastRender       time.Time

	running   atomic.Bool
	quit      atomic.Bool
	closeOnce sync.Once
}

// Engine is the per-session context of the viewer. It owns the camera, the intent queue and the
// input adapter, and renders a frame whenever the camera moved, the surface was resized or a new
// scene was uploaded.
type Engine interface {
	// Window returns the underlying window, nil when running headless.
	Window() window.Window

	// Renderer returns the renderer, nil when running headless.
	Renderer() renderer.Renderer

	// Camera returns the camera driven by the input adapter.
	Camera() camera.Camera

	// Intents returns the queue input handlers push to. Intents are applied at the start of
	// the next Frame.
	Intents() *input.Queue

	// Adapter returns the input adapter translating raw pointer, wheel and touch events.
	Adapter() input.Adapter

	// SetScene uploads the scene's packed buffer and schedules a render.
	//
	// Parameters:
	//   - s: the decoded scene
	//
	// Returns:
	//   - error: an error if the upload fails; the previous scene stays bound
	SetScene(s *loader.Scene) error

	// Scene returns the scene currently bound to the renderer, or nil.
	Scene() *loader.Scene

	// Resize records a new surface size. The surface, projection and adapter viewport are
	// updated at the start of the next Frame. Repeated calls before a frame keep only the last size.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	Resize(width, height int)

	// Frame runs one iteration of the render loop: apply a pending resize, drain the intent
	// queue into the controller and, if the view changed, render.
	//
	// Parameters:
	//   - now: the frame timestamp
	//
	// Returns:
	//   - bool: true if a frame was rendered
	//   - error: the renderer error, the frame is retried on the next call
	Frame(now time.Time) (bool, error)

	// EnableProfiler enables frame time logging. Every Frame call is measured, including frames
	// with nothing to draw.
	EnableProfiler()

	// DisableProfiler disables frame time logging.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run drives Frame from the window message loop. Blocks until the window closes.
	Run()

	// Quit stops Run. While Run is active the window is closed from the message loop on its next
	// iteration; otherwise it is closed immediately. Safe to call from any goroutine and multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options and registers its input and resize
// handlers on the window.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		intents:     input.NewQueue(),
		profiler:    profiler.NewProfiler(time.Second),
		needsRender: true,
		title:       "oxy-splat",
	}
	for _, opt := range options {
		opt(e)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}

	width, height := e.camera.Intrinsics().Width, e.camera.Intrinsics().Height
	if e.window != nil {
		width, height = e.window.Width(), e.window.Height()
	}
	e.adapter = input.NewAdapter(e.intents, width, height)
	e.camera.SetViewport(width, height)
	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow routes window events to the adapter and the intent queue.
func (e *engine) bindWindow() {
	w := e.window
	w.SetResizeCallback(e.Resize)
	w.SetMouseDownCallback(func(button window.MouseButton, x, y float32) {
		switch button {
		case window.MouseButtonLeft:
			e.adapter.PointerDown(input.ButtonPrimary, x, y)
		case window.MouseButtonRight:
			e.adapter.PointerDown(input.ButtonSecondary, x, y)
		}
	})
	w.SetMouseUpCallback(func(window.MouseButton, float32, float32) {
		e.adapter.PointerUp()
	})
	w.SetMouseMoveCallback(e.adapter.PointerMove)
	w.SetScrollCallback(func(dx, dy float32, mods int) {
		e.adapter.Wheel(dx, dy, input.Modifier(mods))
	})
	w.SetKeyDownCallback(e.handleKey)
}

func (e *engine) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyR:
		e.intents.Push(input.Intent{Kind: input.IntentReset})
	case common.KeyP:
		e.mu.Lock()
		e.profilingEnabled = !e.profilingEnabled
		enabled := e.profilingEnabled
		e.mu.Unlock()
		common.Logger().Info("engine: profiler toggled", "enabled", enabled)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Intents() *input.Queue {
	return e.intents
}

func (e *engine) Adapter() input.Adapter {
	return e.adapter
}

func (e *engine) SetScene(s *loader.Scene) error {
	if s == nil || s.Buffer == nil {
		return fmt.Errorf("engine: scene has no packed buffer")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.renderer != nil {
		if err := e.renderer.UploadSplats(s.Buffer); err != nil {
			return fmt.Errorf("engine: failed to bind scene %q: %w", s.Name, err)
		}
	}
	e.scene = s
	e.needsRender = true
	if e.window != nil {
		e.window.SetTitle(fmt.Sprintf("%s - %s (%d splats)", e.title, s.Name, s.Buffer.Count))
	}
	return nil
}

func (e *engine) Scene() *loader.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingResize = &[2]int{width, height}
}

// applyResize pushes a pending size to the renderer, camera and adapter. Caller holds e.mu.
func (e *engine) applyResize() {
	if e.pendingResize == nil {
		return
	}
	width, height := e.pendingResize[0], e.pendingResize[1]
	e.pendingResize = nil

	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	projectionChanged := e.camera.SetViewport(width, height)
	e.adapter.SetViewport(width, height)
	e.needsRender = true
	common.Logger().Debug("engine: resized", "width", width, "height", height, "projection_changed", projectionChanged)
}

func (e *engine) Frame(now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.applyResize()
	e.intents.Drain(e.camera.Controller())
	if e.profilingEnabled {
		e.profiler.Tick(now)
	}

	if e.renderer == nil {
		return false, nil
	}
	if !e.needsRender && !e.camera.Changed() {
		return false, nil
	}
	if e.renderFrameLimit > 0 && !e.lastRender.IsZero() && now.Sub(e.lastRender) < e.renderFrameLimit {
		return false, nil
	}

	// FrameUniform consumes the view matrix, so a failed render has to be retried explicitly.
	if err := e.renderer.Render(e.camera.FrameUniform()); err != nil {
		e.needsRender = true
		return false, err
	}
	e.needsRender = false
	e.lastRender = now
	return true, nil
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameLimit(fps)
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() {
	if e.window == nil {
		return
	}
	e.running.Store(true)
	defer e.running.Store(false)

	e.window.SetUpdateCallback(func() {
		if e.quit.Load() {
			e.closeWindow()
			return
		}
		rendered, err := e.Frame(time.Now())
		if err != nil {
			common.Logger().Warn("engine: frame skipped", "error", err)
		}
		if !rendered {
			time.Sleep(idleSleep)
		}
	})
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	e.quit.Store(true)
	if !e.running.Load() {
		e.closeWindow()
	}
}

func (e *engine) closeWindow() {
	e.closeOnce.Do(func() {
		if e.window == nil {
			return
		}
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("engine: window close failed", "error", err)
		}
	})
}
