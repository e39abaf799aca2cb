package engine

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/input"
	"github.com/Carmen-Shannon/oxy-splat/engine/loader"
	"github.com/Carmen-Shannon/oxy-splat/engine/renderer"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
	"github.com/Carmen-Shannon/oxy-splat/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeWindow struct {
	width, height int
	title         string
	closed        int
	beforeUpdate  func(iteration int)

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(dx, dy float32, mods int)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseDown func(button window.MouseButton, x, y float32)
	onMouseUp   func(button window.MouseButton, x, y float32)
	onMouseMove func(x, y float32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(dx, dy float32, m int)) { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32)) { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(keyCode uint32)) { w.onKeyUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float32)) { w.onMouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) IsRunning() bool { return w.closed == 0 }
func (w *fakeWindow) Close() error { w.closed++; return nil }
func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }
func (w *fakeWindow) SetMouseDownCallback(cb func(b window.MouseButton, x, y float32)) {
	w.onMouseDown = cb
}
func (w *fakeWindow) SetMouseUpCallback(cb func(b window.MouseButton, x, y float32)) {
	w.onMouseUp = cb
}

// ProcessMessages runs three iterations of the loop, stopping early once closed.
func (w *fakeWindow) ProcessMessages() {
	for i := range 3 {
		if w.beforeUpdate != nil {
			w.beforeUpdate(i)
		}
		if w.closed > 0 {
			return
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

type fakeRenderer struct {
	renders  int
	resized  [][2]int
	uploaded int
	failNext error
	last     camera.GPUFrameUniform
	released bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) UploadSplats(buf *splat.PackedBuffer) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.uploaded = buf.Count
	return nil
}

func (r *fakeRenderer) SplatCount() int { return r.uploaded }
func (r *fakeRenderer) Resize(width, height int) { r.resized = append(r.resized, [2]int{width, height}) }
func (r *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}
func (r *fakeRenderer) Release() { r.released = true }

func (r *fakeRenderer) Render(frame camera.GPUFrameUniform) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.renders++
	r.last = frame
	return nil
}

func newTestEngine(t *testing.T) (Engine, *fakeWindow, *fakeRenderer) {
	t.Helper()
	w := &fakeWindow{width: 1280, height: 720}
	r := &fakeRenderer{}
	return NewEngine(WithWindow(w), WithRenderer(r)), w, r
}

func vecClose(a, b [3]float32, eps float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > eps || d < -eps {
			return false
		}
	}
	return true
}

func TestFrameRendersOnlyWhenChanged(t *testing.T) {
	e, _, r := newTestEngine(t)
	now := time.Unix(0, 0)

	steps := []struct {
		name     string
		push     *input.Intent
		rendered bool
	}{
		{"initial frame", nil, true},
		{"idle", nil, false},
		{"orbit", &input.Intent{Kind: input.IntentOrbit, DX: 0.1}, true},
		{"idle again", nil, false},
		{"zoom", &input.Intent{Kind: input.IntentZoom, Factor: 0.5}, true},
	}
	for _, step := range steps {
		if step.push != nil {
			e.Intents().Push(*step.push)
		}
		now = now.Add(16 * time.Millisecond)
		got, err := e.Frame(now)
		if err != nil {
			t.Fatalf("%s: Frame() error = %v", step.name, err)
		}
		if got != step.rendered {
			t.Errorf("%s: Frame() = %v, want %v", step.name, got, step.rendered)
		}
	}
	if r.renders != 3 {
		t.Errorf("renders = %d, want 3", r.renders)
	}
}

func TestFrameResize(t *testing.T) {
	e, w, r := newTestEngine(t)
	ctrl := e.Camera().Controller()
	before := ctrl.Position()
	if _, err := e.Frame(time.Unix(0, 0)); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	w.onResize(1920, 1080)
	w.onResize(1920, 1080)
	rendered, err := e.Frame(time.Unix(1, 0))
	if err != nil || !rendered {
		t.Fatalf("Frame() after resize = (%v, %v), want (true, nil)", rendered, err)
	}

	if len(r.resized) != 1 || r.resized[0] != [2]int{1920, 1080} {
		t.Errorf("renderer resized = %v, want [[1920 1080]]", r.resized)
	}
	in := e.Camera().Intrinsics()
	if in.Width != 1920 || in.Height != 1080 {
		t.Errorf("intrinsics = %dx%d, want 1920x1080", in.Width, in.Height)
	}
	if got := r.last.HalfWH; got[0] != 960 || got[1] != 540 {
		t.Errorf("HalfWH = %v, want [960 540]", got)
	}
	if after := ctrl.Position(); after != before {
		t.Errorf("Position() after resize = %v, want %v", after, before)
	}
}

func TestResizeWithoutResolutionTracking(t *testing.T) {
	w := &fakeWindow{width: 1280, height: 720}
	r := &fakeRenderer{}
	cam := camera.NewCamera(camera.WithResolutionTracking(false))
	e := NewEngine(WithWindow(w), WithRenderer(r), WithCamera(cam))

	w.onResize(640, 480)
	if _, err := e.Frame(time.Unix(0, 0)); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if len(r.resized) != 1 {
		t.Errorf("renderer resized %d times, want 1", len(r.resized))
	}
	if in := cam.Intrinsics(); in.Width != 1280 || in.Height != 720 {
		t.Errorf("intrinsics = %dx%d, want 1280x720", in.Width, in.Height)
	}
}

func TestWindowEventsDriveCamera(t *testing.T) {
	e, w, _ := newTestEngine(t)
	ctrl := e.Camera().Controller()
	start := ctrl.Position()

	w.onMouseDown(window.MouseButtonLeft, 100, 100)
	w.onMouseMove(228, 100)
	w.onMouseUp(window.MouseButtonLeft, 228, 100)
	w.onMouseMove(400, 400)
	if got := e.Intents().Len(); got != 1 {
		t.Fatalf("Intents().Len() = %d, want 1", got)
	}

	if _, err := e.Frame(time.Unix(0, 0)); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if e.Intents().Len() != 0 {
		t.Errorf("Intents().Len() after Frame = %d, want 0", e.Intents().Len())
	}
	if ctrl.Position() == start {
		t.Error("Position() unchanged after drag")
	}

	w.onKeyDown(common.KeyR)
	if _, err := e.Frame(time.Unix(1, 0)); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := ctrl.Position(); !vecClose(got, start, 1e-5) {
		t.Errorf("Position() after reset = %v, want %v", got, start)
	}
}

func TestWheelModifiers(t *testing.T) {
	e, w, _ := newTestEngine(t)
	ctrl := e.Camera().Controller()
	radius := ctrl.Radius()

	w.onScroll(0, 640, common.ModControl) // 1 + 640/720
	if _, err := e.Frame(time.Unix(0, 0)); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	want := radius * (1 + 640.0/720.0)
	if got := ctrl.Radius(); got < want-1e-3 || got > want+1e-3 {
		t.Errorf("Radius() = %v, want %v", got, want)
	}
}

func TestRenderErrorRetried(t *testing.T) {
	e, _, r := newTestEngine(t)
	r.failNext = errors.New("surface lost")

	rendered, err := e.Frame(time.Unix(0, 0))
	if err == nil || rendered {
		t.Fatalf("Frame() = (%v, %v), want (false, error)", rendered, err)
	}
	rendered, err = e.Frame(time.Unix(1, 0))
	if err != nil || !rendered {
		t.Errorf("retry Frame() = (%v, %v), want (true, nil)", rendered, err)
	}
}

func TestProfilerMeasuresIdleFrames(t *testing.T) {
	e, _, r := newTestEngine(t)
	e.EnableProfiler()
	now := time.Unix(0, 0)

	for i := range 3 {
		if _, err := e.Frame(now.Add(time.Duration(i) * 10 * time.Millisecond)); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	if r.renders != 1 {
		t.Fatalf("renders = %d, want 1", r.renders)
	}
	if got := e.(*engine).profiler.AverageFrameTime(); got != 10*time.Millisecond {
		t.Errorf("AverageFrameTime() = %v, want 10ms", got)
	}
}

func TestRenderFrameLimit(t *testing.T) {
	w := &fakeWindow{width: 1280, height: 720}
	r := &fakeRenderer{}
	e := NewEngine(WithWindow(w), WithRenderer(r), WithRenderFrameLimit(10))

	now := time.Unix(0, 0)
	e.Frame(now)
	e.Intents().Push(input.Intent{Kind: input.IntentPan, DX: 1})
	if rendered, _ := e.Frame(now.Add(50 * time.Millisecond)); rendered {
		t.Error("Frame() rendered inside the frame limit")
	}
	if rendered, _ := e.Frame(now.Add(100 * time.Millisecond)); !rendered {
		t.Error("Frame() did not render after the frame limit elapsed")
	}
}

func TestSetScene(t *testing.T) {
	e, w, r := newTestEngine(t)
	e.Frame(time.Unix(0, 0))

	buf, err := splat.NewBuilder().Build(mustHeader(t, 3), make([]byte, 3*4*14))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	scene := &loader.Scene{Name: "sphere.ply", Buffer: buf}
	if err := e.SetScene(scene); err != nil {
		t.Fatalf("SetScene() error = %v", err)
	}
	if r.uploaded != 3 {
		t.Errorf("uploaded = %d, want 3", r.uploaded)
	}
	if w.title != "oxy-splat - sphere.ply (3 splats)" {
		t.Errorf("title = %q", w.title)
	}
	if rendered, _ := e.Frame(time.Unix(1, 0)); !rendered {
		t.Error("Frame() after SetScene did not render")
	}

	r.failNext = errors.New("out of memory")
	if err := e.SetScene(&loader.Scene{Name: "other", Buffer: buf}); err == nil {
		t.Error("SetScene() with failing upload returned nil error")
	}
	if e.Scene() != scene {
		t.Error("Scene() changed after failed upload")
	}
	if err := e.SetScene(&loader.Scene{Name: "empty"}); err == nil {
		t.Error("SetScene() without buffer returned nil error")
	}
}

func TestRunAndQuit(t *testing.T) {
	e, w, r := newTestEngine(t)
	e.Run()
	if r.renders != 1 {
		t.Errorf("renders after Run = %d, want 1", r.renders)
	}
	e.Quit()
	e.Quit()
	if w.closed != 1 {
		t.Errorf("Close() called %d times, want 1", w.closed)
	}
}

func TestQuitDuringRun(t *testing.T) {
	e, w, r := newTestEngine(t)
	updates := 0
	w.beforeUpdate = func(i int) {
		updates = i
		if i == 1 {
			e.Quit()
		}
	}
	e.Run()

	if w.closed != 1 {
		t.Errorf("Close() called %d times, want 1", w.closed)
	}
	if updates != 2 {
		t.Errorf("loop ran %d iterations, want 3", updates+1)
	}
	if r.renders != 1 {
		t.Errorf("renders = %d, want 1", r.renders)
	}
}

func TestHeadlessFrame(t *testing.T) {
	e := NewEngine()
	e.Intents().Push(input.Intent{Kind: input.IntentOrbit, DX: 0.2})
	rendered, err := e.Frame(time.Unix(0, 0))
	if rendered || err != nil {
		t.Errorf("Frame() = (%v, %v), want (false, nil)", rendered, err)
	}
	if e.Intents().Len() != 0 {
		t.Error("headless Frame() did not drain intents")
	}
}

// mustHeader parses a float32-only header with the fourteen standard splat properties.
func mustHeader(t *testing.T, count int) *splat.Header {
	t.Helper()
	src := "ply\nformat binary_little_endian 1.0\nelement vertex " + strconv.Itoa(count) + "\n"
	for _, name := range []string{"x", "y", "z", "scale_0", "scale_1", "scale_2", "rot_0", "rot_1", "rot_2", "rot_3", "f_dc_0", "f_dc_1", "f_dc_2", "opacity"} {
		src += "property float " + name + "\n"
	}
	src += "end_header\n"
	h, err := splat.ParseHeader([]byte(src))
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	return h
}
