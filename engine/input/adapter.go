package input

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-splat/common"
)

// Button identifies the pointer button that started a drag.
type Button int

const (
	ButtonNone Button = iota
	// ButtonPrimary drags orbit the camera.
	ButtonPrimary
	// ButtonSecondary drags pan the camera.
	ButtonSecondary
)

// Modifier is a bit set of held modifier keys, using the common.Mod* bits.
type Modifier int

// Has reports whether every bit in m is set.
func (mods Modifier) Has(m Modifier) bool {
	return mods&m == m
}

// Touch is the position of one active touch point in window pixels.
type Touch struct {
	X, Y float32
}

const (
	// DragGain scales normalized pointer and single-touch drags.
	DragGain float32 = 4
	// WheelPanGain scales shift+wheel pans.
	WheelPanGain float32 = 4
	// PinchPanGain scales the two-finger centroid delta.
	PinchPanGain float32 = 40
)

// Adapter turns raw window events into camera intents. Deltas are normalized by the viewport
// size before scaling, so gestures feel the same at any resolution.
type Adapter interface {
	// SetViewport sets the size used to normalize deltas. Non-positive sizes are ignored.
	SetViewport(width, height int)

	// PointerDown starts a drag with the given button at (x, y).
	PointerDown(button Button, x, y float32)

	// PointerMove continues the active drag. Moves without an active drag are ignored.
	PointerMove(x, y float32)

	// PointerUp ends the active drag.
	PointerUp()

	// Wheel handles a scroll of (dx, dy) pixels. Shift pans, control zooms, otherwise orbits.
	Wheel(dx, dy float32, mods Modifier)

	// TouchStart records the touches that begin a gesture.
	TouchStart(touches []Touch)

	// TouchMove continues a one-finger orbit or a two-finger pan and pinch.
	TouchMove(touches []Touch)

	// TouchEnd ends the active touch gesture.
	TouchEnd(touches []Touch)
}

type adapterImpl struct {
	mu *sync.Mutex

	sink          Sink
	width, height float32

	down         Button
	startX       float32
	startY       float32
	altX, altY   float32
	lastSumX     float32
	lastSumY     float32
	touchStarted bool
}

var _ Adapter = &adapterImpl{}

// NewAdapter creates an input adapter that pushes intents into sink.
//
// Parameters:
//   - sink: destination for generated intents, usually a *Queue
//   - width: initial viewport width in pixels
//   - height: initial viewport height in pixels
//
// Returns:
//   - Adapter: the adapter
func NewAdapter(sink Sink, width, height int) Adapter {
	a := &adapterImpl{
		mu:     &sync.Mutex{},
		sink:   sink,
		width:  1,
		height: 1,
	}
	a.SetViewport(width, height)
	return a
}

func (a *adapterImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.mu.Lock()
	a.width = float32(width)
	a.height = float32(height)
	a.mu.Unlock()
}

func (a *adapterImpl) PointerDown(button Button, x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.down = button
	a.startX = x
	a.startY = y
}

func (a *adapterImpl) PointerMove(x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dx := (a.startX - x) / a.width * DragGain
	dy := (a.startY - y) / a.height * DragGain
	switch a.down {
	case ButtonPrimary:
		a.sink.Push(Intent{Kind: IntentOrbit, DX: dx, DY: dy})
	case ButtonSecondary:
		a.sink.Push(Intent{Kind: IntentPan, DX: dx, DY: dy})
	default:
		return
	}
	a.startX = x
	a.startY = y
}

func (a *adapterImpl) PointerUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.down = ButtonNone
	a.startX = 0
	a.startY = 0
}

func (a *adapterImpl) Wheel(dx, dy float32, mods Modifier) {
	a.mu.Lock()
	defer a.mu.Unlock()

	nx := dx / a.width
	ny := dy / a.height
	switch {
	case mods.Has(common.ModShift):
		a.sink.Push(Intent{Kind: IntentPan, DX: nx * WheelPanGain, DY: ny * WheelPanGain})
	case mods.Has(common.ModControl):
		a.sink.Push(Intent{Kind: IntentZoom, Factor: 1 + ny})
	default:
		a.sink.Push(Intent{Kind: IntentOrbit, DX: nx, DY: ny})
	}
}

func (a *adapterImpl) TouchStart(touches []Touch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch len(touches) {
	case 1:
		a.startX, a.startY = touches[0].X, touches[0].Y
		a.touchStarted = true
	case 2:
		a.startX, a.startY = touches[0].X, touches[0].Y
		a.altX, a.altY = touches[1].X, touches[1].Y
		a.lastSumX = touches[0].X + touches[1].X
		a.lastSumY = touches[0].Y + touches[1].Y
		a.touchStarted = true
	}
}

func (a *adapterImpl) TouchMove(touches []Touch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch len(touches) {
	case 1:
		if !a.touchStarted {
			return
		}
		t := touches[0]
		dx := (a.startX - t.X) / a.width * DragGain
		dy := (a.startY - t.Y) / a.height * DragGain
		a.sink.Push(Intent{Kind: IntentOrbit, DX: dx, DY: dy})
		a.startX, a.startY = t.X, t.Y
	case 2:
		t0, t1 := touches[0], touches[1]
		sumX := t0.X + t1.X
		sumY := t0.Y + t1.Y
		dcx := (a.lastSumX - sumX) / (a.width * 2)
		dcy := (a.lastSumY - sumY) / (a.height * 2)
		a.sink.Push(Intent{Kind: IntentPan, DX: dcx * PinchPanGain, DY: dcy * PinchPanGain})

		prev := hypot(a.startX-a.altX, a.startY-a.altY)
		cur := hypot(t0.X-t1.X, t0.Y-t1.Y)
		if cur > 0 {
			a.sink.Push(Intent{Kind: IntentZoom, Factor: prev / cur})
		}

		a.startX, a.startY = t0.X, t0.Y
		a.altX, a.altY = t1.X, t1.Y
		a.lastSumX, a.lastSumY = sumX, sumY
	}
}

func (a *adapterImpl) TouchEnd(touches []Touch) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touchStarted = false
	a.startX = 0
	a.startY = 0
}

func hypot(x, y float32) float32 {
	return float32(math.Hypot(float64(x), float64(y)))
}
