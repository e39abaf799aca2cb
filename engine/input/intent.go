package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
)

// IntentKind identifies a camera operation requested by an input gesture.
type IntentKind int

const (
	// IntentOrbit rotates the camera around its focus by (DX, DY) radians.
	IntentOrbit IntentKind = iota
	// IntentPan moves focus and camera by (DX, DY) along the view plane.
	IntentPan
	// IntentZoom scales the focus distance by Factor.
	IntentZoom
	// IntentReset restores the initial camera.
	IntentReset
)

func (k IntentKind) String() string {
	switch k {
	case IntentOrbit:
		return "orbit"
	case IntentPan:
		return "pan"
	case IntentZoom:
		return "zoom"
	case IntentReset:
		return "reset"
	}
	return "unknown"
}

// Intent is one camera operation. Input handlers produce intents, the frame loop applies them.
type Intent struct {
	Kind   IntentKind
	DX, DY float32
	Factor float32
}

// Sink receives intents from an input adapter.
type Sink interface {
	Push(intent Intent)
}

// Queue buffers intents between event callbacks and the frame loop. Events may arrive from the
// window callbacks at any point; the frame loop drains the queue once per frame, so the
// controller has a single writer.
type Queue struct {
	mu      sync.Mutex
	pending []Intent
}

var _ Sink = &Queue{}

// NewQueue creates an empty intent queue.
//
// Returns:
//   - *Queue: the queue
func NewQueue() *Queue {
	return &Queue{pending: make([]Intent, 0, 16)}
}

// Push appends an intent.
func (q *Queue) Push(intent Intent) {
	q.mu.Lock()
	q.pending = append(q.pending, intent)
	q.mu.Unlock()
}

// Len returns the number of queued intents.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain applies every queued intent to ctrl in arrival order, rebuilding the view matrix after
// each one, and empties the queue.
//
// Parameters:
//   - ctrl: the controller to mutate
//
// Returns:
//   - int: the number of intents applied
func (q *Queue) Drain(ctrl camera.OrbitController) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = make([]Intent, 0, cap(batch))
	q.mu.Unlock()

	for _, in := range batch {
		Apply(ctrl, in)
	}
	return len(batch)
}

// Apply performs a single intent on ctrl and rebuilds its view matrix.
//
// Parameters:
//   - ctrl: the controller to mutate
//   - in: the intent
func Apply(ctrl camera.OrbitController, in Intent) {
	switch in.Kind {
	case IntentOrbit:
		ctrl.Orbit(in.DX, in.DY)
	case IntentPan:
		ctrl.Pan(in.DX, in.DY)
	case IntentZoom:
		ctrl.Zoom(in.Factor)
	case IntentReset:
		ctrl.Reset()
		return
	}
	ctrl.UpdateViewMatrix()
}
