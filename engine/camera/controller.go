package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxPitch is the pitch bound of the orbit controller, pi/2.5.
const DefaultMaxPitch = math.Pi / 2.5

// DefaultGimbalLimit is the largest |dot(direction, globalUp)| a pitch step may produce.
const DefaultGimbalLimit = 0.99

// OrbitController moves a camera around a focus point and tracks whether its view matrix
// changed since it was last read.
//
// Every mutation leaves the view matrix stale until UpdateViewMatrix is called, which rebuilds
// it and marks it dirty. ViewMatrix returns the matrix and clears the dirty flag, so a render
// loop can skip frames in which nothing moved.
type OrbitController interface {
	// Orbit yaws the camera by dx radians about the global up axis and pitches it by dy radians
	// about its local right axis. The pitch is softly bounded to [-MaxPitch, MaxPitch]: a proposal
	// past the bound moves the pitch to 0.5*current + 0.5*bound, not 0.5*proposal + 0.5*bound, so
	// the pitch approaches the bound without reaching it however large dy is. The pitch step is
	// dropped if it would bring the view direction within the gimbal limit of the up axis. The
	// focus distance is preserved.
	//
	// Parameters:
	//   - dx: yaw angle in radians
	//   - dy: proposed pitch change in radians
	Orbit(dx, dy float32)

	// Pan translates focus and position together along the local right and up axes.
	// Positive dy moves the camera down, matching screen coordinates.
	//
	// Parameters:
	//   - dx: distance along the local right axis
	//   - dy: distance along the negated local up axis
	Pan(dx, dy float32)

	// Zoom scales the focus to camera vector by factor. Values below 1 move closer.
	// Non-positive or non-finite factors are ignored.
	//
	// Parameters:
	//   - factor: the distance multiplier
	Zoom(factor float32)

	// UpdateViewMatrix rebuilds the view matrix from position, focus and global up, and marks
	// it dirty.
	UpdateViewMatrix()

	// ViewMatrix returns the current view matrix and clears the dirty flag.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major world to camera matrix
	ViewMatrix() mgl32.Mat4

	// WasChanged reports whether the view matrix changed since ViewMatrix was last called.
	WasChanged() bool

	// Reset restores the initial position, focus and pitch, and marks the view dirty.
	Reset()

	// Position returns the camera position in world space.
	Position() mgl32.Vec3

	// Focus returns the point the camera orbits around.
	Focus() mgl32.Vec3

	// GlobalUp returns the world up axis.
	GlobalUp() mgl32.Vec3

	// Pitch returns the tracked pitch in radians. Negative values look down on the focus.
	Pitch() float32

	// Radius returns the distance between position and focus.
	Radius() float32

	// MaxPitch returns the pitch bound in radians.
	MaxPitch() float32
}

type orbitControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	focus    mgl32.Vec3
	globalUp mgl32.Vec3
	pitch    float32

	matrix mgl32.Mat4
	dirty  bool

	maxPitch    float32
	gimbalLimit float32

	// construction inputs
	eye         mgl32.Vec3
	initialView *mgl32.Mat4

	initialPosition mgl32.Vec3
	initialFocus    mgl32.Vec3
	initialPitch    float32
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an orbit controller. The default camera sits at (6, 0, 0.5) looking
// at (0, 0, -1.25) with +Z up. The position is taken from the inverse of the initial view matrix
// and the initial view is marked dirty.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		mu:          &sync.Mutex{},
		eye:         mgl32.Vec3{6, 0, 0.5},
		focus:       mgl32.Vec3{0, 0, -1.25},
		globalUp:    mgl32.Vec3{0, 0, 1},
		maxPitch:    DefaultMaxPitch,
		gimbalLimit: DefaultGimbalLimit,
	}
	for _, option := range options {
		option(oc)
	}

	view := mgl32.LookAtV(oc.eye, oc.focus, oc.globalUp)
	if oc.initialView != nil {
		view = *oc.initialView
	}
	oc.position = view.Inv().Col(3).Vec3()

	toCamera := oc.position.Sub(oc.focus).Normalize()
	oc.pitch = float32(-math.Asin(clampUnit(float64(toCamera.Dot(oc.globalUp)))))

	oc.initialPosition = oc.position
	oc.initialFocus = oc.focus
	oc.initialPitch = oc.pitch

	oc.updateViewMatrix()
	return oc
}

// --- internal helpers ---

// updateViewMatrix rebuilds the matrix and marks it dirty. Caller must hold the mutex.
func (oc *orbitControllerImpl) updateViewMatrix() {
	oc.matrix = mgl32.LookAtV(oc.position, oc.focus, oc.globalUp)
	oc.dirty = true
}

// localRight returns the normalized first row of the view matrix. Caller must hold the mutex.
func (oc *orbitControllerImpl) localRight() mgl32.Vec3 {
	return normalizeOrZero(oc.matrix.Row(0).Vec3())
}

// localUp returns the normalized second row of the view matrix. Caller must hold the mutex.
func (oc *orbitControllerImpl) localUp() mgl32.Vec3 {
	return normalizeOrZero(oc.matrix.Row(1).Vec3())
}

// softClamp bounds a proposed pitch. A proposal outside [-bound, bound] moves the pitch halfway
// from its current value to the bound it crossed, so repeated pushes approach the bound without
// reaching or passing it.
func softClamp(current, proposed, bound float32) float32 {
	switch {
	case proposed > bound:
		return 0.5*current + 0.5*bound
	case proposed < -bound:
		return 0.5*current - 0.5*bound
	}
	return proposed
}

func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// --- OrbitController implementation ---

func (oc *orbitControllerImpl) Orbit(dx, dy float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	toCamera := oc.position.Sub(oc.focus)
	radius := toCamera.Len()
	if radius < 1e-12 {
		return
	}

	up := normalizeOrZero(oc.globalUp)
	yaw := mgl32.QuatRotate(dx, up)
	toCamera = yaw.Rotate(toCamera)

	clamped := softClamp(oc.pitch, oc.pitch+dy, oc.maxPitch)
	if delta := clamped - oc.pitch; delta != 0 {
		// The yaw has already turned the camera, so the right axis is turned with it.
		right := normalizeOrZero(yaw.Rotate(oc.localRight()))
		test := mgl32.QuatRotate(delta, right).Rotate(toCamera).Normalize()
		if abs32(test.Dot(up)) < oc.gimbalLimit {
			toCamera = test
			oc.pitch = clamped
		}
	}

	oc.position = oc.focus.Add(toCamera.Normalize().Mul(radius))
}

func (oc *orbitControllerImpl) Pan(dx, dy float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	move := oc.localRight().Mul(dx).Add(oc.localUp().Mul(-dy))
	oc.focus = oc.focus.Add(move)
	oc.position = oc.position.Add(move)
}

func (oc *orbitControllerImpl) Zoom(factor float32) {
	if !(factor > 0) || math.IsInf(float64(factor), 0) {
		return
	}
	oc.mu.Lock()
	defer oc.mu.Unlock()

	toCamera := oc.position.Sub(oc.focus).Mul(factor)
	oc.position = oc.focus.Add(toCamera)
}

func (oc *orbitControllerImpl) UpdateViewMatrix() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.updateViewMatrix()
}

func (oc *orbitControllerImpl) ViewMatrix() mgl32.Mat4 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dirty = false
	return oc.matrix
}

func (oc *orbitControllerImpl) WasChanged() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.dirty
}

func (oc *orbitControllerImpl) Reset() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.position = oc.initialPosition
	oc.focus = oc.initialFocus
	oc.pitch = oc.initialPitch
	oc.updateViewMatrix()
}

func (oc *orbitControllerImpl) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitControllerImpl) Focus() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.focus
}

func (oc *orbitControllerImpl) GlobalUp() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.globalUp
}

func (oc *orbitControllerImpl) Pitch() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.pitch
}

func (oc *orbitControllerImpl) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position.Sub(oc.focus).Len()
}

func (oc *orbitControllerImpl) MaxPitch() float32 {
	return oc.maxPitch
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
