package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if abs32(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func matNear(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if abs32(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestNewOrbitControllerDefaults(t *testing.T) {
	oc := NewOrbitController()

	if !oc.WasChanged() {
		t.Errorf("WasChanged() = false after construction, want true")
	}
	if got := oc.Position(); !vecNear(got, mgl32.Vec3{6, 0, 0.5}, 1e-4) {
		t.Errorf("Position() = %v, want (6, 0, 0.5)", got)
	}
	if got := oc.Focus(); got != (mgl32.Vec3{0, 0, -1.25}) {
		t.Errorf("Focus() = %v, want (0, 0, -1.25)", got)
	}

	wantPitch := -math.Asin(1.75 / math.Sqrt(36+1.75*1.75))
	if math.Abs(float64(oc.Pitch())-wantPitch) > 1e-4 {
		t.Errorf("Pitch() = %v, want %v", oc.Pitch(), wantPitch)
	}
}

func TestViewMatrixConsumesDirtyFlag(t *testing.T) {
	oc := NewOrbitController()

	first := oc.ViewMatrix()
	if oc.WasChanged() {
		t.Fatalf("WasChanged() = true after ViewMatrix(), want false")
	}
	if second := oc.ViewMatrix(); second != first {
		t.Errorf("second ViewMatrix() = %v, want %v", second, first)
	}

	oc.Orbit(0.1, 0)
	if oc.WasChanged() {
		t.Errorf("WasChanged() = true before UpdateViewMatrix(), want false")
	}
	oc.UpdateViewMatrix()
	if !oc.WasChanged() {
		t.Errorf("WasChanged() = false after UpdateViewMatrix(), want true")
	}
}

func TestOrbitPitchStaysBounded(t *testing.T) {
	for _, dir := range []float32{1, -1} {
		oc := NewOrbitController()
		prev := oc.Pitch()
		for i := range 60 {
			oc.Orbit(0.05, 10*dir)
			oc.UpdateViewMatrix()

			p := oc.Pitch()
			if abs32(p) > oc.MaxPitch() {
				t.Fatalf("dir %v step %d: |Pitch()| = %v exceeds %v", dir, i, abs32(p), oc.MaxPitch())
			}
			if (p-prev)*dir < 0 {
				t.Fatalf("dir %v step %d: pitch moved away from the bound: %v -> %v", dir, i, prev, p)
			}
			prev = p

			toCamera := oc.Position().Sub(oc.Focus()).Normalize()
			actual := -math.Asin(float64(toCamera.Dot(oc.GlobalUp())))
			if math.Abs(actual-float64(p)) > 1e-3 {
				t.Fatalf("dir %v step %d: tracked pitch %v, actual %v", dir, i, p, actual)
			}
		}
		if abs32(prev) < oc.MaxPitch()-1e-3 {
			t.Errorf("dir %v: pitch %v did not approach the bound %v", dir, prev, oc.MaxPitch())
		}
	}
}

func TestSoftClamp(t *testing.T) {
	tests := []struct {
		name                     string
		current, proposed, bound float32
		want                     float32
	}{
		{"inside", 0.2, 0.5, 1, 0.5},
		{"at bound", 0.5, 1, 1, 1},
		{"above moves halfway from current", 0.5, 10, 1, 0.75},
		{"below moves halfway from current", -0.5, -10, 1, -0.75},
		{"does not depend on proposal size", 0.5, 1.01, 1, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := softClamp(tt.current, tt.proposed, tt.bound); got != tt.want {
				t.Errorf("softClamp(%v, %v, %v) = %v, want %v", tt.current, tt.proposed, tt.bound, got, tt.want)
			}
		})
	}
}

func TestOrbitYawPreservesRadiusAndHeight(t *testing.T) {
	oc := NewOrbitController()
	radius := oc.Radius()

	oc.Orbit(math.Pi/2, 0)

	if got := oc.Position(); !vecNear(got, mgl32.Vec3{0, 6, 0.5}, 1e-4) {
		t.Errorf("Position() = %v, want (0, 6, 0.5)", got)
	}
	if math.Abs(float64(oc.Radius()-radius)) > 1e-4 {
		t.Errorf("Radius() = %v, want %v", oc.Radius(), radius)
	}
}

func TestOrbitGimbalGuard(t *testing.T) {
	oc := NewOrbitController(WithMaxPitch(math.Pi / 2))
	pitch := oc.Pitch()
	pos := oc.Position()

	// Pitching to about -1.53 rad puts the view within 0.99 of the up axis.
	oc.Orbit(0, -1.25)

	if oc.Pitch() != pitch {
		t.Errorf("Pitch() = %v, want unchanged %v", oc.Pitch(), pitch)
	}
	if got := oc.Position(); !vecNear(got, pos, 1e-4) {
		t.Errorf("Position() = %v, want unchanged %v", got, pos)
	}

	oc.Orbit(0, -0.5)
	if oc.Pitch() >= pitch {
		t.Errorf("Pitch() = %v, want below %v after an allowed step", oc.Pitch(), pitch)
	}
}

func TestZoomRoundTrip(t *testing.T) {
	oc := NewOrbitController()
	start := oc.Position()

	oc.Zoom(2)
	if math.Abs(float64(oc.Radius())-2*math.Sqrt(36+1.75*1.75)) > 1e-4 {
		t.Errorf("Radius() after Zoom(2) = %v", oc.Radius())
	}
	oc.Zoom(0.5)
	if got := oc.Position(); !vecNear(got, start, 1e-5) {
		t.Errorf("Position() after Zoom(2), Zoom(0.5) = %v, want %v", got, start)
	}

	oc.Zoom(0)
	oc.Zoom(-1)
	oc.Zoom(float32(math.NaN()))
	if got := oc.Position(); !vecNear(got, start, 1e-5) {
		t.Errorf("Position() after invalid zooms = %v, want %v", got, start)
	}
}

func TestPanMovesFocusAndPosition(t *testing.T) {
	oc := NewOrbitController()
	focus, pos := oc.Focus(), oc.Position()

	oc.Pan(1, 0)

	if got := oc.Focus(); !vecNear(got, focus.Add(mgl32.Vec3{0, 1, 0}), 1e-5) {
		t.Errorf("Focus() = %v, want %v", got, focus.Add(mgl32.Vec3{0, 1, 0}))
	}
	if got := oc.Position(); !vecNear(got, pos.Add(mgl32.Vec3{0, 1, 0}), 1e-5) {
		t.Errorf("Position() = %v, want %v", got, pos.Add(mgl32.Vec3{0, 1, 0}))
	}

	oc.UpdateViewMatrix()
	before := oc.Focus()
	oc.Pan(0, 1)
	moved := oc.Focus().Sub(before)
	if moved.Z() >= 0 {
		t.Errorf("Pan(0, 1) moved focus by %v, want a downward move", moved)
	}
	if math.Abs(float64(moved.Len())-1) > 1e-5 {
		t.Errorf("Pan(0, 1) moved focus by %v, want length 1", moved.Len())
	}
}

func TestReset(t *testing.T) {
	oc := NewOrbitController()
	start := oc.Position()
	oc.ViewMatrix()

	oc.Orbit(1, 0.3)
	oc.Pan(0.5, 0.5)
	oc.Zoom(3)
	oc.Reset()

	if got := oc.Position(); !vecNear(got, start, 1e-5) {
		t.Errorf("Position() after Reset() = %v, want %v", got, start)
	}
	if !oc.WasChanged() {
		t.Errorf("WasChanged() = false after Reset(), want true")
	}
}

func TestInitialView(t *testing.T) {
	eye := mgl32.Vec3{1, 2, 3}
	focus := mgl32.Vec3{0, 0, 0}
	view := mgl32.LookAtV(eye, focus, mgl32.Vec3{0, 0, 1})

	oc := NewOrbitController(WithInitialView(view), WithFocus(focus))
	if got := oc.Position(); !vecNear(got, eye, 1e-4) {
		t.Errorf("Position() = %v, want %v", got, eye)
	}
	if got := oc.ViewMatrix(); !matNear(got, view, 1e-4) {
		t.Errorf("ViewMatrix() = %v, want %v", got, view)
	}
}
