package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitControllerImpl)

// WithEye sets the initial camera position. The initial view looks from eye at the focus.
// Ignored when WithInitialView is given.
//
// Parameters:
//   - eye: world-space camera position
//
// Returns:
//   - OrbitControllerOption: functional option to set the eye
func WithEye(eye mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.eye = eye
	}
}

// WithInitialView sets the initial world to camera matrix. The camera position is taken from
// its inverse.
//
// Parameters:
//   - view: column-major view matrix
//
// Returns:
//   - OrbitControllerOption: functional option to set the initial view
func WithInitialView(view mgl32.Mat4) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.initialView = &view
	}
}

// WithFocus sets the point the camera orbits around.
//
// Parameters:
//   - focus: world-space focus point
//
// Returns:
//   - OrbitControllerOption: functional option to set the focus
func WithFocus(focus mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.focus = focus
	}
}

// WithGlobalUp sets the world up axis. Scenes stored upside down use (0, 0, -1).
//
// Parameters:
//   - up: world up axis
//
// Returns:
//   - OrbitControllerOption: functional option to set the up axis
func WithGlobalUp(up mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.globalUp = up
	}
}

// WithMaxPitch sets the soft pitch bound in radians.
//
// Parameters:
//   - radians: the bound, applied symmetrically
//
// Returns:
//   - OrbitControllerOption: functional option to set the pitch bound
func WithMaxPitch(radians float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.maxPitch = radians
	}
}

// WithGimbalLimit sets the largest allowed |dot(direction, up)| after a pitch step.
//
// Parameters:
//   - limit: a value in (0, 1)
//
// Returns:
//   - OrbitControllerOption: functional option to set the gimbal guard
func WithGimbalLimit(limit float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.gimbalLimit = limit
	}
}
