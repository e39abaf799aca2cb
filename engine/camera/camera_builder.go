package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithIntrinsics sets the initial intrinsics.
//
// Parameters:
//   - in: the camera intrinsics
//
// Returns:
//   - CameraBuilderOption: a function that sets the intrinsics
func WithIntrinsics(in Intrinsics) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.intrinsics = in
	}
}

// WithController attaches an existing OrbitController.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller
func WithController(ctrl OrbitController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

// WithResolutionTracking controls whether SetViewport resizes the intrinsics. When disabled the
// camera keeps its configured resolution regardless of the surface size.
//
// Parameters:
//   - enabled: true to follow the surface size
//
// Returns:
//   - CameraBuilderOption: a function that sets resolution tracking
func WithResolutionTracking(enabled bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.updateResolution = enabled
	}
}
