package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	intrinsics       Intrinsics
	projection       mgl32.Mat4
	updateResolution bool

	controller OrbitController
}

// Camera pairs the intrinsics of a pinhole camera with an OrbitController and produces the
// per-frame uniform consumed by the splat shader.
type Camera interface {
	// Intrinsics returns the current intrinsics.
	//
	// Returns:
	//   - Intrinsics: the camera intrinsics
	Intrinsics() Intrinsics

	// Projection returns the projection matrix for the current intrinsics.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major projection matrix
	Projection() mgl32.Mat4

	// Controller returns the attached orbit controller.
	//
	// Returns:
	//   - OrbitController: the controller
	Controller() OrbitController

	// SetViewport reacts to a new surface size. When resolution tracking is enabled the
	// intrinsics follow the surface and the projection is rebuilt; otherwise the call is a no-op.
	// The controller is never touched.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - bool: true if the projection changed
	SetViewport(width, height int) bool

	// Changed reports whether the controller has an unread view matrix.
	Changed() bool

	// FrameUniform consumes the controller's view matrix and builds the shader uniform.
	//
	// Returns:
	//   - GPUFrameUniform: the uniform for this frame
	FrameUniform() GPUFrameUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with DefaultIntrinsics, resolution tracking enabled, and a default
// OrbitController.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:               &sync.Mutex{},
		intrinsics:       DefaultIntrinsics(),
		updateResolution: true,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewOrbitController()
	}
	c.projection = ProjectionMatrix(c.intrinsics)
	return c
}

func (c *cameraImpl) Intrinsics() Intrinsics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intrinsics
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Controller() OrbitController {
	return c.controller
}

func (c *cameraImpl) SetViewport(width, height int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.updateResolution || width <= 0 || height <= 0 {
		return false
	}
	if width == c.intrinsics.Width && height == c.intrinsics.Height {
		return false
	}
	c.intrinsics = c.intrinsics.Resize(width, height)
	c.projection = ProjectionMatrix(c.intrinsics)
	return true
}

func (c *cameraImpl) Changed() bool {
	return c.controller.WasChanged()
}

func (c *cameraImpl) FrameUniform() GPUFrameUniform {
	view := common.NegateZRow(c.controller.ViewMatrix())

	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUFrameUniform{
		ProjView: c.projection.Mul4(view),
		DepthRow: common.ViewDepthRow(view),
		HalfWH:   c.intrinsics.HalfSize(),
		Near:     c.intrinsics.Near,
		Far:      c.intrinsics.Far,
	}
}
