package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-splat/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by calls made after Release.
var ErrReleased = errors.New("renderer: released")

// Surface is the presentation target of the renderer, usually the window.
type Surface interface {
	// SurfaceDescriptor returns the platform surface descriptor for WebGPU surface creation.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	// Width returns the drawable width in pixels.
	Width() int
	// Height returns the drawable height in pixels.
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	shader         shader.Shader
	validateShader bool
	pipeline       pipeline.Pipeline

	splatCount int
	released   bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer draws a packed splat buffer as instanced quads.
//
// Each frame uploads the 96-byte frame uniform, clears color to transparent black and depth to 1,
// and issues one draw of 4 vertices per splat with depth test Less and blending off.
type Renderer interface {
	// UploadSplats replaces the splat texture with the packed buffer.
	// The texture is RGBA32Float, Width x Height texels.
	//
	// Parameters:
	//   - buf: the packed buffer
	//
	// Returns:
	//   - error: an error if texture or bind group creation fails
	UploadSplats(buf *splat.PackedBuffer) error

	// SplatCount returns the number of instances drawn per frame.
	//
	// Returns:
	//   - int: the uploaded record count
	SplatCount() int

	// Resize configures the surface and depth target for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for the new
	// mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Render draws one frame with the given uniforms and presents it.
	//
	// Parameters:
	//   - frame: the camera uniforms for this frame
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	Render(frame camera.GPUFrameUniform) error

	// Release frees every GPU resource. The renderer cannot be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to surface.
// Adapter and device acquisition panic on failure, matching the rest of the engine's GPU bring-up.
// Shader validation and pipeline creation failures are returned.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., BackendTypeWGPU)
//   - surface: the presentation target, typically the window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: shader validation or pipeline creation error
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		backendType:    backendType,
		validateShader: true,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	if r.shader == nil {
		r.shader = shader.NewSplatShader()
	}
	if r.validateShader {
		if err := checkShader(r.shader); err != nil {
			return nil, err
		}
	}

	msaa := MSAAOff
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(surface.Width(), surface.Height())

	r.pipeline = pipeline.NewPipeline(r.shader.Key(), r.shader)
	if err := r.backend.RegisterRenderPipeline(r.pipeline); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to create %s pipeline: %w", r.shader.Key(), err)
	}
	common.Logger().Info("renderer: ready",
		"shader", r.shader.Key(),
		"size", [2]int{surface.Width(), surface.Height()},
		"msaa", uint32(msaa))
	return r, nil
}

// checkShader validates s with naga. Diagnostics about naga features that are not implemented
// yet are logged rather than returned because the wgpu compiler has the final say.
func checkShader(s shader.Shader) error {
	err := s.Validate()
	if err == nil {
		return nil
	}
	if errors.Is(err, shader.ErrMissingEntryPoint) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		common.Logger().Warn("renderer: shader validation skipped", "shader", s.Key(), "reason", msg)
		return nil
	}
	return err
}

func (r *renderer) UploadSplats(buf *splat.PackedBuffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	if buf == nil {
		return errors.New("renderer: nil splat buffer")
	}
	if err := r.backend.UploadSplatTexture(r.pipeline, buf.Staging()); err != nil {
		return fmt.Errorf("failed to upload %d splats: %w", buf.Count, err)
	}
	r.splatCount = buf.Count
	common.Logger().Debug("renderer: uploaded splats", "count", buf.Count, "texture", [2]int{buf.Width, buf.Height})
	return nil
}

func (r *renderer) SplatCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.splatCount
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Render(frame camera.GPUFrameUniform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}

	r.backend.WriteFrameUniform(frame.Marshal())
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.backend.DrawSplats(r.pipeline, uint32(r.splatCount))
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.pipeline.Release()
	r.backend.Release()
}
