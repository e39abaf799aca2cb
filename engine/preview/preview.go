package preview

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

// DefaultAlphaCutoff is the opacity below which a splat center is not drawn, the same
// threshold the splat shader discards at.
const DefaultAlphaCutoff = 0.5

// Rasterizer renders a packed buffer on the CPU as depth-tested disks, one per splat.
// The image is a stand-in for the GPU frame when no window or adapter is available.
type Rasterizer interface {
	// Render draws buf as seen through cam. The camera's view matrix is consumed.
	//
	// Parameters:
	//   - buf: the packed splats
	//   - cam: the camera providing projection and view
	//
	// Returns:
	//   - *image.NRGBA: the frame, transparent where nothing was drawn
	//   - error: an error if buf is empty or the output size is invalid
	Render(buf *splat.PackedBuffer, cam camera.Camera) (*image.NRGBA, error)
}

type rasterizerImpl struct {
	mu *sync.Mutex

	width       int
	height      int
	supersample int
	alphaCutoff float32
	minRadius   float32
}

var _ Rasterizer = &rasterizerImpl{}

// NewRasterizer creates a Rasterizer. The output size defaults to the camera resolution.
//
// Parameters:
//   - options: functional options to configure the rasterizer
//
// Returns:
//   - Rasterizer: the newly created rasterizer
func NewRasterizer(options ...RasterizerBuilderOption) Rasterizer {
	r := &rasterizerImpl{
		mu:          &sync.Mutex{},
		supersample: 1,
		alphaCutoff: DefaultAlphaCutoff,
		minRadius:   0.5,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// visibleSigmas is the radius, in standard deviations, inside which a splat of opacity a keeps
// a*exp(-r^2/2) above the alpha cutoff.
func visibleSigmas(a, cutoff float32) float32 {
	ratio := float64(a / cutoff)
	if ratio <= 1 {
		return 0
	}
	return float32(math.Sqrt(2 * math.Log(ratio)))
}

func (r *rasterizerImpl) Render(buf *splat.PackedBuffer, cam camera.Camera) (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buf == nil || buf.Count == 0 {
		return nil, errors.New("preview: empty splat buffer")
	}
	in := cam.Intrinsics()
	width, height := common.Coalesce(r.width, in.Width), common.Coalesce(r.height, in.Height)
	if width <= 0 || height <= 0 {
		return nil, errors.New("preview: output size must be positive")
	}

	start := time.Now()
	ss := max(r.supersample, 1)
	sw, sh := width*ss, height*ss
	focal := in.FocalX * float32(sw) / float32(in.Width)
	maxRadius := float32(max(sw, sh)) / 4

	frame := cam.FrameUniform()
	img := image.NewNRGBA(image.Rect(0, 0, sw, sh))
	zbuf := make([]float32, sw*sh)
	for i := range zbuf {
		zbuf[i] = float32(math.Inf(1))
	}

	drawn := 0
	for i := range buf.Count {
		b := buf.Splat(i)
		rgba := b.Color()
		sigmas := visibleSigmas(rgba[3], r.alphaCutoff)
		if sigmas == 0 {
			continue
		}

		p := b.Center().Vec4(1)
		depth := frame.DepthRow.Dot(p)
		if depth < frame.Near || depth > frame.Far {
			continue
		}
		clip := frame.ProjView.Mul4x1(p)
		if clip[3] <= 0 {
			continue
		}
		px := (clip[0]/clip[3]*0.5 + 0.5) * float32(sw)
		py := (0.5 - clip[1]/clip[3]*0.5) * float32(sh)
		radius := common.Clamp(focal*b.Extent()*sigmas/depth, r.minRadius*float32(ss), maxRadius)

		c := color.NRGBA{
			R: toByte(rgba[0]),
			G: toByte(rgba[1]),
			B: toByte(rgba[2]),
			A: 255,
		}
		if fillDisk(img, zbuf, px, py, radius, depth, c) {
			drawn++
		}
	}

	out := img
	if ss > 1 {
		out = Downsample(img, width, height)
	}
	common.Logger().Debug("preview: rendered",
		"splats", buf.Count,
		"drawn", drawn,
		"size", [2]int{width, height},
		"supersample", ss,
		"elapsed", time.Since(start))
	return out, nil
}

// fillDisk writes c into every pixel whose center lies within radius of (cx, cy) and whose
// stored depth is farther than depth. Reports whether any pixel was written.
func fillDisk(img *image.NRGBA, zbuf []float32, cx, cy, radius, depth float32, c color.NRGBA) bool {
	b := img.Bounds()
	x0 := max(int(math.Floor(float64(cx-radius))), b.Min.X)
	x1 := min(int(math.Ceil(float64(cx+radius))), b.Max.X-1)
	y0 := max(int(math.Floor(float64(cy-radius))), b.Min.Y)
	y1 := min(int(math.Ceil(float64(cy+radius))), b.Max.Y-1)

	r2 := radius * radius
	wrote := false
	for y := y0; y <= y1; y++ {
		dy := float32(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float32(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			zi := y*b.Dx() + x
			if depth >= zbuf[zi] {
				continue
			}
			zbuf[zi] = depth
			img.SetNRGBA(x, y, c)
			wrote = true
		}
	}
	return wrote
}

func toByte(v float32) uint8 {
	return uint8(common.Clamp(v, 0, 1)*255 + 0.5)
}
