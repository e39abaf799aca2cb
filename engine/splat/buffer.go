package splat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-splat/common"
)

// DefaultSplatsPerRow caps how many splats share one texture row.
const DefaultSplatsPerRow = 2048

// PackedBuffer is the GPU-ready splat texture: Height rows of SplatsPerRow splats, each splat
// spanning TexelsPerSplat RGBA32Float texels. Slots past Count are zero.
type PackedBuffer struct {
	Data         []float32
	Width        int // texels per row
	Height       int // rows
	SplatsPerRow int
	Count        int
	// Degenerate counts records whose rotation was replaced with identity.
	Degenerate int
}

// Splat returns the packed block of splat i.
func (p *PackedBuffer) Splat(i int) TexelBlock {
	var b TexelBlock
	copy(b[:], p.Data[i*FloatsPerSplat:(i+1)*FloatsPerSplat])
	return b
}

// Staging returns the buffer as texture staging data for GPU upload.
//
// Returns:
//   - common.FloatTextureStagingData: a view over Data with the texture dimensions
func (p *PackedBuffer) Staging() common.FloatTextureStagingData {
	return common.FloatTextureStagingData{
		Texels: p.Data,
		Width:  uint32(p.Width),
		Height: uint32(p.Height),
	}
}

// TextureLayout computes the packed texture dimensions for count splats.
//
// Parameters:
//   - count: number of splats, must be positive
//   - rowCap: maximum splats per row, must be positive
//
// Returns:
//   - splatsPerRow: min(rowCap, count)
//   - width: splatsPerRow * TexelsPerSplat
//   - height: ceil(count / splatsPerRow)
func TextureLayout(count, rowCap int) (splatsPerRow, width, height int) {
	splatsPerRow = min(rowCap, count)
	width = splatsPerRow * TexelsPerSplat
	height = (count + splatsPerRow - 1) / splatsPerRow
	return
}

// Builder turns a header and its body into a PackedBuffer.
type Builder interface {
	// Build decodes every record and packs it in file order.
	// Either the whole buffer is returned or an error; never a partial buffer.
	//
	// Parameters:
	//   - h: the parsed header
	//   - body: the bytes following the header
	//
	// Returns:
	//   - *PackedBuffer: the packed splats
	//   - error: a *TruncatedBodyError or *UnknownPropertyError
	Build(h *Header, body []byte) (*PackedBuffer, error)

	// SplatsPerRow returns the configured row cap.
	SplatsPerRow() int

	// Surfels reports whether the smallest scale axis is flattened.
	Surfels() bool

	// Workers returns the number of parallel decode workers.
	Workers() int
}

type builderImpl struct {
	mu *sync.Mutex

	splatsPerRow int
	surfels      bool
	workers      int

	pool worker.DynamicWorkerPool
}

var _ Builder = &builderImpl{}

// NewBuilder creates a Builder. By default it packs sequentially with DefaultSplatsPerRow.
//
// Parameters:
//   - options: functional options to configure the builder
//
// Returns:
//   - Builder: the newly created builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builderImpl{
		mu:           &sync.Mutex{},
		splatsPerRow: DefaultSplatsPerRow,
		workers:      1,
	}
	for _, option := range options {
		option(b)
	}
	if b.workers > 1 {
		b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	}
	return b
}

func (b *builderImpl) SplatsPerRow() int {
	return b.splatsPerRow
}

func (b *builderImpl) Surfels() bool {
	return b.surfels
}

func (b *builderImpl) Workers() int {
	return b.workers
}

func (b *builderImpl) Build(h *Header, body []byte) (*PackedBuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dec, err := NewDecoder(h, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	spr, width, height := TextureLayout(h.Count, b.splatsPerRow)
	out := &PackedBuffer{
		Data:         make([]float32, height*spr*FloatsPerSplat),
		Width:        width,
		Height:       height,
		SplatsPerRow: spr,
		Count:        h.Count,
	}

	if b.pool == nil || h.Count < 2*b.workers {
		out.Degenerate = packRange(out.Data, dec, 0, h.Count, b.surfels)
	} else {
		out.Degenerate = b.packParallel(out.Data, dec)
	}

	common.Logger().Debug("splat: packed buffer",
		"count", out.Count,
		"texture", [2]int{out.Width, out.Height},
		"degenerate", out.Degenerate,
		"workers", b.workers,
		"elapsed", time.Since(start))
	return out, nil
}

// packParallel splits the records into contiguous ranges, one task per worker. Each task
// writes a disjoint slice of dst, so the result matches the sequential pass exactly.
func (b *builderImpl) packParallel(dst []float32, dec *Decoder) int {
	count := dec.Count()
	chunk := (count + b.workers - 1) / b.workers

	var degenerate atomic.Int64
	var wg sync.WaitGroup
	for id, lo := 0, 0; lo < count; id, lo = id+1, lo+chunk {
		hi := min(lo+chunk, count)
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				degenerate.Add(int64(packRange(dst, dec, lo, hi, b.surfels)))
				return nil, nil
			},
		})
	}
	wg.Wait()
	return int(degenerate.Load())
}

// packRange packs records [lo, hi) and returns how many had a degenerate rotation.
func packRange(dst []float32, dec *Decoder, lo, hi int, surfels bool) int {
	degenerate := 0
	for i := lo; i < hi; i++ {
		if TransformInto(dst[i*FloatsPerSplat:], dec.Record(i), surfels) {
			degenerate++
		}
	}
	return degenerate
}

// Decode parses the header at the start of data and packs the body that follows it.
//
// Parameters:
//   - data: the complete file bytes
//   - headerOptions: options for ParseHeader
//   - builderOptions: options for NewBuilder
//
// Returns:
//   - *Header: the parsed header
//   - *PackedBuffer: the packed splats
//   - error: any header, layout or body error
func Decode(data []byte, headerOptions []HeaderOption, builderOptions ...BuilderOption) (*Header, *PackedBuffer, error) {
	h, err := ParseHeader(data, headerOptions...)
	if err != nil {
		return nil, nil, err
	}
	buf, err := NewBuilder(builderOptions...).Build(h, data[h.DataOffset:])
	if err != nil {
		return nil, nil, err
	}
	return h, buf, nil
}
