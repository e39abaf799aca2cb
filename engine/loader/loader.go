package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

// Scene is a decoded splat file ready for upload.
type Scene struct {
	Name   string
	Header *splat.Header
	Buffer *splat.PackedBuffer
	// Size is the byte size of the fetched file.
	Size int
}

// SplatUploader receives packed buffers once they are decoded. The renderer satisfies it.
type SplatUploader interface {
	UploadSplats(buf *splat.PackedBuffer) error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	uploader SplatUploader
	progress ProgressFunc

	headerOptions []splat.HeaderOption
	builder       splat.Builder

	sceneCache map[string]*Scene
}

// Loader fetches, decodes and caches splat scenes.
type Loader interface {
	// Load fetches a scene from a path or URL and caches it by location.
	// If the scene is already cached the cached version is returned.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - location: a file path or an http(s)/ws(s) URL
	//
	// Returns:
	//   - *Scene: the decoded scene
	//   - error: error if fetching or decoding fails
	Load(ctx context.Context, location string) (*Scene, error)

	// LoadSource fetches a scene from an explicit Source and caches it by the source name.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - src: the byte source
	//
	// Returns:
	//   - *Scene: the decoded scene
	//   - error: error if fetching or decoding fails
	LoadSource(ctx context.Context, src Source) (*Scene, error)

	// LoadBytes decodes an in-memory file and caches it by name.
	//
	// Parameters:
	//   - name: the cache key
	//   - data: the complete file bytes
	//
	// Returns:
	//   - *Scene: the decoded scene
	//   - error: error if decoding fails
	LoadBytes(name string, data []byte) (*Scene, error)

	// Get retrieves a cached scene by name. Returns nil if not found.
	Get(name string) *Scene

	// Scenes returns a copy of the scene cache.
	Scenes() map[string]*Scene

	// Evict removes a scene from the cache.
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		sceneCache: make(map[string]*Scene),
	}
	for _, option := range options {
		option(l)
	}
	if l.builder == nil {
		l.builder = splat.NewBuilder()
	}
	return l
}

func (l *loader) Load(ctx context.Context, location string) (*Scene, error) {
	if cached := l.Get(location); cached != nil {
		return cached, nil
	}
	src, err := ResolveSource(location)
	if err != nil {
		return nil, err
	}
	return l.load(ctx, location, src)
}

func (l *loader) LoadSource(ctx context.Context, src Source) (*Scene, error) {
	if cached := l.Get(src.Name()); cached != nil {
		return cached, nil
	}
	return l.load(ctx, src.Name(), src)
}

func (l *loader) load(ctx context.Context, key string, src Source) (*Scene, error) {
	start := time.Now()
	data, err := Fetch(ctx, src, l.progress)
	if err != nil {
		return nil, err
	}
	common.Logger().Info("loader: fetched scene", "source", key, "bytes", len(data), "elapsed", time.Since(start))
	return l.LoadBytes(key, data)
}

func (l *loader) LoadBytes(name string, data []byte) (*Scene, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	start := time.Now()
	h, err := splat.ParseHeader(data, l.headerOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for _, fb := range h.Fallbacks {
		common.Logger().Warn("loader: unknown property type read as int8", "scene", name, "property", fb)
	}
	buf, err := l.builder.Build(h, data[h.DataOffset:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if buf.Degenerate > 0 {
		common.Logger().Warn("loader: degenerate rotations replaced by identity", "scene", name, "count", buf.Degenerate)
	}

	if l.uploader != nil {
		if err := l.uploader.UploadSplats(buf); err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", name, err)
		}
	}

	scene := &Scene{Name: name, Header: h, Buffer: buf, Size: len(data)}
	common.Logger().Info("loader: decoded scene",
		"scene", name,
		"splats", h.Count,
		"stride", h.Stride,
		"texture", [2]int{buf.Width, buf.Height},
		"elapsed", time.Since(start))

	l.mu.Lock()
	l.sceneCache[name] = scene
	l.mu.Unlock()
	return scene, nil
}

func (l *loader) Get(name string) *Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[name]
}

func (l *loader) Scenes() map[string]*Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Scene, len(l.sceneCache))
	for k, v := range l.sceneCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	delete(l.sceneCache, name)
	l.mu.Unlock()
}
