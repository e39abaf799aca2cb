package loader

import "github.com/Carmen-Shannon/oxy-splat/engine/splat"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithUploader is an option builder that uploads every decoded scene, usually to the renderer.
//
// Parameters:
//   - u: the uploader
//
// Returns:
//   - LoaderBuilderOption: a function that applies the uploader option to a loader
func WithUploader(u SplatUploader) LoaderBuilderOption {
	return func(l *loader) {
		l.uploader = u
	}
}

// WithProgress is an option builder that sets the fetch progress callback.
//
// Parameters:
//   - fn: receives the fetch percentage
//
// Returns:
//   - LoaderBuilderOption: a function that applies the progress option to a loader
func WithProgress(fn ProgressFunc) LoaderBuilderOption {
	return func(l *loader) {
		l.progress = fn
	}
}

// WithHeaderOptions is an option builder that sets the options passed to splat.ParseHeader.
//
// Parameters:
//   - options: the header parser options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the header options to a loader
func WithHeaderOptions(options ...splat.HeaderOption) LoaderBuilderOption {
	return func(l *loader) {
		l.headerOptions = options
	}
}

// WithBuilder is an option builder that sets the packed buffer builder.
//
// Parameters:
//   - b: the builder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the builder option to a loader
func WithBuilder(b splat.Builder) LoaderBuilderOption {
	return func(l *loader) {
		l.builder = b
	}
}

// WithScene is an option builder that pre-populates the scene cache.
//
// Parameters:
//   - key: the cache key for the scene
//   - scene: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, scene *Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = scene
	}
}
