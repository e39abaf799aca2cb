package splat

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builderImpl)

// WithSplatsPerRow sets the maximum number of splats per texture row.
// Values <= 0 keep DefaultSplatsPerRow.
//
// Parameters:
//   - n: splats per row
//
// Returns:
//   - BuilderOption: functional option to set the row cap
func WithSplatsPerRow(n int) BuilderOption {
	return func(b *builderImpl) {
		if n > 0 {
			b.splatsPerRow = n
		}
	}
}

// WithSurfels flattens each splat along its smallest scale axis.
//
// Parameters:
//   - enabled: true to convert splats to surfels
//
// Returns:
//   - BuilderOption: functional option to set surfel conversion
func WithSurfels(enabled bool) BuilderOption {
	return func(b *builderImpl) {
		b.surfels = enabled
	}
}

// WithWorkers sets the number of goroutines used to decode records. Values <= 1 decode on
// the calling goroutine.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - BuilderOption: functional option to set the worker count
func WithWorkers(n int) BuilderOption {
	return func(b *builderImpl) {
		b.workers = max(n, 1)
	}
}
