package preview

// RasterizerBuilderOption is a functional option for configuring a Rasterizer.
type RasterizerBuilderOption func(*rasterizerImpl)

// WithSize sets the output size. Zero values follow the camera resolution.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithSize(width, height int) RasterizerBuilderOption {
	return func(r *rasterizerImpl) {
		r.width = width
		r.height = height
	}
}

// WithSupersample renders at factor times the output size and downsamples the result.
//
// Parameters:
//   - factor: the supersampling factor, values below 1 disable supersampling
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithSupersample(factor int) RasterizerBuilderOption {
	return func(r *rasterizerImpl) {
		r.supersample = max(factor, 1)
	}
}

// WithAlphaCutoff sets the opacity threshold below which splats are skipped.
//
// Parameters:
//   - cutoff: the threshold in (0, 1]
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithAlphaCutoff(cutoff float32) RasterizerBuilderOption {
	return func(r *rasterizerImpl) {
		if cutoff > 0 && cutoff <= 1 {
			r.alphaCutoff = cutoff
		}
	}
}

// WithMinRadius sets the smallest disk radius in output pixels.
//
// Parameters:
//   - px: the radius in pixels
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithMinRadius(px float32) RasterizerBuilderOption {
	return func(r *rasterizerImpl) {
		if px > 0 {
			r.minRadius = px
		}
	}
}
