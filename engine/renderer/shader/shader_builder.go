package shader

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithPrelude prepends shared WGSL definitions, such as uniform structs, to the shader body.
//
// Parameters:
//   - sources: WGSL snippets joined in order before the body
//
// Returns:
//   - ShaderBuilderOption: a function that applies the prelude option to a shader
func WithPrelude(sources ...string) ShaderBuilderOption {
	return func(s *shader) {
		s.prelude = append(s.prelude, sources...)
	}
}
