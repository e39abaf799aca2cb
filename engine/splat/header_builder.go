package splat

// HeaderOption is a functional option for configuring ParseHeader.
type HeaderOption func(*headerParser)

// WithLenientTypes switches unknown property type tokens and non little-endian formats from a
// hard error to the legacy behavior: the property is read as a 1-byte signed value and the
// format line is ignored. Strict parsing is the default.
//
// Parameters:
//   - lenient: true to accept unknown types as int8
//
// Returns:
//   - HeaderOption: functional option to set the type policy
func WithLenientTypes(lenient bool) HeaderOption {
	return func(p *headerParser) {
		p.lenient = lenient
	}
}

// WithMaxHeaderSize sets how many leading bytes are scanned for the header sentinel.
// Values <= 0 keep DefaultMaxHeaderSize.
//
// Parameters:
//   - size: window size in bytes
//
// Returns:
//   - HeaderOption: functional option to set the scan window
func WithMaxHeaderSize(size int) HeaderOption {
	return func(p *headerParser) {
		if size > 0 {
			p.maxHeaderSize = size
		}
	}
}

// WithLegacyLayout reproduces the record layout of older splat loaders: property lines of every
// element add to the vertex stride, and a repeated property name resolves to its last
// occurrence. By default only vertex properties count and the first occurrence wins.
//
// Parameters:
//   - legacy: true to use the legacy layout rules
//
// Returns:
//   - HeaderOption: functional option to set the layout rules
func WithLegacyLayout(legacy bool) HeaderOption {
	return func(p *headerParser) {
		p.legacyLayout = legacy
	}
}
