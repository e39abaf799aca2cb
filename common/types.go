// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// FloatTextureStagingData holds RGBA32Float texel data for a texture binding pending GPU upload.
type FloatTextureStagingData struct {
	// Texels holds four float32 channels per texel, row-major, Width*Height*4 values in total.
	Texels []float32
	// Width is the width of the texture in texels.
	Width uint32
	// Height is the height of the texture in texels.
	Height uint32
}

// BytesPerRow returns the byte stride of a single texture row.
//
// Returns:
//   - uint32: Width * 16 (four float32 channels per texel)
func (t FloatTextureStagingData) BytesPerRow() uint32 {
	return t.Width * 16
}

// Bytes returns the texel data as raw little-endian bytes for queue upload.
//
// Returns:
//   - []byte: a byte view of Texels
func (t FloatTextureStagingData) Bytes() []byte {
	return SliceToBytes(t.Texels)
}
