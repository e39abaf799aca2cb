package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUFrameUniformSource is the canonical WGSL definition of the FrameUniform struct.
// Matches GPUFrameUniform layout exactly (96 bytes).
//
//go:embed assets/frame_uniform.wgsl
var GPUFrameUniformSource string

// GPUFrameUniform is the GPU-aligned representation of the per-frame uniform buffer.
// Size: 96 bytes (WGSL uniform aligned).
type GPUFrameUniform struct {
	ProjView mgl32.Mat4 // offset  0: projection * z-flipped view (mat4x4<f32>)
	DepthRow mgl32.Vec4 // offset 64: third row of the z-flipped view, world point to depth (vec4<f32>)
	HalfWH   mgl32.Vec2 // offset 80: half the viewport size in pixels (vec2<f32>)
	Near     float32    // offset 88
	Far      float32    // offset 92
}

// Size returns the size of the GPUFrameUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUFrameUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ProjView[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.DepthRow[i]))
	}
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.HalfWH[0]))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.HalfWH[1]))
	binary.LittleEndian.PutUint32(buf[88:], math.Float32bits(g.Near))
	binary.LittleEndian.PutUint32(buf[92:], math.Float32bits(g.Far))
	return buf
}
