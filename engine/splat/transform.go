package splat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// FloatsPerSplat is the number of float32 values one splat occupies in the packed buffer:
// a 3x4 row-major affine block followed by RGBA.
const FloatsPerSplat = 16

// TexelsPerSplat is the number of RGBA32Float texels one splat occupies.
const TexelsPerSplat = FloatsPerSplat / 4

// SHC0 is the degree-0 real spherical harmonic basis constant, 1/(2*sqrt(pi)).
const SHC0 = 0.28209479177387814

// degenerateQuatLen is the length below which a quaternion is treated as zero.
const degenerateQuatLen = 1e-12

// TexelBlock is one packed splat: [0,12) is the row-major 3x4 matrix [R*S | position],
// [12,16) is RGBA.
type TexelBlock [FloatsPerSplat]float32

// Center returns the splat position.
func (b TexelBlock) Center() mgl32.Vec3 {
	return mgl32.Vec3{b[3], b[7], b[11]}
}

// Axis returns column i of the scaled rotation, the i-th principal axis in world units.
func (b TexelBlock) Axis(i int) mgl32.Vec3 {
	return mgl32.Vec3{b[i], b[4+i], b[8+i]}
}

// Extent returns the length of the longest principal axis.
func (b TexelBlock) Extent() float32 {
	return max(b.Axis(0).Len(), b.Axis(1).Len(), b.Axis(2).Len())
}

// Color returns the RGBA color with alpha as opacity.
func (b TexelBlock) Color() mgl32.Vec4 {
	return mgl32.Vec4{b[12], b[13], b[14], b[15]}
}

// Sigmoid returns 1/(1+exp(-x)).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SHToColor converts a degree-0 spherical harmonic coefficient to a color channel in [0, 1].
func SHToColor(dc float64) float64 {
	return math.Max(0, math.Min(1, 0.5+SHC0*dc))
}

// ArgMin returns the index of the smallest component. Ties resolve to the first occurrence.
func ArgMin(v [3]float64) int {
	idx := 0
	for i := 1; i < len(v); i++ {
		if v[i] < v[idx] {
			idx = i
		}
	}
	return idx
}

// NormalizeQuaternion normalizes a quaternion given as (x, y, z, w).
//
// Parameters:
//   - q: the quaternion components
//
// Returns:
//   - [4]float64: the unit quaternion
//   - error: a *DegenerateQuaternionError if q has (near) zero length
func NormalizeQuaternion(q [4]float64) ([4]float64, error) {
	quat := mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}
	l := quat.Len()
	if l < degenerateQuatLen || math.IsNaN(l) {
		return [4]float64{0, 0, 0, 1}, &DegenerateQuaternionError{Index: -1}
	}
	quat = quat.Scale(1 / l)
	return [4]float64{quat.V[0], quat.V[1], quat.V[2], quat.W}, nil
}

// Transform converts a decoded record into its packed form.
// A zero-length rotation is replaced with the identity rotation and reported through the
// returned flag; the record is still packed.
//
// Parameters:
//   - r: the decoded record
//   - convertToSurfels: if true, the smallest scale axis is flattened to zero
//
// Returns:
//   - TexelBlock: the packed splat
//   - bool: true if the rotation was degenerate and replaced with identity
func Transform(r Record, convertToSurfels bool) (TexelBlock, bool) {
	var b TexelBlock
	degenerate := TransformInto(b[:], r, convertToSurfels)
	return b, degenerate
}

// TransformInto writes the packed form of r into dst[0:16]. See Transform.
func TransformInto(dst []float32, r Record, convertToSurfels bool) bool {
	q, err := NormalizeQuaternion(r.Rotation)
	degenerate := err != nil

	var scale [3]float64
	for i := range scale {
		scale[i] = math.Exp(r.LogScale[i])
	}
	if convertToSurfels {
		scale[ArgMin(scale)] = 0
	}

	rot := mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}.Mat4()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			dst[row*4+col] = float32(rot.At(row, col) * scale[col])
		}
		dst[row*4+3] = float32(r.Position[row])
	}

	dst[12] = float32(SHToColor(r.SHDC[0]))
	dst[13] = float32(SHToColor(r.SHDC[1]))
	dst[14] = float32(SHToColor(r.SHDC[2]))
	dst[15] = float32(Sigmoid(r.Opacity))
	return degenerate
}
