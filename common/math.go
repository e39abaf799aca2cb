package common

import (
	"cmp"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes reinterprets a slice of any fixed-size type as a raw byte slice using unsafe.
// The returned slice shares memory with data and must not outlive it.
//
// Parameters:
//   - data: the slice to reinterpret
//
// Returns:
//   - []byte: byte slice view of the slice's memory, or nil if data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// NegateZRow negates the third row of a column-major 4x4 matrix (elements 2, 6, 10 and 14).
// Used to flip a right-handed view matrix into the +Z-forward clip convention used by the
// splat shader.
//
// Parameters:
//   - m: the matrix to flip
//
// Returns:
//   - mgl32.Mat4: a copy of m with its third row negated
func NegateZRow(m mgl32.Mat4) mgl32.Mat4 {
	m[2], m[6], m[10], m[14] = -m[2], -m[6], -m[10], -m[14]
	return m
}

// ViewDepthRow returns the third row of a column-major 4x4 matrix, the coefficients that map a
// world-space point to view-space depth.
//
// Parameters:
//   - m: the view matrix
//
// Returns:
//   - mgl32.Vec4: (m[2], m[6], m[10], m[14])
func ViewDepthRow(m mgl32.Mat4) mgl32.Vec4 {
	return mgl32.Vec4{m[2], m[6], m[10], m[14]}
}
