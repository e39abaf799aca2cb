package camera

import "github.com/go-gl/mathgl/mgl32"

// Intrinsics describes a pinhole camera in pixel units.
type Intrinsics struct {
	Width      int
	Height     int
	FocalX     float32
	FocalY     float32
	PrincipalX float32 // principal point offset in pixels, positive moves right
	PrincipalY float32 // principal point offset in pixels, positive moves up
	Near       float32
	Far        float32
}

// DefaultIntrinsics returns a 1280x720 camera with a 1280 pixel focal length and a
// [0.2, 1000] depth range.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		Width:  1280,
		Height: 720,
		FocalX: 1280,
		FocalY: 1280,
		Near:   0.2,
		Far:    1000,
	}
}

// Resize returns a copy with a new resolution. Focal lengths and principal point offsets are
// kept in pixels, so the field of view changes with the resolution.
//
// Parameters:
//   - width: new width in pixels
//   - height: new height in pixels
//
// Returns:
//   - Intrinsics: the resized intrinsics
func (in Intrinsics) Resize(width, height int) Intrinsics {
	in.Width = width
	in.Height = height
	return in
}

// HalfSize returns (Width/2, Height/2).
func (in Intrinsics) HalfSize() mgl32.Vec2 {
	return mgl32.Vec2{float32(in.Width) / 2, float32(in.Height) / 2}
}

// ProjectionMatrix builds the column-major projection matrix for the intrinsics.
// The matrix maps view space with +Z pointing forward, so it expects a view matrix whose depth
// row has been negated (see common.NegateZRow).
//
// Parameters:
//   - in: the camera intrinsics
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func ProjectionMatrix(in Intrinsics) mgl32.Mat4 {
	half := in.HalfSize()
	n, f := in.Near, in.Far

	var p mgl32.Mat4
	p[0] = in.FocalX / half[0]
	p[5] = in.FocalY / half[1]
	p[8] = in.PrincipalX / half[0]
	p[9] = in.PrincipalY / half[1]
	p[10] = (f + n) / (f - n)
	p[11] = 1
	p[14] = -2 * f * n / (f - n)
	return p
}
