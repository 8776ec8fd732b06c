// Package linalg adds the checked operations the renderer needs on top of mgl32.
// Matrices are column-major, as in mgl32.
package linalg

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrZeroLength = errors.New("linalg: cannot normalize a zero-length vector")
	ErrSingular   = errors.New("linalg: matrix is singular")
)

// Epsilon is the tolerance used for degeneracy checks.
const Epsilon = 1e-6

// WorldUp is the up vector used for light cameras.
var WorldUp = mgl32.Vec3{0, 1, 0}

// Normalize returns v scaled to unit length.
func Normalize(v mgl32.Vec3) (mgl32.Vec3, error) {
	l := v.Len()
	if l < Epsilon {
		return mgl32.Vec3{}, ErrZeroLength
	}
	return v.Mul(1 / l), nil
}

// Invert4 inverts m, failing when the determinant is (near) zero.
func Invert4(m mgl32.Mat4) (mgl32.Mat4, error) {
	if abs32(m.Det()) < Epsilon {
		return mgl32.Mat4{}, ErrSingular
	}
	return m.Inv(), nil
}

// Invert3 inverts m, failing when the determinant is (near) zero.
func Invert3(m mgl32.Mat3) (mgl32.Mat3, error) {
	if abs32(m.Det()) < Epsilon {
		return mgl32.Mat3{}, ErrSingular
	}
	return m.Inv(), nil
}

// NormalMatrix is transpose(inverse(upper-left 3x3 of model)).
func NormalMatrix(model mgl32.Mat4) (mgl32.Mat3, error) {
	inv, err := Invert3(model.Mat3())
	if err != nil {
		return mgl32.Mat3{}, err
	}
	return inv.Transpose(), nil
}

// Perspective builds a projection from a vertical field of view in degrees.
func Perspective(fovYDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, near, far)
}

// Orthographic builds an orthographic projection.
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return mgl32.Ortho(left, right, bottom, top, near, far)
}

// Frustum builds an off-axis perspective projection.
func Frustum(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return mgl32.Frustum(left, right, bottom, top, near, far)
}

// LookAt builds a view matrix. A degenerate eye == center yields identity.
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	if abs32(eye[0]-center[0]) < Epsilon &&
		abs32(eye[1]-center[1]) < Epsilon &&
		abs32(eye[2]-center[2]) < Epsilon {
		return mgl32.Ident4()
	}

	z := eye.Sub(center).Normalize()
	x := up.Cross(z)
	if x.Len() > 0 {
		x = x.Normalize()
	}
	y := z.Cross(x)
	if y.Len() > 0 {
		y = y.Normalize()
	}

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// ApproxEqual4 compares two matrices element-wise within tol.
func ApproxEqual4(a, b mgl32.Mat4, tol float32) bool {
	for i := range a {
		if abs32(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// ApproxEqual3 compares two matrices element-wise within tol.
func ApproxEqual3(a, b mgl32.Mat3, tol float32) bool {
	for i := range a {
		if abs32(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
