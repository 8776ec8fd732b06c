package graphics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrStackUnderflow = errors.New("graphics: matrix stack underflow")

// MatrixStack is a current matrix plus saved copies. Transform methods
// post-multiply onto Top.
type MatrixStack struct {
	Top   mgl32.Mat4
	saved []mgl32.Mat4
}

func NewMatrixStack() *MatrixStack {
	return &MatrixStack{Top: mgl32.Ident4()}
}

// Push saves a copy of Top.
func (s *MatrixStack) Push() {
	s.saved = append(s.saved, s.Top)
}

// Pop restores the last pushed matrix.
func (s *MatrixStack) Pop() error {
	n := len(s.saved)
	if n == 0 {
		return ErrStackUnderflow
	}
	s.Top = s.saved[n-1]
	s.saved = s.saved[:n-1]
	return nil
}

// Depth is the number of saved matrices.
func (s *MatrixStack) Depth() int { return len(s.saved) }

func (s *MatrixStack) Identity() { s.Top = mgl32.Ident4() }

func (s *MatrixStack) Load(m mgl32.Mat4) { s.Top = m }

func (s *MatrixStack) Mul(m mgl32.Mat4) { s.Top = s.Top.Mul4(m) }

func (s *MatrixStack) Translate(v mgl32.Vec3) {
	s.Mul(mgl32.Translate3D(v[0], v[1], v[2]))
}

// RotateX, RotateY and RotateZ take radians.
func (s *MatrixStack) RotateX(rad float32) { s.Mul(mgl32.HomogRotate3DX(rad)) }

func (s *MatrixStack) RotateY(rad float32) { s.Mul(mgl32.HomogRotate3DY(rad)) }

func (s *MatrixStack) RotateZ(rad float32) { s.Mul(mgl32.HomogRotate3DZ(rad)) }
