package graphics

import (
	"fmt"
	"math"
	"strings"

	"mini-render/internal/linalg"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the scene camera. Rotation holds Euler angles in radians.
type Camera struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
}

func NewCamera() *Camera {
	return &Camera{
		FOV:  45.0,
		Near: 0.5,
		Far:  50.0,
	}
}

func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return linalg.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewMatrix rotates by X, Y, then Z and translates by -Position.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	s := NewMatrixStack()
	s.RotateX(c.Rotation[0])
	s.RotateY(c.Rotation[1])
	s.RotateZ(c.Rotation[2])
	s.Translate(c.Position.Mul(-1))
	return s.Top
}

// ModelMatrix translates by position and rotates by X, Y, then Z (radians).
func ModelMatrix(position, rotation mgl32.Vec3) mgl32.Mat4 {
	s := NewMatrixStack()
	s.Translate(position)
	s.RotateX(rotation[0])
	s.RotateY(rotation[1])
	s.RotateZ(rotation[2])
	return s.Top
}

// SpotFOVMode selects how a spot light's shadow frustum angle is derived
// from its stored cone cosine.
type SpotFOVMode int

const (
	// SpotFOVCone uses the full cone angle, 2*acos(cos).
	SpotFOVCone SpotFOVMode = iota
	// SpotFOVLegacy uses (180/pi)/cos.
	SpotFOVLegacy
)

func ParseSpotFOVMode(s string) (SpotFOVMode, error) {
	switch strings.ToLower(s) {
	case "", "cone":
		return SpotFOVCone, nil
	case "legacy":
		return SpotFOVLegacy, nil
	}
	return 0, fmt.Errorf("graphics: unknown spot fov mode %q", s)
}

// Spot light shadow camera parameters.
const (
	SpotNear    = 1.0
	SpotFar     = 50.0
	minSpotFOV  = 1.0
	maxSpotFOV  = 179.0
	spotAspect  = 1.0
	radToDegree = 180.0 / math.Pi
)

// SpotFOV returns the shadow camera's vertical field of view in degrees,
// clamped to [1, 179].
func SpotFOV(cosAngle float32, mode SpotFOVMode) float32 {
	var fov float64
	switch mode {
	case SpotFOVLegacy:
		if cosAngle <= 0 {
			return maxSpotFOV
		}
		fov = radToDegree / float64(cosAngle)
	default:
		c := math.Max(-1, math.Min(1, float64(cosAngle)))
		fov = 2 * math.Acos(c) * radToDegree
	}
	return float32(math.Max(minSpotFOV, math.Min(maxSpotFOV, fov)))
}

// SpotLightTransform returns the projection and view a spot light renders
// its shadow map with.
func SpotLightTransform(position, direction mgl32.Vec3, cosAngle float32, mode SpotFOVMode) (proj, view mgl32.Mat4) {
	proj = linalg.Perspective(SpotFOV(cosAngle, mode), spotAspect, SpotNear, SpotFar)
	view = linalg.LookAt(position, position.Add(direction), spotUp(direction))
	return proj, view
}

// spotAltUp replaces WorldUp for lights aimed straight up or down.
var spotAltUp = mgl32.Vec3{0, 0, -1}

// spotUp is WorldUp unless direction is parallel to it, where LookAt would
// have no horizontal axis.
func spotUp(direction mgl32.Vec3) mgl32.Vec3 {
	d, err := linalg.Normalize(direction)
	if err != nil {
		return linalg.WorldUp
	}
	if linalg.WorldUp.Cross(d).Len() < 1e-4 {
		return spotAltUp
	}
	return linalg.WorldUp
}
