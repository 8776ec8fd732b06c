package input

import (
	"math"

	"mini-render/internal/graphics"
)

// Per-step amounts, tuned for 60 steps per second.
const (
	moveStep  = 0.25
	riseStep  = 0.5
	turnStep  = 5 * math.Pi / 180
	twistStep = 1 * math.Pi / 180
	stepRate  = 60.0
)

// UpdateCamera moves cam for every held camera action. Forward and back
// follow the camera's current heading; dt scales every step.
func UpdateCamera(im *InputManager, cam *graphics.Camera, dt float64) {
	k := float32(dt * stepRate)
	yaw := float64(cam.Rotation[1])
	fx, fz := float32(math.Sin(yaw)), float32(-math.Cos(yaw))

	if im.IsActive(ActionMoveForward) {
		cam.Position[0] += fx * moveStep * k
		cam.Position[2] += fz * moveStep * k
	}
	if im.IsActive(ActionMoveBackward) {
		cam.Position[0] -= fx * moveStep * k
		cam.Position[2] -= fz * moveStep * k
	}
	if im.IsActive(ActionRise) {
		cam.Position[1] += riseStep * k
	}
	if im.IsActive(ActionSink) {
		cam.Position[1] -= riseStep * k
	}

	if im.IsActive(ActionTurnLeft) {
		cam.Rotation[1] -= turnStep * k
	}
	if im.IsActive(ActionTurnRight) {
		cam.Rotation[1] += turnStep * k
	}
	if im.IsActive(ActionYawLeft) {
		cam.Rotation[1] += twistStep * k
	}
	if im.IsActive(ActionYawRight) {
		cam.Rotation[1] -= twistStep * k
	}
	if im.IsActive(ActionRollLeft) {
		cam.Rotation[2] += twistStep * k
	}
	if im.IsActive(ActionRollRight) {
		cam.Rotation[2] -= twistStep * k
	}
}
