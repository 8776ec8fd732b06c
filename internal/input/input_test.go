package input

import (
	"math"
	"testing"

	"mini-render/internal/graphics"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestEdgeDetection(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(glfw.KeyF1, glfw.Press)
	assert.True(t, im.JustPressed(ActionToggleInset))
	assert.True(t, im.IsActive(ActionToggleInset))

	im.PostUpdate()
	assert.False(t, im.JustPressed(ActionToggleInset))
	assert.True(t, im.IsActive(ActionToggleInset))

	im.HandleKeyEvent(glfw.KeyF1, glfw.Repeat)
	assert.False(t, im.JustPressed(ActionToggleInset), "repeat is not a new press")

	im.HandleKeyEvent(glfw.KeyF1, glfw.Release)
	assert.True(t, im.JustReleased(ActionToggleInset))
	assert.False(t, im.IsActive(ActionToggleInset))
}

func TestBindingsShareAction(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyKPAdd, glfw.Press)
	assert.True(t, im.IsActive(ActionRise))

	im.UnbindKey(glfw.KeyMinus)
	im.HandleKeyEvent(glfw.KeyMinus, glfw.Press)
	assert.False(t, im.IsActive(ActionSink))

	assert.False(t, im.IsActive(ActionCount))
}

func TestUpdateCameraMovesAlongHeading(t *testing.T) {
	im := NewInputManager()
	cam := graphics.NewCamera()
	cam.Rotation[1] = math.Pi / 2

	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	UpdateCamera(im, cam, 1.0/60)

	assert.InDelta(t, 0.25, cam.Position[0], 1e-5)
	assert.InDelta(t, 0.0, cam.Position[2], 1e-5)
}

func TestUpdateCameraTurnsAndRises(t *testing.T) {
	im := NewInputManager()
	cam := graphics.NewCamera()

	im.HandleKeyEvent(glfw.KeyRight, glfw.Press)
	im.HandleKeyEvent(glfw.KeyEqual, glfw.Press)
	im.HandleKeyEvent(glfw.KeySemicolon, glfw.Press)
	UpdateCamera(im, cam, 2.0/60)

	assert.InDelta(t, 10*math.Pi/180, cam.Rotation[1], 1e-5)
	assert.InDelta(t, 2*math.Pi/180, cam.Rotation[2], 1e-5)
	assert.InDelta(t, 1.0, cam.Position[1], 1e-5)
}
