package scene_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float32) *mgl32.Vec3 { return &mgl32.Vec3{x, y, z} }
func f32(v float32) *float32          { return &v }

func pointOpts() scene.LightOptions {
	return scene.LightOptions{
		Position:      vec(0, 2, 0),
		DiffuseColor:  vec(1, 1, 1),
		SpecularColor: vec(1, 1, 1),
		Intensity:     f32(1),
	}
}

func spotOpts() scene.LightOptions {
	o := pointOpts()
	o.Direction = vec(0, -2, 0)
	o.Angle = f32(60)
	o.Exponent = f32(8)
	return o
}

func TestAddRemoveRestoresCountAndReusesSlot(t *testing.T) {
	s := scene.New(mgl32.Vec3{0.1, 0.1, 0.1})
	_, err := s.AddLight("keep", scene.Point, pointOpts())
	require.NoError(t, err)

	before := s.Point.Count
	_, err = s.AddLight("temp", scene.Point, pointOpts())
	require.NoError(t, err)
	require.Equal(t, before+1, s.Point.Count)

	require.NoError(t, s.RemoveLight(scene.Point, "temp"))
	assert.Equal(t, before, s.Point.Count)

	_, err = s.AddLight("again", scene.Point, pointOpts())
	require.NoError(t, err)
	slot, ok := s.Lookup(scene.Point, "again")
	require.True(t, ok)
	assert.Equal(t, 1, slot)
}

func TestRemoveCompactsAndKeepsShadowMaps(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.AddLight(id, scene.Spot, spotOpts())
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		s.Spot.ShadowMaps[i] = scene.ShadowTarget{Framebuffer: uint32(10 + i)}
	}
	s.Spot.Positions[2] = mgl32.Vec3{7, 7, 7}

	require.NoError(t, s.RemoveLight(scene.Spot, "a"))

	assert.Equal(t, 2, s.Spot.Count)
	slot, ok := s.Lookup(scene.Spot, "c")
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.Equal(t, mgl32.Vec3{7, 7, 7}, s.Spot.Positions[0])
	assert.Equal(t, uint32(10), s.Spot.ShadowMaps[0].Framebuffer)
	assert.Equal(t, uint32(12), s.Spot.ShadowMaps[2].Framebuffer)
	assert.Empty(t, s.Spot.IDs[2])
}

func TestDuplicateIDLeavesStoreUnchanged(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	_, err := s.AddLight("lamp", scene.Point, pointOpts())
	require.NoError(t, err)
	snapshot := *s

	_, err = s.AddLight("lamp", scene.Point, pointOpts())
	assert.ErrorIs(t, err, scene.ErrDuplicateID)

	assert.Equal(t, snapshot, *s)
}

func TestIDsAreScopedPerType(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	_, err := s.AddLight("lamp", scene.Point, pointOpts())
	require.NoError(t, err)
	_, err = s.AddLight("lamp", scene.Spot, spotOpts())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Point.Count)
	assert.Equal(t, 1, s.Spot.Count)

	require.NoError(t, s.RemoveLight(scene.Spot, "lamp"))
	slot, ok := s.Lookup(scene.Point, "lamp")
	assert.True(t, ok)
	assert.Equal(t, 0, slot)
	_, ok = s.Lookup(scene.Spot, "lamp")
	assert.False(t, ok)
}

func TestMissingOption(t *testing.T) {
	s := scene.New(mgl32.Vec3{})

	o := spotOpts()
	o.Exponent = nil
	_, err := s.AddLight("", scene.Spot, o)

	var missing *scene.MissingOptionError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "exponent", missing.Field)
	assert.Equal(t, scene.Spot, missing.Type)
	assert.Zero(t, s.Spot.Count)

	o = pointOpts()
	o.Intensity = nil
	_, err = s.AddLight("", scene.Point, o)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "intensity", missing.Field)
}

func TestZeroDirectionRejected(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	o := spotOpts()
	o.Direction = vec(0, 0, 0)
	_, err := s.AddLight("", scene.Spot, o)
	assert.Error(t, err)
	assert.Zero(t, s.Spot.Count)
}

func TestCapacity(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	for i := 0; i < scene.MaxLights; i++ {
		_, err := s.AddLight(fmt.Sprintf("p%d", i), scene.Point, pointOpts())
		require.NoError(t, err)
	}
	_, err := s.AddLight("overflow", scene.Point, pointOpts())
	assert.ErrorIs(t, err, scene.ErrCapacity)
	assert.Equal(t, scene.MaxLights, s.Point.Count)

	// the spot table is independent
	_, err = s.AddLight("s0", scene.Spot, spotOpts())
	assert.NoError(t, err)
}

func TestRemoveUnknown(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	assert.ErrorIs(t, s.RemoveLight(scene.Spot, "nope"), scene.ErrLightNotFound)
	assert.ErrorIs(t, s.RemoveLight(scene.LightType(9), "nope"), scene.ErrUnknownLightType)

	_, err := s.AddLight("x", scene.LightType(9), pointOpts())
	assert.ErrorIs(t, err, scene.ErrUnknownLightType)
}

func TestGeneratedIDAndCosineAngle(t *testing.T) {
	s := scene.New(mgl32.Vec3{})
	id, err := s.AddLight("", scene.Spot, spotOpts())
	require.NoError(t, err)
	assert.Len(t, id, 36)

	slot, ok := s.Lookup(scene.Spot, id)
	require.True(t, ok)
	assert.InDelta(t, math.Cos(math.Pi/3), s.Spot.Angles[slot], 1e-6)
	assert.InDelta(t, 1.0, s.Spot.Directions[slot].Len(), 1e-6)
	assert.Equal(t, mgl32.Ident4(), s.Spot.ViewMatrices[slot])
}

func TestParseLightType(t *testing.T) {
	lt, err := scene.ParseLightType("Spot")
	require.NoError(t, err)
	assert.Equal(t, scene.Spot, lt)

	_, err = scene.ParseLightType("area")
	assert.ErrorIs(t, err, scene.ErrUnknownLightType)
}
