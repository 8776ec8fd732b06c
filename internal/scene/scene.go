// Package scene stores the lights of a scene in fixed-capacity,
// structure-of-arrays tables indexed by slot.
package scene

import (
	"fmt"
	"math"

	"mini-render/internal/linalg"
	"mini-render/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scene owns the light tables. Occupied slots are always [0, Count):
// removal moves the last light into the freed slot, so the next free slot
// is Count.
type Scene struct {
	AmbientColor mgl32.Vec3
	Point        PointLights
	Spot         SpotLights
}

func New(ambient mgl32.Vec3) *Scene {
	return &Scene{AmbientColor: ambient}
}

func (s *Scene) SetAmbientColor(c mgl32.Vec3) {
	s.AmbientColor = c
}

// Lookup returns the slot of the light with the given type and id.
func (s *Scene) Lookup(t LightType, id string) (int, bool) {
	slots := s.slots(t)
	if slots == nil {
		return -1, false
	}
	i := slots.Index(id)
	return i, i >= 0
}

func (s *Scene) slots(t LightType) *Slots {
	switch t {
	case Point:
		return &s.Point.Slots
	case Spot:
		return &s.Spot.Slots
	}
	return nil
}

// AddLight claims the next free slot of the given type and returns the
// light's id. Ids are unique per light type. An empty id is replaced by a
// generated UUID. On error the scene is left unchanged.
func (s *Scene) AddLight(id string, t LightType, o LightOptions) (string, error) {
	slots := s.slots(t)
	if slots == nil {
		return "", fmt.Errorf("%w: %d", ErrUnknownLightType, int(t))
	}
	if id == "" {
		id = uuid.NewString()
	}
	if slots.Index(id) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	if slots.Count >= MaxLights {
		return "", fmt.Errorf("%w: %d %s lights", ErrCapacity, MaxLights, t)
	}
	if err := o.validate(t); err != nil {
		return "", err
	}

	var dir mgl32.Vec3
	if t == Spot {
		var err error
		if dir, err = linalg.Normalize(*o.Direction); err != nil {
			return "", fmt.Errorf("scene: light %q direction: %w", id, err)
		}
	}

	i := slots.Count
	slots.set(i, id, &o)
	if t == Spot {
		s.Spot.Directions[i] = dir
		s.Spot.Angles[i] = float32(math.Cos(float64(mgl32.DegToRad(*o.Angle))))
		s.Spot.Exponents[i] = *o.Exponent
		s.Spot.ProjectionMatrices[i] = mgl32.Ident4()
		s.Spot.ViewMatrices[i] = mgl32.Ident4()
	}
	slots.Count++

	logger.Log.Debug("light added", zap.String("id", id), zap.Stringer("type", t), zap.Int("slot", i))
	return id, nil
}

// RemoveLight frees the slot of the light with the given id.
func (s *Scene) RemoveLight(t LightType, id string) error {
	slots := s.slots(t)
	if slots == nil {
		return fmt.Errorf("%w: %d", ErrUnknownLightType, int(t))
	}
	i := slots.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s %q", ErrLightNotFound, t, id)
	}

	last := slots.Count - 1
	if i != last {
		if t == Spot {
			s.Spot.move(i, last)
		} else {
			slots.move(i, last)
		}
	}
	slots.clear(last)
	slots.Count--

	logger.Log.Debug("light removed", zap.String("id", id), zap.Stringer("type", t), zap.Int("slot", i))
	return nil
}
