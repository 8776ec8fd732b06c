package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the fixed capacity of each light store.
const MaxLights = 16

type LightType int

const (
	Point LightType = iota
	Spot
)

func (t LightType) String() string {
	switch t {
	case Point:
		return "point"
	case Spot:
		return "spot"
	}
	return fmt.Sprintf("LightType(%d)", int(t))
}

// ParseLightType accepts "point" or "spot", case-insensitively.
func ParseLightType(s string) (LightType, error) {
	switch strings.ToLower(s) {
	case "point":
		return Point, nil
	case "spot":
		return Spot, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLightType, s)
}

var (
	ErrDuplicateID      = errors.New("scene: light id already exists")
	ErrCapacity         = errors.New("scene: light store is full")
	ErrUnknownLightType = errors.New("scene: unknown light type")
	ErrLightNotFound    = errors.New("scene: light not found")
)

// MissingOptionError reports a required LightOptions field left unset.
type MissingOptionError struct {
	Type  LightType
	Field string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("scene: %s light requires %q", e.Type, e.Field)
}

// LightOptions carries the attributes of a new light. Nil means unset.
// Angle is the cone half-angle in degrees.
type LightOptions struct {
	Position      *mgl32.Vec3 `yaml:"position"`
	Direction     *mgl32.Vec3 `yaml:"direction"`
	DiffuseColor  *mgl32.Vec3 `yaml:"diffuseColor"`
	SpecularColor *mgl32.Vec3 `yaml:"specularColor"`
	Intensity     *float32    `yaml:"intensity"`
	Angle         *float32    `yaml:"angle"`
	Exponent      *float32    `yaml:"exponent"`
}

func (o *LightOptions) validate(t LightType) error {
	missing := func(field string) error { return &MissingOptionError{Type: t, Field: field} }

	switch {
	case o.Position == nil:
		return missing("position")
	case o.DiffuseColor == nil:
		return missing("diffuseColor")
	case o.SpecularColor == nil:
		return missing("specularColor")
	case o.Intensity == nil:
		return missing("intensity")
	}
	if t != Spot {
		return nil
	}
	switch {
	case o.Direction == nil:
		return missing("direction")
	case o.Angle == nil:
		return missing("angle")
	case o.Exponent == nil:
		return missing("exponent")
	}
	return nil
}

// Slots holds the attributes shared by every light kind as parallel arrays.
// Only indices [0, Count) are meaningful.
type Slots struct {
	Count          int
	IDs            [MaxLights]string
	Positions      [MaxLights]mgl32.Vec3
	DiffuseColors  [MaxLights]mgl32.Vec3
	SpecularColors [MaxLights]mgl32.Vec3
	Intensities    [MaxLights]float32
}

// Index returns the slot holding id, or -1.
func (s *Slots) Index(id string) int {
	for i := 0; i < s.Count; i++ {
		if s.IDs[i] == id {
			return i
		}
	}
	return -1
}

func (s *Slots) set(i int, id string, o *LightOptions) {
	s.IDs[i] = id
	s.Positions[i] = *o.Position
	s.DiffuseColors[i] = *o.DiffuseColor
	s.SpecularColors[i] = *o.SpecularColor
	s.Intensities[i] = *o.Intensity
}

func (s *Slots) move(dst, src int) {
	s.IDs[dst] = s.IDs[src]
	s.Positions[dst] = s.Positions[src]
	s.DiffuseColors[dst] = s.DiffuseColors[src]
	s.SpecularColors[dst] = s.SpecularColors[src]
	s.Intensities[dst] = s.Intensities[src]
}

func (s *Slots) clear(i int) {
	s.IDs[i] = ""
}

type PointLights struct {
	Slots
}

// ShadowTarget is the offscreen depth target owned by one spot slot.
// Handles are zero until the renderer allocates them.
type ShadowTarget struct {
	ColorTexture uint32
	DepthTexture uint32
	Framebuffer  uint32
}

// SpotLights extends Slots with cone parameters and per-slot shadow state.
// Angles hold cos(radians(angle)) for the fragment shader's cone test.
// ProjectionMatrices and ViewMatrices are written by the shadow pass and
// read back by the lighting pass of the same frame.
type SpotLights struct {
	Slots
	Directions         [MaxLights]mgl32.Vec3
	Angles             [MaxLights]float32
	Exponents          [MaxLights]float32
	ProjectionMatrices [MaxLights]mgl32.Mat4
	ViewMatrices       [MaxLights]mgl32.Mat4
	ShadowMaps         [MaxLights]ShadowTarget
}

// move relocates light attributes only. ShadowMaps stay with their slot.
func (s *SpotLights) move(dst, src int) {
	s.Slots.move(dst, src)
	s.Directions[dst] = s.Directions[src]
	s.Angles[dst] = s.Angles[src]
	s.Exponents[dst] = s.Exponents[src]
	s.ProjectionMatrices[dst] = s.ProjectionMatrices[src]
	s.ViewMatrices[dst] = s.ViewMatrices[src]
}
