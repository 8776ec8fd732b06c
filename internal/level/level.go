// Package level reads scene descriptions (lights and placed models) from YAML.
package level

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"mini-render/internal/entity"
	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrUnknownModel = errors.New("level: unknown model")

type Level struct {
	Ambient  mgl32.Vec3 `yaml:"ambient"`
	Lights   []Light    `yaml:"lights"`
	Entities []Placed   `yaml:"entities"`
}

// Light is one scene light. An empty ID gets a generated one.
type Light struct {
	ID      string             `yaml:"id"`
	Type    string             `yaml:"type"`
	Options scene.LightOptions `yaml:",inline"`
}

// Placed is a model instance. Rotation is in degrees.
type Placed struct {
	Model    string     `yaml:"model"`
	Position mgl32.Vec3 `yaml:"position"`
	Rotation mgl32.Vec3 `yaml:"rotation"`
	Velocity mgl32.Vec3 `yaml:"velocity"`
}

func Read(r io.Reader) (*Level, error) {
	var l Level
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	return &l, nil
}

func Load(fsys fs.FS, path string) (*Level, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Build creates the scene and entity list. Entities keep file order, which
// is the order they are drawn in.
func Build(l *Level, models map[string]*entity.Model) (*scene.Scene, []*entity.Entity, error) {
	sc := scene.New(l.Ambient)
	for i, light := range l.Lights {
		t, err := scene.ParseLightType(light.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("level: light %d: %w", i, err)
		}
		if _, err := sc.AddLight(light.ID, t, light.Options); err != nil {
			return nil, nil, fmt.Errorf("level: light %d: %w", i, err)
		}
	}

	ents := make([]*entity.Entity, 0, len(l.Entities))
	for i, p := range l.Entities {
		model, ok := models[p.Model]
		if !ok {
			return nil, nil, fmt.Errorf("%w: entity %d uses %q", ErrUnknownModel, i, p.Model)
		}
		rot := mgl32.Vec3{
			mgl32.DegToRad(p.Rotation[0]),
			mgl32.DegToRad(p.Rotation[1]),
			mgl32.DegToRad(p.Rotation[2]),
		}
		ents = append(ents, entity.New(model, p.Position, rot, p.Velocity))
	}
	return sc, ents, nil
}
