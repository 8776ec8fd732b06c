package entity

import "github.com/go-gl/mathgl/mgl32"

// DefaultMaterial is used when a model names no material.
const DefaultMaterial = "default.mtl"

// DefaultTexture is used when a model names no texture.
const DefaultTexture = "default.png"

// Model names the assets an entity is drawn with. Only the first entry of
// each list is used.
type Model struct {
	Name      string   `yaml:"-"`
	Meshes    []string `yaml:"meshes"`
	Materials []string `yaml:"materials"`
	Textures  []string `yaml:"textures"`
}

func (m *Model) MeshName() string {
	if m == nil || len(m.Meshes) == 0 {
		return ""
	}
	return m.Meshes[0]
}

func (m *Model) MaterialName() string {
	if m == nil || len(m.Materials) == 0 || m.Materials[0] == "" {
		return DefaultMaterial
	}
	return m.Materials[0]
}

func (m *Model) TextureName() string {
	if m == nil || len(m.Textures) == 0 || m.Textures[0] == "" {
		return DefaultTexture
	}
	return m.Textures[0]
}

// Entity is a placed instance of a Model. Rotation is in radians.
type Entity struct {
	Model        *Model
	Position     mgl32.Vec3
	Rotation     mgl32.Vec3
	MoveVelocity mgl32.Vec3
}

func New(model *Model, position, rotation, moveVelocity mgl32.Vec3) *Entity {
	return &Entity{
		Model:        model,
		Position:     position,
		Rotation:     rotation,
		MoveVelocity: moveVelocity,
	}
}

// Update advances the entity along MoveVelocity (units per second).
func (e *Entity) Update(dt float64) {
	e.Position = e.Position.Add(e.MoveVelocity.Mul(float32(dt)))
}
