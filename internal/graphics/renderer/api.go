package renderer

import (
	"fmt"
	"strings"

	"mini-render/internal/assets"
	"mini-render/internal/entity"
	"mini-render/internal/graphics"
	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameContext carries the per-frame inputs that are not scene content.
type FrameContext struct {
	Camera         *graphics.Camera
	ViewportWidth  int
	ViewportHeight int
	DT             float64
}

// Aspect is the viewport width over height, 1 for an empty viewport.
func (f FrameContext) Aspect() float32 {
	if f.ViewportWidth <= 0 || f.ViewportHeight <= 0 {
		return 1
	}
	return float32(f.ViewportWidth) / float32(f.ViewportHeight)
}

// Renderer draws a scene once per call. Implementations are not safe for
// concurrent use and must be driven from the thread that owns the context.
type Renderer interface {
	RenderScene(ctx FrameContext, sc *scene.Scene, entities []*entity.Entity)
	// Stats reports counters for the last RenderScene call.
	Stats() FrameStats
	Resize(width, height int) error
	Dispose()
}

// RenderContext provides shared context for overlays drawn after the main
// passes.
type RenderContext struct {
	Frame FrameContext
	Scene *scene.Scene
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// Renderable defines the lifecycle of an overlay.
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}

// Assets is the loaded asset store the renderer uploads from.
type Assets interface {
	Shader(name string) (string, error)
	Program(name string) ([2]string, error)
	Programs() []string
	Mesh(name string) (*assets.Mesh, error)
	Meshes() []string
	Material(name string) (*assets.Material, error)
	Materials() []string
	Texture(name string) (*assets.Texture, error)
	Textures() []string
}

type Mode int

const (
	Forward Mode = iota
	Deferred
)

func (m Mode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Deferred:
		return "deferred"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return Forward, nil
	case "deferred":
		return Deferred, nil
	}
	return 0, fmt.Errorf("renderer: unknown mode %q", s)
}

// Options tune a renderer at construction.
type Options struct {
	Width, Height int
	ShadowMapSize int
	SpotFOV       graphics.SpotFOVMode
	// DebugInset is polled each frame; nil disables the inset.
	DebugInset func() bool
	// StatsText is polled each frame; nil disables the stats overlay.
	// The overlay needs a DEBUG_text program in the asset store.
	StatsText func() bool
}

// DefaultShadowMapSize is used when Options.ShadowMapSize is zero.
const DefaultShadowMapSize = 512

// FrameStats counts the work of one frame.
type FrameStats struct {
	ShadowPasses   int
	DepthPrePasses int
	LightPasses    int
	DrawCalls      int

	ProgramBinds  int
	MeshBinds     int
	MaterialBinds int
	TextureBinds  int
}
