package renderer

import (
	"mini-render/internal/graphics"
	"mini-render/internal/scene"
)

// insetSize is the edge length of each shadow-map preview, in pixels.
const insetSize = 240

// insetOrigins is the lower-left y of the preview for spot slots 0 and 1.
var insetOrigins = []int{insetSize, 0}

// shadowInset previews the shadow maps of the first two active spot lights
// in the lower left corner of the screen.
type shadowInset struct {
	c       *core
	maps    *[scene.MaxLights]*graphics.ShadowMap
	enabled func() bool
}

func newShadowInset(c *core, maps *[scene.MaxLights]*graphics.ShadowMap, enabled func() bool) *shadowInset {
	return &shadowInset{c: c, maps: maps, enabled: enabled}
}

func (s *shadowInset) Init() error { return nil }

func (s *shadowInset) Render(ctx RenderContext) {
	if !s.enabled() || ctx.Scene == nil {
		return
	}
	// Maps of slots without a light have never been rendered.
	n := min(ctx.Scene.Spot.Count, len(insetOrigins))
	if n == 0 {
		return
	}
	s.c.beginOverlay(programDepthGrayscale)
	defer s.c.endOverlay()

	for i, y := range insetOrigins[:n] {
		s.c.drawQuad(0, y, insetSize, insetSize, s.maps[i].DepthTexture)
	}
	s.c.dev.Viewport(0, 0, ctx.Frame.ViewportWidth, ctx.Frame.ViewportHeight)
}

func (s *shadowInset) Dispose() {}

func (s *shadowInset) SetViewport(width, height int) {}
