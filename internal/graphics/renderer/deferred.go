package renderer

import (
	"mini-render/internal/entity"
	"mini-render/internal/gpu"
	"mini-render/internal/graphics"
	"mini-render/internal/logger"
	"mini-render/internal/profiling"
	"mini-render/internal/scene"

	"go.uber.org/zap"
)

var deferredPrograms = []string{programDepth, programGBuffer, programFlatColor}

// DeferredRenderer fills a G-Buffer and shows its four channels side by
// side. Lights are not evaluated.
type DeferredRenderer struct {
	*core
	gbuffer *graphics.GBuffer
}

func newDeferred(dev gpu.Device, a Assets, opts Options) (*DeferredRenderer, error) {
	r := &DeferredRenderer{core: newCore(dev, opts)}
	err := runStages([]initStep{
		{StageExtensions, func() error { return r.initExtensions(graphics.GBufferChannels) }},
		{StageShaders, func() error { return r.initShaders(a, deferredPrograms) }},
		{StageBuffers, func() error { return r.initBuffers(a) }},
		{StageMaterials, func() error { return r.initMaterials(a) }},
		{StageTextures, func() error { return r.initTextures(a) }},
		{StageGBuffer, func() error { return r.initGBuffer(r.opts.Width, r.opts.Height) }},
	})
	if err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}

func (r *DeferredRenderer) initGBuffer(width, height int) error {
	gb, err := graphics.NewGBuffer(r.dev, width, height)
	if err != nil {
		return err
	}
	if r.gbuffer != nil {
		r.gbuffer.Delete(r.dev)
	}
	r.gbuffer = gb
	logger.Log.Debug("g-buffer allocated", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (r *DeferredRenderer) RenderScene(ctx FrameContext, sc *scene.Scene, entities []*entity.Entity) {
	defer profiling.Track("render.frame")()
	if ctx.ViewportWidth > 0 && ctx.ViewportHeight > 0 &&
		(ctx.ViewportWidth != r.gbuffer.Width || ctx.ViewportHeight != r.gbuffer.Height) {
		if err := r.Resize(ctx.ViewportWidth, ctx.ViewportHeight); err != nil {
			logger.Log.Error("g-buffer resize failed", zap.Error(err))
		}
	}
	r.stats = FrameStats{}

	r.setGBufferTarget()
	r.setDefaultCamera(ctx)
	r.renderSceneDepth(entities)
	r.fillGBuffer(entities)
	r.present(ctx)

	r.renderOverlays(ctx, sc)
}

func (r *DeferredRenderer) setGBufferTarget() {
	r.dev.BindFramebuffer(r.gbuffer.Framebuffer)
	r.dev.Viewport(0, 0, r.gbuffer.Width, r.gbuffer.Height)
	r.dev.Enable(gpu.CullFace)
	r.dev.CullFace(gpu.Back)
	r.dev.ColorMask(true, true, true, true)
	r.dev.DepthMask(true)
	r.dev.Clear(gpu.ClearColor | gpu.ClearDepth)
}

func (r *DeferredRenderer) renderSceneDepth(entities []*entity.Entity) {
	defer profiling.Track("render.depth")()
	r.use(programDepth)
	r.setDepthDrawingState()
	r.setCameraUniforms()
	r.drawEntities(entities, false, false)
	r.stats.DepthPrePasses++
}

func (r *DeferredRenderer) fillGBuffer(entities []*entity.Entity) {
	defer profiling.Track("render.gbuffer")()
	p := r.use(programGBuffer)
	r.dev.ColorMask(true, true, true, true)
	r.dev.DepthMask(false)
	r.dev.DepthFunc(gpu.Equal)

	r.setCameraUniforms()
	p.SetInt(graphics.USampler, 0)
	r.drawEntities(entities, true, true)
}

// present copies each G-Buffer channel into its own screen quadrant.
func (r *DeferredRenderer) present(ctx FrameContext) {
	defer profiling.Track("render.present")()
	r.dev.BindFramebuffer(0)
	r.dev.Viewport(0, 0, ctx.ViewportWidth, ctx.ViewportHeight)
	r.dev.ColorMask(true, true, true, true)
	r.dev.DepthMask(true)
	r.dev.Clear(gpu.ClearColor | gpu.ClearDepth)
	r.dev.DepthMask(false)

	r.beginOverlay(programFlatColor)
	defer r.endOverlay()

	w, h := ctx.ViewportWidth/2, ctx.ViewportHeight/2
	quadrants := [graphics.GBufferChannels][2]int{
		graphics.GBufferPosition: {0, h},
		graphics.GBufferNormal:   {0, 0},
		graphics.GBufferColor:    {w, h},
		graphics.GBufferDepth:    {w, 0},
	}
	for i, q := range quadrants {
		r.drawQuad(q[0], q[1], w, h, r.gbuffer.Textures[i])
	}
	r.dev.Viewport(0, 0, ctx.ViewportWidth, ctx.ViewportHeight)
}

func (r *DeferredRenderer) Stats() FrameStats { return r.stats }

// Resize reallocates the G-Buffer at the new size. The old buffer is kept
// when allocation fails.
func (r *DeferredRenderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if r.gbuffer != nil && r.gbuffer.Width == width && r.gbuffer.Height == height {
		return nil
	}
	if err := r.initGBuffer(width, height); err != nil {
		return &InitError{Stage: StageGBuffer, Err: err}
	}
	r.resizeOverlays(width, height)
	return nil
}

func (r *DeferredRenderer) Dispose() {
	if r.gbuffer != nil {
		r.gbuffer.Delete(r.dev)
		r.gbuffer = nil
	}
	r.release()
}
