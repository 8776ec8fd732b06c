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

var forwardPrograms = []string{programDepth, programPointLight, programSpotLight, programDepthGrayscale}

// shadowUnit is the texture unit spot shadow maps are sampled from.
const shadowUnit = 1

// ForwardRenderer draws each light as an additive pass over a depth
// pre-pass, with a shadow map per spot slot.
type ForwardRenderer struct {
	*core

	shadowMaps [scene.MaxLights]*graphics.ShadowMap
	attached   *scene.Scene

	warnedPointShadows bool
}

func newForward(dev gpu.Device, a Assets, opts Options) (*ForwardRenderer, error) {
	r := &ForwardRenderer{core: newCore(dev, opts)}
	err := runStages([]initStep{
		{StageExtensions, func() error { return r.initExtensions(1) }},
		{StageShaders, func() error { return r.initShaders(a, forwardPrograms) }},
		{StageBuffers, func() error { return r.initBuffers(a) }},
		{StageMaterials, func() error { return r.initMaterials(a) }},
		{StageTextures, func() error { return r.initTextures(a) }},
		{StageShadowMaps, r.initShadowMaps},
	})
	if err != nil {
		r.Dispose()
		return nil, err
	}

	if opts.DebugInset != nil {
		r.overlays = append(r.overlays, newShadowInset(r.core, &r.shadowMaps, opts.DebugInset))
	}
	return r, nil
}

func (r *ForwardRenderer) initShadowMaps() error {
	for i := range r.shadowMaps {
		sm, err := graphics.NewShadowMap(r.dev, r.opts.ShadowMapSize)
		if err != nil {
			return err
		}
		r.shadowMaps[i] = sm
	}
	logger.Log.Debug("shadow maps allocated", zap.Int("count", len(r.shadowMaps)), zap.Int("size", r.opts.ShadowMapSize))
	return nil
}

// attach records the shadow targets on the scene's spot slots.
func (r *ForwardRenderer) attach(sc *scene.Scene) {
	if sc == nil || sc == r.attached {
		return
	}
	for i, sm := range r.shadowMaps {
		if sm != nil {
			sc.Spot.ShadowMaps[i] = sm.Target()
		}
	}
	r.attached = sc
}

func (r *ForwardRenderer) RenderScene(ctx FrameContext, sc *scene.Scene, entities []*entity.Entity) {
	defer profiling.Track("render.frame")()
	r.attach(sc)
	r.beginFrame(ctx)

	r.use(programDepth)
	r.setDepthDrawingState()
	r.setShadowTarget()
	r.renderLightDepthBuffers(sc, entities)

	r.setScreenTarget(ctx)
	r.setDefaultCamera(ctx)
	r.renderSceneDepth(entities)

	r.setColorDrawingState()
	r.renderPointLights(sc, entities)
	r.renderSpotLights(sc, entities)

	r.renderOverlays(ctx, sc)
}

func (r *ForwardRenderer) setShadowTarget() {
	size := r.opts.ShadowMapSize
	r.dev.Viewport(0, 0, size, size)
	r.dev.Enable(gpu.CullFace)
	r.dev.CullFace(gpu.Front)
}

func (r *ForwardRenderer) setScreenTarget(ctx FrameContext) {
	r.dev.BindFramebuffer(0)
	r.dev.Viewport(0, 0, ctx.ViewportWidth, ctx.ViewportHeight)
	r.dev.CullFace(gpu.Back)
}

func (r *ForwardRenderer) renderLightDepthBuffers(sc *scene.Scene, entities []*entity.Entity) {
	defer profiling.Track("render.shadow")()

	if sc.Point.Count > 0 && !r.warnedPointShadows {
		logger.Log.Warn("point light shadows are not supported; point lights render unshadowed")
		r.warnedPointShadows = true
	}

	spot := &sc.Spot
	for i := 0; i < spot.Count; i++ {
		sm := r.shadowMaps[i]
		r.dev.BindFramebuffer(sm.Framebuffer)
		r.dev.Clear(gpu.ClearDepth)

		proj, view := graphics.SpotLightTransform(spot.Positions[i], spot.Directions[i], spot.Angles[i], r.opts.SpotFOV)
		r.proj.Load(proj)
		r.view.Load(view)
		r.setCameraUniforms()
		r.drawEntities(entities, false, false)

		spot.ProjectionMatrices[i] = proj
		spot.ViewMatrices[i] = view
		r.dev.BindFramebuffer(0)
		r.stats.ShadowPasses++
	}
}

func (r *ForwardRenderer) renderSceneDepth(entities []*entity.Entity) {
	defer profiling.Track("render.depth")()
	r.setCameraUniforms()
	r.drawEntities(entities, false, false)
	r.stats.DepthPrePasses++
}

func (r *ForwardRenderer) renderPointLights(sc *scene.Scene, entities []*entity.Entity) {
	defer profiling.Track("render.lights.point")()
	r.use(programPointLight)
	r.setCameraUniforms()

	for i := 0; i < sc.Point.Count; i++ {
		r.setPointLightUniforms(&sc.Point, i)
		r.drawEntities(entities, true, true)
		r.stats.LightPasses++
	}
}

func (r *ForwardRenderer) renderSpotLights(sc *scene.Scene, entities []*entity.Entity) {
	defer profiling.Track("render.lights.spot")()
	r.use(programSpotLight)
	r.setCameraUniforms()

	for i := 0; i < sc.Spot.Count; i++ {
		r.dev.ActiveTexture(shadowUnit)
		r.dev.BindTexture(r.shadowMaps[i].DepthTexture)
		r.dev.ActiveTexture(0)

		r.setSpotLightUniforms(&sc.Spot, i)
		r.drawEntities(entities, true, true)

		r.dev.ActiveTexture(shadowUnit)
		r.dev.BindTexture(0)
		r.dev.ActiveTexture(0)
		r.stats.LightPasses++
	}
}

func (r *ForwardRenderer) setPointLightUniforms(l *scene.PointLights, i int) {
	p := r.active.program
	p.SetInt(graphics.USampler, 0)
	p.SetVec3(graphics.ULightPosition, l.Positions[i])
	p.SetVec3(graphics.ULightDiffuseColor, l.DiffuseColors[i])
	p.SetVec3(graphics.ULightSpecularColor, l.SpecularColors[i])
	p.SetFloat(graphics.ULightIntensity, l.Intensities[i])
}

func (r *ForwardRenderer) setSpotLightUniforms(l *scene.SpotLights, i int) {
	p := r.active.program
	p.SetInt(graphics.USampler, 0)
	p.SetInt(graphics.UShadowMapSampler, shadowUnit)
	p.SetMat4(graphics.ULightProjectionMatrix, l.ProjectionMatrices[i])
	p.SetMat4(graphics.ULightViewMatrix, l.ViewMatrices[i])
	p.SetVec3(graphics.ULightPosition, l.Positions[i])
	p.SetVec3(graphics.ULightDirection, l.Directions[i])
	p.SetFloat(graphics.ULightAngle, l.Angles[i])
	p.SetFloat(graphics.ULightExponent, l.Exponents[i])
	p.SetVec3(graphics.ULightDiffuseColor, l.DiffuseColors[i])
	p.SetVec3(graphics.ULightSpecularColor, l.SpecularColors[i])
	p.SetFloat(graphics.ULightIntensity, l.Intensities[i])
}

func (r *ForwardRenderer) Stats() FrameStats { return r.stats }

func (r *ForwardRenderer) Resize(width, height int) error {
	r.resizeOverlays(width, height)
	return nil
}

func (r *ForwardRenderer) Dispose() {
	for i, sm := range r.shadowMaps {
		if sm != nil {
			sm.Delete(r.dev)
			r.shadowMaps[i] = nil
		}
	}
	if r.attached != nil {
		r.attached.Spot.ShadowMaps = [scene.MaxLights]scene.ShadowTarget{}
		r.attached = nil
	}
	r.release()
}
