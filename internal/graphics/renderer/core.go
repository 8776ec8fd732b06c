package renderer

import (
	"fmt"

	"mini-render/internal/assets"
	"mini-render/internal/entity"
	"mini-render/internal/gpu"
	"mini-render/internal/graphics"
	"mini-render/internal/linalg"
	"mini-render/internal/logger"
	"mini-render/internal/profiling"
	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Program names looked up in the asset store.
const (
	programDepth          = "depth"
	programPointLight     = "pointLight"
	programSpotLight      = "spotLight"
	programGBuffer        = "gBuffer"
	programFlatColor      = "DEBUG_flatColor"
	programDepthGrayscale = "DEBUG_depthGrayscale"
	programText           = "DEBUG_text"
)

// binding is the last resource bound of each kind. It is only meaningful
// for the program it was recorded under.
type binding struct {
	program  *graphics.Program
	mesh     string
	material string
	texture  string
}

// core holds the GPU resources and draw logic shared by both pipelines.
type core struct {
	dev  gpu.Device
	opts Options

	programs  map[string]*graphics.Program
	meshes    map[string]*graphics.Mesh
	materials map[string]*assets.Material
	textures  *graphics.TextureManager
	quad      *graphics.Mesh

	proj  *graphics.MatrixStack
	view  *graphics.MatrixStack
	model *graphics.MatrixStack

	overlays []Renderable
	active   binding
	stats    FrameStats
	reported map[string]bool
}

func newCore(dev gpu.Device, opts Options) *core {
	if opts.ShadowMapSize <= 0 {
		opts.ShadowMapSize = DefaultShadowMapSize
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 900, 600
	}
	return &core{
		dev:       dev,
		opts:      opts,
		programs:  map[string]*graphics.Program{},
		meshes:    map[string]*graphics.Mesh{},
		materials: map[string]*assets.Material{},
		textures:  graphics.NewTextureManager(dev),
		proj:      graphics.NewMatrixStack(),
		view:      graphics.NewMatrixStack(),
		model:     graphics.NewMatrixStack(),
		reported:  map[string]bool{},
	}
}

type initStep struct {
	stage string
	run   func() error
}

// runStages runs steps in order and stops at the first failure.
func runStages(steps []initStep) error {
	for _, s := range steps {
		logger.Log.Debug("renderer init", zap.String("stage", s.stage))
		if err := s.run(); err != nil {
			ierr := &InitError{Stage: s.stage, Err: err}
			logger.Log.Error("renderer init failed", zap.String("stage", s.stage), zap.Error(err))
			return ierr
		}
	}
	return nil
}

func (c *core) initExtensions(drawBuffers int) error {
	caps := c.dev.Capabilities()
	if !caps.DepthTexture {
		return fmt.Errorf("%w: depth textures", ErrMissingCapability)
	}
	if caps.MaxDrawBuffers < drawBuffers {
		return fmt.Errorf("%w: %d draw buffers (have %d)", ErrMissingCapability, drawBuffers, caps.MaxDrawBuffers)
	}
	logger.Log.Info("graphics device", zap.String("version", caps.Version), zap.Int("drawBuffers", caps.MaxDrawBuffers))
	return nil
}

// initShaders builds every program in the store. Each name in required
// must be among them.
func (c *core) initShaders(a Assets, required []string) error {
	for _, name := range required {
		if _, err := a.Program(name); err != nil {
			return fmt.Errorf("%w: %q", ErrMissingProgram, name)
		}
	}

	for _, name := range a.Programs() {
		pair, err := a.Program(name)
		if err != nil {
			return err
		}
		vs, err := a.Shader(pair[0])
		if err != nil {
			return fmt.Errorf("program %q: %w", name, err)
		}
		fs, err := a.Shader(pair[1])
		if err != nil {
			return fmt.Errorf("program %q: %w", name, err)
		}

		p, err := graphics.BuildProgram(c.dev, name, vs, fs)
		if err != nil {
			return err
		}
		c.programs[name] = p
		logger.Log.Debug("program linked", zap.String("name", name), zap.Stringer("attribs", p.Attribs))
	}
	return nil
}

func (c *core) initBuffers(a Assets) error {
	for _, name := range a.Meshes() {
		m, err := a.Mesh(name)
		if err != nil {
			return err
		}
		gm, err := graphics.UploadMesh(c.dev, m)
		if err != nil {
			return err
		}
		c.meshes[name] = gm
	}
	c.quad = graphics.NewQuad(c.dev)
	return nil
}

func (c *core) initMaterials(a Assets) error {
	c.materials[entity.DefaultMaterial] = assets.DefaultMaterial(entity.DefaultMaterial)
	for _, name := range a.Materials() {
		if _, ok := c.materials[name]; ok {
			continue
		}
		m, err := a.Material(name)
		if err != nil {
			return err
		}
		c.materials[name] = m
	}
	return nil
}

func (c *core) initTextures(a Assets) error {
	if _, err := c.textures.Upload(assets.WhiteTexture(entity.DefaultTexture)); err != nil {
		return err
	}
	for _, name := range a.Textures() {
		t, err := a.Texture(name)
		if err != nil {
			return err
		}
		if _, err := c.textures.Upload(t); err != nil {
			return err
		}
	}
	return nil
}

// addOverlays initializes overlays and keeps the ones that succeed.
func (c *core) addOverlays(overlays []Renderable) {
	for _, o := range overlays {
		if err := o.Init(); err != nil {
			logger.Log.Warn("overlay init failed", zap.Error(err))
			continue
		}
		o.SetViewport(c.opts.Width, c.opts.Height)
		c.overlays = append(c.overlays, o)
	}
}

func (c *core) renderOverlays(ctx FrameContext, sc *scene.Scene) {
	if len(c.overlays) == 0 {
		return
	}
	defer profiling.Track("render.overlays")()
	rc := RenderContext{Frame: ctx, Scene: sc, View: c.view.Top, Proj: c.proj.Top}
	for _, o := range c.overlays {
		o.Render(rc)
	}
}

func (c *core) resizeOverlays(width, height int) {
	c.opts.Width, c.opts.Height = width, height
	for _, o := range c.overlays {
		o.SetViewport(width, height)
	}
}

func (c *core) release() {
	for i := len(c.overlays) - 1; i >= 0; i-- {
		c.overlays[i].Dispose()
	}
	c.overlays = nil
	for name, p := range c.programs {
		p.Delete()
		delete(c.programs, name)
	}
	for name, m := range c.meshes {
		m.Delete(c.dev)
		delete(c.meshes, name)
	}
	if c.quad != nil {
		c.quad.Delete(c.dev)
		c.quad = nil
	}
	c.textures.Release()
}

// use makes the named program current and forgets every cached binding.
func (c *core) use(name string) *graphics.Program {
	p := c.programs[name]
	p.Use()
	c.active = binding{program: p}
	c.stats.ProgramBinds++
	return p
}

func (c *core) setCameraUniforms() {
	p := c.active.program
	p.SetMat4(graphics.UProjectionMatrix, c.proj.Top)
	p.SetMat4(graphics.UViewMatrix, c.view.Top)
}

// setDefaultCamera loads the scene camera onto the projection and view stacks.
func (c *core) setDefaultCamera(ctx FrameContext) {
	cam := ctx.Camera
	if cam == nil {
		cam = graphics.NewCamera()
	}
	c.proj.Load(cam.ProjectionMatrix(ctx.Aspect()))
	c.view.Load(cam.ViewMatrix())
}

func (c *core) setDepthDrawingState() {
	c.dev.ColorMask(false, false, false, false)
	c.dev.Disable(gpu.Blend)
	c.dev.DepthMask(true)
	c.dev.Enable(gpu.DepthTest)
	c.dev.DepthFunc(gpu.LessEqual)
}

// setColorDrawingState accumulates light passes additively over the depth
// laid down by the pre-pass.
func (c *core) setColorDrawingState() {
	c.dev.ColorMask(true, true, true, true)
	c.dev.Enable(gpu.Blend)
	c.dev.BlendFunc(gpu.One, gpu.One)
	c.dev.DepthMask(false)
	c.dev.DepthFunc(gpu.Equal)
}

func (c *core) beginFrame(ctx FrameContext) {
	c.stats = FrameStats{}
	c.dev.BindFramebuffer(0)
	c.dev.Viewport(0, 0, ctx.ViewportWidth, ctx.ViewportHeight)
	c.dev.ColorMask(true, true, true, true)
	c.dev.DepthMask(true)
	c.dev.Clear(gpu.ClearColor | gpu.ClearDepth)
}

func (c *core) drawEntities(entities []*entity.Entity, withMaterials, withTextures bool) {
	c.model.Identity()
	for _, e := range entities {
		c.drawEntity(e, withMaterials, withTextures)
	}
}

func (c *core) drawEntity(e *entity.Entity, withMaterials, withTextures bool) {
	meshName := e.Model.MeshName()
	mesh, ok := c.meshes[meshName]
	if !ok {
		c.reportMissing("mesh", meshName)
		return
	}
	p := c.active.program

	c.model.Push()
	defer c.popModel()

	c.model.Translate(e.Position)
	c.model.RotateX(e.Rotation[0])
	c.model.RotateY(e.Rotation[1])
	c.model.RotateZ(e.Rotation[2])
	p.SetMat4(graphics.UModelMatrix, c.model.Top)

	if _, ok := p.Uniform(graphics.UNormalMatrix); ok {
		n, err := linalg.NormalMatrix(c.model.Top)
		if err != nil {
			n = mgl32.Ident3()
		}
		p.SetMat3(graphics.UNormalMatrix, n)
	}

	if withMaterials {
		if name := e.Model.MaterialName(); c.active.material != name {
			c.setMaterialUniforms(name)
			c.active.material = name
			c.stats.MaterialBinds++
		}
	}

	if withTextures {
		if name := e.Model.TextureName(); c.active.texture != name {
			tex, err := c.textures.Get(name)
			if err != nil {
				c.reportMissing("texture", name)
				tex, _ = c.textures.Get(entity.DefaultTexture)
			}
			c.dev.ActiveTexture(0)
			c.dev.BindTexture(tex)
			c.active.texture = name
			c.stats.TextureBinds++
		}
	}

	if c.active.mesh != meshName {
		mesh.Bind(c.dev, p.Attribs)
		c.active.mesh = meshName
		c.stats.MeshBinds++
	}

	mesh.Draw(c.dev)
	c.stats.DrawCalls++
}

func (c *core) popModel() {
	if err := c.model.Pop(); err != nil {
		logger.Log.DPanic("model stack", zap.Error(err))
	}
}

func (c *core) setMaterialUniforms(name string) {
	m, ok := c.materials[name]
	if !ok {
		c.reportMissing("material", name)
		m = c.materials[entity.DefaultMaterial]
	}
	p := c.active.program
	p.SetVec3(graphics.UMaterialAmbientColor, m.Ambient)
	p.SetVec3(graphics.UMaterialDiffuseColor, m.Diffuse)
	p.SetVec3(graphics.UMaterialEmissiveColor, m.Emissive)
	p.SetVec3(graphics.UMaterialSpecularColor, m.Specular)
	p.SetFloat(graphics.UMaterialShininess, m.Shininess)
}

// reportMissing logs an unknown asset name once.
func (c *core) reportMissing(kind, name string) {
	key := kind + "/" + name
	if c.reported[key] {
		return
	}
	c.reported[key] = true
	logger.Log.Warn("entity references an asset that was not uploaded", zap.String("kind", kind), zap.String("name", name))
}

// drawQuad draws the shared quad into the given viewport with texture bound
// to unit 0. Callers set up the program and matrices.
func (c *core) drawQuad(x, y, w, h int, texture uint32) {
	c.dev.Viewport(x, y, w, h)
	c.dev.ActiveTexture(0)
	c.dev.BindTexture(texture)
	c.quad.Draw(c.dev)
	c.stats.DrawCalls++
}

// beginOverlay switches to program with an orthographic camera looking at
// a quad one unit in front of it.
func (c *core) beginOverlay(program string) *graphics.Program {
	c.dev.Disable(gpu.DepthTest)
	c.dev.Disable(gpu.Blend)

	p := c.use(program)
	c.proj.Push()
	c.view.Push()
	c.model.Push()

	c.proj.Load(linalg.Orthographic(-1, 1, -1, 1, 1, 10))
	c.view.Identity()
	c.model.Identity()
	c.model.Translate(mgl32.Vec3{0, 0, -1})

	c.setCameraUniforms()
	p.SetMat4(graphics.UModelMatrix, c.model.Top)
	p.SetInt(graphics.USampler, 0)

	c.quad.Bind(c.dev, p.Attribs)
	c.active.mesh = c.quad.Name
	c.stats.MeshBinds++
	return p
}

func (c *core) endOverlay() {
	c.active.texture = ""
	for _, s := range []*graphics.MatrixStack{c.proj, c.view, c.model} {
		if err := s.Pop(); err != nil {
			logger.Log.DPanic("overlay stack", zap.Error(err))
		}
	}
}
