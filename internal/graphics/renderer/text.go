package renderer

import (
	"fmt"

	"mini-render/internal/assets"
	"mini-render/internal/gpu"
	"mini-render/internal/graphics"
	"mini-render/internal/linalg"
	"mini-render/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	statsFontPixels = 14
	statsMargin     = 8
)

var statsTextColor = mgl32.Vec3{1, 1, 0.6}

// statsText prints the previous frame's counters in the top left corner.
type statsText struct {
	c       *core
	mode    Mode
	enabled func() bool

	atlas   *graphics.FontAtlas
	texture uint32
	mesh    *graphics.Mesh

	fps           float64
	width, height int
	warned        bool
}

func newStatsText(c *core, mode Mode, enabled func() bool) *statsText {
	return &statsText{c: c, mode: mode, enabled: enabled}
}

func (s *statsText) Init() error {
	if _, ok := s.c.programs[programText]; !ok {
		return fmt.Errorf("stats overlay: %w: %s", ErrMissingProgram, programText)
	}
	atlas, err := graphics.BuildFontAtlas("font.atlas", gomono.TTF, statsFontPixels)
	if err != nil {
		return fmt.Errorf("stats overlay: %w", err)
	}
	tex, err := graphics.UploadAtlas(s.c.dev, atlas.Texture)
	if err != nil {
		return fmt.Errorf("stats overlay: %w", err)
	}
	s.atlas, s.texture = atlas, tex
	return nil
}

// lines formats the counters gathered so far this frame.
func (s *statsText) lines(ctx RenderContext) []string {
	if ctx.Frame.DT > 0 {
		// exponential smoothing
		s.fps = s.fps*0.9 + (1/ctx.Frame.DT)*0.1
	}
	st := s.c.stats
	out := []string{
		fmt.Sprintf("%s  %.0f fps", s.mode, s.fps),
		fmt.Sprintf("draws %d  shadow %d  depth %d  light %d", st.DrawCalls, st.ShadowPasses, st.DepthPrePasses, st.LightPasses),
		fmt.Sprintf("binds prog %d  mesh %d  mat %d  tex %d", st.ProgramBinds, st.MeshBinds, st.MaterialBinds, st.TextureBinds),
	}
	if sc := ctx.Scene; sc != nil {
		out = append(out, fmt.Sprintf("lights point %d  spot %d", sc.Point.Count, sc.Spot.Count))
	}
	return out
}

func (s *statsText) Render(ctx RenderContext) {
	if s.atlas == nil || !s.enabled() {
		return
	}
	m := s.atlas.Layout(s.lines(ctx), statsMargin, statsMargin+float32(s.atlas.LineHeight), 1)
	if m.VertexCount() == 0 {
		return
	}
	if err := s.upload(m); err != nil {
		if !s.warned {
			s.warned = true
			logger.Log.Warn("stats overlay upload failed", zap.Error(err))
		}
		return
	}

	dev := s.c.dev
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.CullFace)
	dev.Enable(gpu.Blend)
	dev.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)

	p := s.c.use(programText)
	s.c.proj.Push()
	s.c.view.Push()
	s.c.model.Push()
	s.c.proj.Load(linalg.Orthographic(0, float32(s.width), float32(s.height), 0, -1, 1))
	s.c.view.Identity()
	s.c.model.Identity()
	s.c.setCameraUniforms()
	p.SetMat4(graphics.UModelMatrix, s.c.model.Top)
	p.SetVec3(graphics.UTextColor, statsTextColor)
	p.SetInt(graphics.USampler, 0)

	dev.ActiveTexture(0)
	dev.BindTexture(s.texture)
	s.mesh.Bind(dev, p.Attribs)
	s.mesh.Draw(dev)
	s.c.stats.DrawCalls++

	s.c.endOverlay()
	dev.Disable(gpu.Blend)
	dev.Enable(gpu.CullFace)
}

func (s *statsText) upload(m *assets.Mesh) error {
	if s.mesh == nil {
		gm, err := graphics.UploadMesh(s.c.dev, m)
		if err != nil {
			return err
		}
		s.mesh = gm
		return nil
	}
	return s.mesh.Replace(s.c.dev, m)
}

func (s *statsText) Dispose() {
	if s.mesh != nil {
		s.mesh.Delete(s.c.dev)
		s.mesh = nil
	}
	if s.texture != 0 {
		s.c.dev.DeleteTexture(s.texture)
		s.texture = 0
	}
	s.atlas = nil
}

func (s *statsText) SetViewport(width, height int) {
	s.width, s.height = width, height
}
