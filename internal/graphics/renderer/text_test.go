package renderer_test

import (
	"testing"

	"mini-render/internal/entity"
	"mini-render/internal/gpu"
	"mini-render/internal/gpu/gputest"
	"mini-render/internal/graphics/renderer"
	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsTextOverlay(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})

	show := false
	a := newAssets("depth", "pointLight", "spotLight", "DEBUG_depthGrayscale", "DEBUG_text")
	r, err := renderer.New(renderer.Forward, rec, a, sc, renderer.Options{StatsText: func() bool { return show }})
	require.NoError(t, err)
	t.Cleanup(r.Dispose)
	text := rec.ProgramWith(marker("DEBUG_text"))
	require.NotZero(t, text)

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})
	assert.Empty(t, rec.DrawsWith(text))

	show = true
	rec.Reset()
	ctx := frame()
	ctx.DT = 1.0 / 60
	r.RenderScene(ctx, sc, []*entity.Entity{place(redCube, 0)})

	draws := rec.DrawsWith(text)
	require.Len(t, draws, 1)
	assert.Positive(t, draws[0].Count)
	assert.Zero(t, draws[0].Count%6, "six indices per glyph")
	assert.Equal(t, uint32(0), draws[0].Framebuffer)
	assert.Contains(t, rec.CallsOf("BlendFunc"), gputest.Call{Op: "BlendFunc", Args: []any{gpu.SrcAlpha, gpu.OneMinusSrcAlpha}})

	// the second frame reuses the same buffers
	buffers := rec.LiveCount("buffer")
	r.RenderScene(ctx, sc, []*entity.Entity{place(redCube, 0)})
	assert.Equal(t, buffers, rec.LiveCount("buffer"))
}

func TestStatsTextNeedsProgram(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	r, err := renderer.New(renderer.Forward, rec, forwardAssets(), sc, renderer.Options{StatsText: func() bool { return true }})
	require.NoError(t, err)
	t.Cleanup(r.Dispose)

	rec.Reset()
	r.RenderScene(frame(), sc, nil)
	assert.NotContains(t, rec.CallsOf("BlendFunc"), gputest.Call{Op: "BlendFunc", Args: []any{gpu.SrcAlpha, gpu.OneMinusSrcAlpha}})
}
