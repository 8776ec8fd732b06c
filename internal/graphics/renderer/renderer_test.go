package renderer_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"mini-render/internal/assets"
	"mini-render/internal/entity"
	"mini-render/internal/gpu"
	"mini-render/internal/gpu/gputest"
	"mini-render/internal/graphics"
	"mini-render/internal/graphics/renderer"
	"mini-render/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	transformUniforms = []string{graphics.UProjectionMatrix, graphics.UViewMatrix, graphics.UModelMatrix}
	materialUniforms  = []string{
		graphics.UMaterialAmbientColor, graphics.UMaterialDiffuseColor, graphics.UMaterialEmissiveColor,
		graphics.UMaterialSpecularColor, graphics.UMaterialShininess,
	}
	lightUniforms = []string{
		graphics.USampler, graphics.ULightPosition, graphics.ULightDiffuseColor,
		graphics.ULightSpecularColor, graphics.ULightIntensity,
	}
	spotUniforms = []string{
		graphics.UShadowMapSampler, graphics.ULightProjectionMatrix, graphics.ULightViewMatrix,
		graphics.ULightDirection, graphics.ULightAngle, graphics.ULightExponent,
	}
)

type programDef struct {
	attribs  []string
	uniforms []string
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

var programDefs = map[string]programDef{
	"depth": {
		attribs:  []string{graphics.AttrPosition},
		uniforms: transformUniforms,
	},
	"pointLight": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrNormal, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.UNormalMatrix}, lightUniforms, materialUniforms),
	},
	"spotLight": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrNormal, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.UNormalMatrix}, lightUniforms, spotUniforms, materialUniforms),
	},
	"gBuffer": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrNormal, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.UNormalMatrix, graphics.USampler}, materialUniforms),
	},
	"DEBUG_flatColor": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.USampler}),
	},
	"DEBUG_depthGrayscale": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.USampler}),
	},
	"DEBUG_text": {
		attribs:  []string{graphics.AttrPosition, graphics.AttrTexCoord},
		uniforms: concat(transformUniforms, []string{graphics.USampler, graphics.UTextColor}),
	},
}

func marker(program string) string { return "program=" + program + ";" }

// memAssets is an in-memory renderer.Assets.
type memAssets struct {
	shaders   map[string]string
	programs  map[string][2]string
	meshes    map[string]*assets.Mesh
	materials map[string]*assets.Material
	textures  map[string]*assets.Texture
}

func newAssets(programs ...string) *memAssets {
	a := &memAssets{
		shaders:   map[string]string{},
		programs:  map[string][2]string{},
		meshes:    map[string]*assets.Mesh{},
		materials: map[string]*assets.Material{},
		textures:  map[string]*assets.Texture{},
	}
	for _, name := range programs {
		def := programDefs[name]
		var vs strings.Builder
		fmt.Fprintf(&vs, "#version 410 core\n// %s\n", marker(name))
		for _, attr := range def.attribs {
			fmt.Fprintf(&vs, "in vec3 %s;\n", attr)
		}
		var fs strings.Builder
		fs.WriteString("#version 410 core\n")
		for _, u := range def.uniforms {
			fmt.Fprintf(&fs, "uniform float %s;\n", u)
		}
		a.shaders[name+".vert"] = vs.String()
		a.shaders[name+".frag"] = fs.String()
		a.programs[name] = [2]string{name + ".vert", name + ".frag"}
	}
	for _, name := range []string{"cube.obj", "ball.obj"} {
		a.meshes[name] = &assets.Mesh{
			Name:      name,
			Indices:   []uint32{0, 1, 2},
			Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			TexCoords: []float32{0, 0, 1, 0, 0, 1},
		}
	}
	a.materials["red.mtl"] = &assets.Material{Name: "red.mtl", Diffuse: mgl32.Vec3{1, 0, 0}, Shininess: 8}
	a.materials["blue.mtl"] = &assets.Material{Name: "blue.mtl", Diffuse: mgl32.Vec3{0, 0, 1}, Shininess: 8}
	a.textures["crate.png"] = assets.WhiteTexture("crate.png")
	return a
}

func forwardAssets() *memAssets {
	return newAssets("depth", "pointLight", "spotLight", "DEBUG_depthGrayscale")
}

func deferredAssets() *memAssets {
	return newAssets("depth", "gBuffer", "DEBUG_flatColor")
}

func lookupIn[T any](m map[string]T, name string) (T, error) {
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", assets.ErrNotFound, name)
	}
	return v, nil
}

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (a *memAssets) Shader(name string) (string, error)     { return lookupIn(a.shaders, name) }
func (a *memAssets) Program(name string) ([2]string, error) { return lookupIn(a.programs, name) }
func (a *memAssets) Programs() []string                     { return keys(a.programs) }
func (a *memAssets) Mesh(name string) (*assets.Mesh, error) { return lookupIn(a.meshes, name) }
func (a *memAssets) Meshes() []string                       { return keys(a.meshes) }
func (a *memAssets) Material(name string) (*assets.Material, error) {
	return lookupIn(a.materials, name)
}
func (a *memAssets) Materials() []string                          { return keys(a.materials) }
func (a *memAssets) Texture(name string) (*assets.Texture, error) { return lookupIn(a.textures, name) }
func (a *memAssets) Textures() []string                           { return keys(a.textures) }

var (
	redCube  = &entity.Model{Name: "redCube", Meshes: []string{"cube.obj"}, Materials: []string{"red.mtl"}, Textures: []string{"crate.png"}}
	blueBall = &entity.Model{Name: "blueBall", Meshes: []string{"ball.obj"}, Materials: []string{"blue.mtl"}}
)

func place(m *entity.Model, x float32) *entity.Entity {
	return entity.New(m, mgl32.Vec3{x, 0, -5}, mgl32.Vec3{}, mgl32.Vec3{})
}

func vec(x, y, z float32) *mgl32.Vec3 { v := mgl32.Vec3{x, y, z}; return &v }
func num(f float32) *float32          { return &f }

func addSpot(t *testing.T, sc *scene.Scene, pos mgl32.Vec3) string {
	t.Helper()
	id, err := sc.AddLight("", scene.Spot, scene.LightOptions{
		Position:      &pos,
		Direction:     vec(0, -1, 0),
		DiffuseColor:  vec(1, 1, 1),
		SpecularColor: vec(1, 1, 1),
		Intensity:     num(1),
		Angle:         num(30),
		Exponent:      num(2),
	})
	require.NoError(t, err)
	return id
}

func addPoint(t *testing.T, sc *scene.Scene, pos, color mgl32.Vec3) {
	t.Helper()
	_, err := sc.AddLight("", scene.Point, scene.LightOptions{
		Position:      &pos,
		DiffuseColor:  &color,
		SpecularColor: vec(0.5, 0.5, 0.5),
		Intensity:     num(3),
	})
	require.NoError(t, err)
}

func frame() renderer.FrameContext {
	return renderer.FrameContext{Camera: graphics.NewCamera(), ViewportWidth: 900, ViewportHeight: 600}
}

func newForward(t *testing.T, rec *gputest.Recorder, sc *scene.Scene, opts renderer.Options) renderer.Renderer {
	t.Helper()
	r, err := renderer.New(renderer.Forward, rec, forwardAssets(), sc, opts)
	require.NoError(t, err)
	t.Cleanup(r.Dispose)
	return r
}

// callsBetween returns the calls after the first UseProgram(from) and
// before the next UseProgram.
func callsBetween(rec *gputest.Recorder, program uint32) []gputest.Call {
	var out []gputest.Call
	in := false
	for _, c := range rec.Calls {
		if c.Op == "UseProgram" {
			if in {
				break
			}
			in = c.Args[0] == program
			continue
		}
		if in {
			out = append(out, c)
		}
	}
	return out
}

func TestForwardSingleSpotLight(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{})

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})

	stats := r.Stats()
	assert.Equal(t, 1, stats.ShadowPasses)
	assert.Equal(t, 1, stats.DepthPrePasses)
	assert.Equal(t, 1, stats.LightPasses)

	shadowFBO := sc.Spot.ShadowMaps[0].Framebuffer
	require.NotZero(t, shadowFBO)
	var shadowDraws, screenDraws int
	for _, d := range rec.Draws {
		switch d.Framebuffer {
		case shadowFBO:
			shadowDraws++
		case 0:
			screenDraws++
		}
	}
	assert.Equal(t, 1, shadowDraws)
	assert.Equal(t, 2, screenDraws, "depth pre-pass and one spot light pass")

	spot := rec.ProgramWith(marker("spotLight"))
	assert.Len(t, rec.DrawsWith(spot), 1)
	assert.Empty(t, rec.DrawsWith(rec.ProgramWith(marker("pointLight"))))

	wantProj, wantView := graphics.SpotLightTransform(sc.Spot.Positions[0], sc.Spot.Directions[0], sc.Spot.Angles[0], graphics.SpotFOVCone)
	assert.Equal(t, wantProj, sc.Spot.ProjectionMatrices[0])
	assert.Equal(t, wantView, sc.Spot.ViewMatrices[0])
}

func TestForwardShadowMapBoundAroundSpotPass(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{})

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})

	var unit1 []uint32
	for _, c := range callsBetween(rec, rec.ProgramWith(marker("spotLight"))) {
		if c.Op == "BindTexture" && c.Args[0] == uint32(1) {
			unit1 = append(unit1, c.Args[1].(uint32))
		}
	}
	assert.Equal(t, []uint32{sc.Spot.ShadowMaps[0].DepthTexture, 0}, unit1)
	assert.Equal(t, uint32(0), rec.Textures[1])
}

func TestForwardPassStateOrder(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{ShadowMapSize: 256})

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})

	var cull []gpu.Face
	for _, c := range rec.CallsOf("CullFace") {
		cull = append(cull, c.Args[0].(gpu.Face))
	}
	assert.Equal(t, []gpu.Face{gpu.Front, gpu.Back}, cull)

	var funcs []gpu.DepthFunc
	for _, c := range rec.CallsOf("DepthFunc") {
		funcs = append(funcs, c.Args[0].(gpu.DepthFunc))
	}
	assert.Equal(t, []gpu.DepthFunc{gpu.LessEqual, gpu.Equal}, funcs)

	blend := rec.CallsOf("BlendFunc")
	require.Len(t, blend, 1)
	assert.Equal(t, []any{gpu.One, gpu.One}, blend[0].Args)

	assert.Contains(t, rec.CallsOf("Viewport"), gputest.Call{Op: "Viewport", Args: []any{0, 0, 256, 256}})
}

func TestForwardBindsSharedResourcesOnce(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{})

	batch := []*entity.Entity{place(redCube, -2), place(redCube, 0), place(redCube, 2)}
	r.RenderScene(frame(), sc, batch)

	stats := r.Stats()
	assert.Equal(t, 9, stats.DrawCalls)
	// One mesh bind under the depth program (shadow and pre-pass) and one
	// under the spot program.
	assert.Equal(t, 2, stats.MeshBinds)
	assert.Equal(t, 1, stats.MaterialBinds)
	assert.Equal(t, 1, stats.TextureBinds)

	mixed := []*entity.Entity{place(redCube, -2), place(blueBall, 0), place(redCube, 2)}
	r.RenderScene(frame(), sc, mixed)
	assert.Equal(t, 3, r.Stats().MaterialBinds)
	assert.Equal(t, 3, r.Stats().TextureBinds)
	assert.Greater(t, r.Stats().MeshBinds, stats.MeshBinds)
}

func TestForwardPointLightUsesPointData(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{7, 8, 9})
	addPoint(t, sc, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.2, 0.4, 0.6})
	r := newForward(t, rec, sc, renderer.Options{})

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})

	point := rec.ProgramWith(marker("pointLight"))
	posLoc := rec.UniformLocation(point, graphics.ULightPosition)
	colorLoc := rec.UniformLocation(point, graphics.ULightDiffuseColor)

	pass := callsBetween(rec, point)
	assert.Contains(t, pass, gputest.Call{Op: "Uniform3f", Args: []any{posLoc, mgl32.Vec3{1, 2, 3}}})
	assert.Contains(t, pass, gputest.Call{Op: "Uniform3f", Args: []any{colorLoc, mgl32.Vec3{0.2, 0.4, 0.6}}})
	assert.NotContains(t, pass, gputest.Call{Op: "Uniform3f", Args: []any{posLoc, mgl32.Vec3{7, 8, 9}}})
	assert.Len(t, rec.DrawsWith(point), 1)
	assert.Equal(t, 2, r.Stats().LightPasses)
}

func TestForwardDebugInset(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	addSpot(t, sc, mgl32.Vec3{3, 5, 0})
	show := false
	r := newForward(t, rec, sc, renderer.Options{DebugInset: func() bool { return show }})
	inset := rec.ProgramWith(marker("DEBUG_depthGrayscale"))

	rec.Reset()
	r.RenderScene(frame(), sc, nil)
	assert.Empty(t, rec.DrawsWith(inset))

	show = true
	rec.Reset()
	r.RenderScene(frame(), sc, nil)
	draws := rec.DrawsWith(inset)
	require.Len(t, draws, 2)
	assert.Equal(t, int32(6), draws[0].Count)

	viewports := rec.CallsOf("Viewport")
	assert.Contains(t, viewports, gputest.Call{Op: "Viewport", Args: []any{0, 240, 240, 240}})
	assert.Contains(t, viewports, gputest.Call{Op: "Viewport", Args: []any{0, 0, 240, 240}})
}

func TestForwardDebugInsetOnlyShowsActiveSlots(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	r := newForward(t, rec, sc, renderer.Options{DebugInset: func() bool { return true }})
	inset := rec.ProgramWith(marker("DEBUG_depthGrayscale"))

	rec.Reset()
	r.RenderScene(frame(), sc, nil)
	assert.Empty(t, rec.DrawsWith(inset))

	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	rec.Reset()
	r.RenderScene(frame(), sc, nil)
	require.Len(t, rec.DrawsWith(inset), 1)

	var unit0 []uint32
	for _, c := range callsBetween(rec, inset) {
		if c.Op == "BindTexture" && c.Args[0] == uint32(0) {
			unit0 = append(unit0, c.Args[1].(uint32))
		}
	}
	assert.Equal(t, []uint32{sc.Spot.ShadowMaps[0].DepthTexture}, unit0)
	viewports := rec.CallsOf("Viewport")
	assert.Contains(t, viewports, gputest.Call{Op: "Viewport", Args: []any{0, 240, 240, 240}})
	assert.NotContains(t, viewports, gputest.Call{Op: "Viewport", Args: []any{0, 0, 240, 240}})
}

func TestForwardSkipsUnknownMesh(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{})

	ghost := &entity.Model{Name: "ghost", Meshes: []string{"missing.obj"}}
	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(ghost, 0), place(redCube, 1)})
	assert.Equal(t, 3, r.Stats().DrawCalls)
}

func TestForwardEmptySceneDrawsNothing(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	r := newForward(t, rec, sc, renderer.Options{})

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})
	stats := r.Stats()
	assert.Zero(t, stats.ShadowPasses)
	assert.Zero(t, stats.LightPasses)
	assert.Equal(t, 1, stats.DrawCalls, "only the depth pre-pass")
}

func TestForwardRemoveLightShrinksPasses(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	first := addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	addSpot(t, sc, mgl32.Vec3{3, 5, 0})
	r := newForward(t, rec, sc, renderer.Options{})

	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})
	assert.Equal(t, 2, r.Stats().ShadowPasses)

	require.NoError(t, sc.RemoveLight(scene.Spot, first))
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0)})
	assert.Equal(t, 1, r.Stats().ShadowPasses)
	assert.Equal(t, mgl32.Vec3{3, 5, 0}, sc.Spot.Positions[0])
}

func TestDisposeReleasesEverything(t *testing.T) {
	for _, mode := range []renderer.Mode{renderer.Forward, renderer.Deferred} {
		t.Run(mode.String(), func(t *testing.T) {
			rec := gputest.New()
			sc := scene.New(mgl32.Vec3{})
			a := forwardAssets()
			if mode == renderer.Deferred {
				a = deferredAssets()
			}
			r, err := renderer.New(mode, rec, a, sc, renderer.Options{})
			require.NoError(t, err)
			r.Dispose()

			for _, kind := range []string{"shader", "program", "buffer", "texture", "framebuffer"} {
				assert.Zero(t, rec.LiveCount(kind), kind)
			}
			assert.Zero(t, sc.Spot.ShadowMaps[0].Framebuffer)
		})
	}
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name   string
		mode   renderer.Mode
		assets *memAssets
		setup  func(*gputest.Recorder)
		stage  string
		check  func(*testing.T, error)
	}{
		{
			name:   "no depth textures",
			mode:   renderer.Forward,
			assets: forwardAssets(),
			setup:  func(r *gputest.Recorder) { r.Caps.DepthTexture = false },
			stage:  renderer.StageExtensions,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, renderer.ErrMissingCapability) },
		},
		{
			name:   "too few draw buffers",
			mode:   renderer.Deferred,
			assets: deferredAssets(),
			setup:  func(r *gputest.Recorder) { r.Caps.MaxDrawBuffers = 2 },
			stage:  renderer.StageExtensions,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, renderer.ErrMissingCapability) },
		},
		{
			name:   "compile error",
			mode:   renderer.Forward,
			assets: forwardAssets(),
			setup:  func(r *gputest.Recorder) { r.CompileErrors[gpu.FragmentStage] = "0:1: syntax error" },
			stage:  renderer.StageShaders,
			check: func(t *testing.T, err error) {
				var ce *graphics.ShaderCompileError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, gpu.FragmentStage, ce.Stage)
				assert.Contains(t, ce.Log, "syntax error")
			},
		},
		{
			name:   "link error",
			mode:   renderer.Forward,
			assets: forwardAssets(),
			setup:  func(r *gputest.Recorder) { r.LinkError = "varying mismatch" },
			stage:  renderer.StageShaders,
			check: func(t *testing.T, err error) {
				var le *graphics.ShaderLinkError
				assert.ErrorAs(t, err, &le)
			},
		},
		{
			name:   "missing program",
			mode:   renderer.Forward,
			assets: newAssets("depth", "pointLight", "DEBUG_depthGrayscale"),
			stage:  renderer.StageShaders,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, renderer.ErrMissingProgram) },
		},
		{
			name:   "incomplete shadow map",
			mode:   renderer.Forward,
			assets: forwardAssets(),
			setup:  func(r *gputest.Recorder) { r.Status = gpu.FramebufferUnsupported },
			stage:  renderer.StageShadowMaps,
			check: func(t *testing.T, err error) {
				var fe *graphics.FramebufferError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, gpu.FramebufferUnsupported, fe.Status)
			},
		},
		{
			name:   "incomplete g-buffer",
			mode:   renderer.Deferred,
			assets: deferredAssets(),
			setup:  func(r *gputest.Recorder) { r.Status = gpu.FramebufferIncompleteAttachment },
			stage:  renderer.StageGBuffer,
			check: func(t *testing.T, err error) {
				var fe *graphics.FramebufferError
				assert.ErrorAs(t, err, &fe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.New()
			if tt.setup != nil {
				tt.setup(rec)
			}
			r, err := renderer.New(tt.mode, rec, tt.assets, scene.New(mgl32.Vec3{}), renderer.Options{})
			require.Error(t, err)
			assert.Nil(t, r)

			var ie *renderer.InitError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.stage, ie.Stage)
			tt.check(t, err)

			for _, kind := range []string{"shader", "program", "buffer", "texture", "framebuffer"} {
				assert.Zero(t, rec.LiveCount(kind), "%s leaked after failed init", kind)
			}
		})
	}
}

func TestDeferredSequence(t *testing.T) {
	rec := gputest.New()
	sc := scene.New(mgl32.Vec3{})
	addSpot(t, sc, mgl32.Vec3{0, 5, 0})
	r, err := renderer.New(renderer.Deferred, rec, deferredAssets(), sc, renderer.Options{Width: 900, Height: 600})
	require.NoError(t, err)
	t.Cleanup(r.Dispose)

	assert.Equal(t, 1, rec.Count("CreateFramebuffer"), "deferred allocates no shadow maps")
	drawBuffers := rec.CallsOf("DrawBuffers")
	require.Len(t, drawBuffers, 1)
	assert.Len(t, drawBuffers[0].Args[0], graphics.GBufferChannels)

	rec.Reset()
	r.RenderScene(frame(), sc, []*entity.Entity{place(redCube, 0), place(blueBall, 1)})

	stats := r.Stats()
	assert.Equal(t, 1, stats.DepthPrePasses)
	assert.Zero(t, stats.ShadowPasses)
	assert.Zero(t, stats.LightPasses)

	depth := rec.ProgramWith(marker("depth"))
	fill := rec.ProgramWith(marker("gBuffer"))
	flat := rec.ProgramWith(marker("DEBUG_flatColor"))
	assert.Len(t, rec.DrawsWith(depth), 2)
	assert.Len(t, rec.DrawsWith(fill), 2)
	for _, d := range append(rec.DrawsWith(depth), rec.DrawsWith(fill)...) {
		assert.NotZero(t, d.Framebuffer, "scene draws go to the g-buffer")
	}

	quads := rec.DrawsWith(flat)
	require.Len(t, quads, graphics.GBufferChannels)
	for _, d := range quads {
		assert.Zero(t, d.Framebuffer)
	}
	viewports := rec.CallsOf("Viewport")
	for _, want := range [][]any{{0, 300, 450, 300}, {0, 0, 450, 300}, {450, 300, 450, 300}, {450, 0, 450, 300}} {
		assert.Contains(t, viewports, gputest.Call{Op: "Viewport", Args: want})
	}

	var funcs []gpu.DepthFunc
	for _, c := range rec.CallsOf("DepthFunc") {
		funcs = append(funcs, c.Args[0].(gpu.DepthFunc))
	}
	assert.Equal(t, []gpu.DepthFunc{gpu.LessEqual, gpu.Equal}, funcs)
}

func TestDeferredResize(t *testing.T) {
	rec := gputest.New()
	r, err := renderer.New(renderer.Deferred, rec, deferredAssets(), nil, renderer.Options{Width: 900, Height: 600})
	require.NoError(t, err)
	t.Cleanup(r.Dispose)

	rec.Reset()
	require.NoError(t, r.Resize(400, 200))
	assert.Equal(t, 1, rec.LiveCount("framebuffer"))
	assert.Contains(t, rec.CallsOf("TexImage2D"), gputest.Call{Op: "TexImage2D", Args: []any{gpu.RGBA8, 400, 200, 0}})

	rec.Reset()
	require.NoError(t, r.Resize(400, 200))
	assert.Zero(t, rec.Count("CreateFramebuffer"))
}

func TestParseMode(t *testing.T) {
	m, err := renderer.ParseMode("Deferred")
	require.NoError(t, err)
	assert.Equal(t, renderer.Deferred, m)

	m, err = renderer.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, renderer.Forward, m)

	_, err = renderer.ParseMode("raytraced")
	assert.Error(t, err)
}
