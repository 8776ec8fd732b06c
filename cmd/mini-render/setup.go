package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"mini-render/internal/assets"
	"mini-render/internal/config"
	"mini-render/internal/entity"
	"mini-render/internal/gpu"
	"mini-render/internal/graphics"
	"mini-render/internal/graphics/renderer"
	"mini-render/internal/input"
	"mini-render/internal/level"
	"mini-render/internal/logger"
	"mini-render/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

func setupWindow(cfg config.Window) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// App holds everything the frame loop touches.
type App struct {
	window   *glfw.Window
	device   *gpu.GLDevice
	renderer renderer.Renderer
	scene    *scene.Scene
	entities []*entity.Entity
	camera   *graphics.Camera
	input    *input.InputManager
	limiter  *FPSLimiter

	frames int
}

// setupApp loads assets and the level, then builds the renderer. Nothing is
// uploaded until every asset has loaded.
func setupApp(cfg config.Config, window *glfw.Window) (*App, error) {
	fsys := os.DirFS(cfg.Assets.Root)

	manifest, err := assets.LoadManifest(fsys, cfg.Assets.Manifest)
	if err != nil {
		return nil, err
	}
	store := assets.NewStore(fsys)
	if err := store.Load(context.Background(), manifest); err != nil {
		return nil, err
	}

	lvl, err := level.Load(fsys, cfg.Assets.Level)
	if err != nil {
		return nil, err
	}
	sc, entities, err := level.Build(lvl, store.Models())
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path.Base(cfg.Assets.Level), err)
	}

	mode, err := renderer.ParseMode(cfg.Render.Mode)
	if err != nil {
		return nil, err
	}
	fov, err := graphics.ParseSpotFOVMode(cfg.Render.SpotFOV)
	if err != nil {
		return nil, err
	}

	dev, err := gpu.NewGLDevice()
	if err != nil {
		return nil, err
	}

	width, height := window.GetFramebufferSize()
	r, err := renderer.New(mode, dev, store, sc, renderer.Options{
		Width:         width,
		Height:        height,
		ShadowMapSize: cfg.Render.ShadowMapSize,
		SpotFOV:       fov,
		DebugInset:    config.GetDebugInset,
		StatsText:     config.GetStatsText,
	})
	if err != nil {
		dev.Release()
		return nil, err
	}

	cam := graphics.NewCamera()
	cam.Position = [3]float32{0, 2, 8}
	cam.Rotation = [3]float32{0.2, 0, 0}

	logger.Log.Info("scene ready",
		zap.Int("pointLights", sc.Point.Count),
		zap.Int("spotLights", sc.Spot.Count),
		zap.Int("entities", len(entities)))

	return &App{
		window:   window,
		device:   dev,
		renderer: r,
		scene:    sc,
		entities: entities,
		camera:   cam,
		input:    input.NewInputManager(),
		limiter:  NewFPSLimiter(),
	}, nil
}

func (a *App) Dispose() {
	a.renderer.Dispose()
	a.device.Release()
}
