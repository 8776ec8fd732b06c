package main

import (
	"fmt"
	"time"

	"mini-render/internal/config"
	"mini-render/internal/graphics/renderer"
	"mini-render/internal/input"
	"mini-render/internal/logger"
	"mini-render/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Run drives frames until the window closes.
func (a *App) Run() {
	lastTime := time.Now()
	lastFPSCheck := time.Now()

	for !a.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		a.update(dt)
		a.renderFrame(dt)
		func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
		a.input.PostUpdate()
		a.limiter.Wait()

		a.frames++
		if time.Since(lastFPSCheck) >= time.Second {
			s := a.renderer.Stats()
			fmt.Printf("FPS: %d  draws: %d  passes: %d shadow / %d light  [%s]\n",
				a.frames, s.DrawCalls, s.ShadowPasses, s.LightPasses, profiling.TopN(3))
			a.frames = 0
			lastFPSCheck = time.Now()
		}
	}
}

func (a *App) update(dt float64) {
	defer profiling.Track("app.update")()

	if a.input.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if a.input.JustPressed(input.ActionToggleInset) {
		logger.Log.Info("debug inset", zap.Bool("enabled", config.ToggleDebugInset()))
	}
	if a.input.JustPressed(input.ActionToggleStats) {
		logger.Log.Info("stats text", zap.Bool("enabled", config.ToggleStatsText()))
	}
	if a.input.JustPressed(input.ActionToggleProfiling) {
		fmt.Println(profiling.TopN(10))
	}

	input.UpdateCamera(a.input, a.camera, dt)
	for _, e := range a.entities {
		e.Update(dt)
	}
}

func (a *App) renderFrame(dt float64) {
	width, height := a.window.GetFramebufferSize()
	a.renderer.RenderScene(renderer.FrameContext{
		Camera:         a.camera,
		ViewportWidth:  width,
		ViewportHeight: height,
		DT:             dt,
	}, a.scene, a.entities)
}
