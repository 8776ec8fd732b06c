package main

import (
	"mini-render/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

func setupInputHandlers(window *glfw.Window, app *App) {
	app.input.SetKeyCallback(window)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if err := app.renderer.Resize(width, height); err != nil {
			logger.Log.Error("resize failed", zap.Error(err))
		}
	})

	// Called while the window is being resized.
	window.SetRefreshCallback(func(w *glfw.Window) {
		app.renderFrame(0)
		w.SwapBuffers()
	})
}
