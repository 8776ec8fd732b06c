package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"mini-render/internal/config"
	"mini-render/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	configPath := flag.String("config", "mini-render.toml", "path to the TOML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		closer.Exit(1)
	}
	config.Apply(cfg)

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		fmt.Fprintln(os.Stderr, err)
		closer.Exit(1)
	}
	closer.Bind(logger.Sync)

	if err := glfw.Init(); err != nil {
		logger.Log.Fatal("glfw init failed", zap.Error(err))
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		logger.Log.Fatal("window setup failed", zap.Error(err))
	}
	defer window.Destroy()

	app, err := setupApp(cfg, window)
	if err != nil {
		logger.Log.Fatal("startup failed", zap.Error(err))
	}
	defer app.Dispose()

	setupInputHandlers(window, app)
	app.Run()
}
