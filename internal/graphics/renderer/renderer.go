package renderer

import (
	"fmt"

	"mini-render/internal/gpu"
	"mini-render/internal/logger"
	"mini-render/internal/scene"

	"go.uber.org/zap"
)

// New builds the renderer for mode and uploads every asset in a. When sc
// is non-nil the forward renderer records its shadow targets on it. The
// overlays are drawn after the main passes in the order given.
//
// On failure every GPU object created so far is released and the error is
// an *InitError naming the stage.
func New(mode Mode, dev gpu.Device, a Assets, sc *scene.Scene, opts Options, overlays ...Renderable) (Renderer, error) {
	var (
		r    Renderer
		base *core
	)
	switch mode {
	case Forward:
		f, err := newForward(dev, a, opts)
		if err != nil {
			return nil, err
		}
		f.attach(sc)
		r, base = f, f.core
	case Deferred:
		d, err := newDeferred(dev, a, opts)
		if err != nil {
			return nil, err
		}
		r, base = d, d.core
	default:
		return nil, fmt.Errorf("renderer: unknown mode %v", mode)
	}

	var builtin []Renderable
	if opts.StatsText != nil {
		builtin = append(builtin, newStatsText(base, mode, opts.StatsText))
	}
	base.addOverlays(append(builtin, overlays...))
	dev.ClearColor(0, 0, 0, 1)
	dev.Enable(gpu.DepthTest)
	dev.Enable(gpu.CullFace)
	dev.CullFace(gpu.Back)

	logger.Log.Info("renderer ready",
		zap.Stringer("mode", mode),
		zap.Int("programs", len(base.programs)),
		zap.Int("meshes", len(base.meshes)),
		zap.Int("materials", len(base.materials)),
		zap.Int("textures", len(base.textures.Names())))
	return r, nil
}
