package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config is the on-disk configuration, read from a TOML file.
type Config struct {
	Window Window `toml:"window"`
	Render Render `toml:"render"`
	Assets Assets `toml:"assets"`
	Log    Log    `toml:"log"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// Render selects the pipeline and its tunables.
type Render struct {
	Mode          string `toml:"mode"`            // forward | deferred
	ShadowMapSize int    `toml:"shadow_map_size"` // square, in texels
	DebugInset    bool   `toml:"debug_inset"`
	StatsText     bool   `toml:"stats_text"`
	SpotFOV       string `toml:"spot_fov"`  // cone | legacy
	FPSLimit      int    `toml:"fps_limit"` // 0 = unlimited
}

type Assets struct {
	Root     string `toml:"root"`
	Manifest string `toml:"manifest"`
	Level    string `toml:"level"`
}

type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: Window{Width: 900, Height: 600, Title: "mini-render", VSync: true},
		Render: Render{Mode: "forward", ShadowMapSize: 512, DebugInset: true, StatsText: true, SpotFOV: "cone"},
		Assets: Assets{Root: "assets", Manifest: "manifest.yaml", Level: "levels/demo.yaml"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes TOML from r on top of Default. Unknown keys are rejected.
func Read(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}

	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Render.Mode = strings.ToLower(c.Render.Mode)
	switch c.Render.Mode {
	case "forward", "deferred":
	default:
		return fmt.Errorf("config: render.mode %q: want forward or deferred", c.Render.Mode)
	}

	c.Render.SpotFOV = strings.ToLower(c.Render.SpotFOV)
	switch c.Render.SpotFOV {
	case "cone", "legacy":
	default:
		return fmt.Errorf("config: render.spot_fov %q: want cone or legacy", c.Render.SpotFOV)
	}

	// Clamp to reasonable values
	c.Render.ShadowMapSize = clamp(c.Render.ShadowMapSize, 64, 4096)
	c.Render.FPSLimit = clamp(c.Render.FPSLimit, 0, 1000)
	c.Window.Width = clamp(c.Window.Width, 240, 7680)
	c.Window.Height = clamp(c.Window.Height, 240, 4320)
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RuntimeSettings holds values that may be toggled while running.
type RuntimeSettings struct {
	mu         sync.RWMutex
	debugInset bool
	statsText  bool
	fpsLimit   int
}

var globalRuntimeSettings = &RuntimeSettings{debugInset: true, statsText: true}

// Apply copies the runtime-mutable fields of cfg into the global settings.
func Apply(cfg Config) {
	SetDebugInset(cfg.Render.DebugInset)
	SetStatsText(cfg.Render.StatsText)
	SetFPSLimit(cfg.Render.FPSLimit)
}

// GetDebugInset reports whether shadow-map insets are drawn.
func GetDebugInset() bool {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.debugInset
}

func SetDebugInset(enabled bool) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.debugInset = enabled
}

// ToggleDebugInset flips the inset flag and returns the new value.
func ToggleDebugInset() bool {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.debugInset = !globalRuntimeSettings.debugInset
	return globalRuntimeSettings.debugInset
}

// GetStatsText reports whether the frame counters are printed on screen.
func GetStatsText() bool {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.statsText
}

func SetStatsText(enabled bool) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.statsText = enabled
}

func ToggleStatsText() bool {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.statsText = !globalRuntimeSettings.statsText
	return globalRuntimeSettings.statsText
}

// GetFPSLimit returns the frame cap, 0 meaning unlimited.
func GetFPSLimit() int {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.fpsLimit
}

func SetFPSLimit(limit int) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	globalRuntimeSettings.fpsLimit = limit
}
