package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mini-render/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOverridesDefaults(t *testing.T) {
	cfg, err := config.Read(strings.NewReader(`
[render]
mode = "Deferred"
shadow_map_size = 1024

[log]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, "deferred", cfg.Render.Mode)
	assert.Equal(t, 1024, cfg.Render.ShadowMapSize)
	assert.Equal(t, "cone", cfg.Render.SpotFOV)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 900, cfg.Window.Width)
}

func TestReadClampsShadowMapSize(t *testing.T) {
	cfg, err := config.Read(strings.NewReader("[render]\nshadow_map_size = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Render.ShadowMapSize)

	cfg, err = config.Read(strings.NewReader("[render]\nshadow_map_size = 100000\n"))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Render.ShadowMapSize)
}

func TestReadRejectsBadValues(t *testing.T) {
	for _, src := range []string{
		"[render]\nmode = \"raytraced\"\n",
		"[render]\nspot_fov = \"wide\"\n",
		"[render]\nunknown_key = 1\n",
		"not toml at all = = =",
	} {
		_, err := config.Read(strings.NewReader(src))
		assert.Error(t, err, src)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini-render.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"demo\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
}

func TestToggleDebugInset(t *testing.T) {
	config.SetDebugInset(false)
	assert.True(t, config.ToggleDebugInset())
	assert.True(t, config.GetDebugInset())
	assert.False(t, config.ToggleDebugInset())

	cfg := config.Default()
	config.Apply(cfg)
	assert.Equal(t, cfg.Render.DebugInset, config.GetDebugInset())
}

func TestRuntimeStatsAndFPSLimit(t *testing.T) {
	cfg, err := config.Read(strings.NewReader("[render]\nstats_text = false\nfps_limit = 5000\n"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Render.FPSLimit)

	config.Apply(cfg)
	assert.False(t, config.GetStatsText())
	assert.Equal(t, 1000, config.GetFPSLimit())
	assert.True(t, config.ToggleStatsText())

	config.SetFPSLimit(-3)
	assert.Equal(t, 0, config.GetFPSLimit())
	config.Apply(config.Default())
}
