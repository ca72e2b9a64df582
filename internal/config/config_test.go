package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAXFOLIO_DATA_DIR", t.TempDir())
	t.Setenv("TAXFOLIO_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEV_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TAXFOLIO_DATA_DIR", t.TempDir())
	t.Setenv("TAXFOLIO_PORT", "9321")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9321, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("TAXFOLIO_DATA_DIR", t.TempDir())
	t.Setenv("TAXFOLIO_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestParamsDBPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/taxfolio"}
	assert.Equal(t, filepath.Join("/var/lib/taxfolio", "taxparams.db"), cfg.ParamsDBPath())
}
