package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8470, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Configuration.RegisterRoutes)
	assert.Equal(t, "api", cfg.Configuration.RoutePrefix)
	assert.True(t, cfg.Configuration.AllowCaseInsensitiveKeys)
	assert.Empty(t, cfg.Configuration.AllowedKeys)
	assert.Empty(t, cfg.Configuration.Hooks)
	assert.Equal(t, "configuration", cfg.Configuration.Model)
	assert.Equal(t, 15, cfg.Configuration.Pagination.DefaultPerPage)
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modelconfig.yaml")
	content := `
server:
  port: 9000
configuration:
  route_prefix: /v2/
  allow_case_insensitive_keys: false
  allowed_keys: [theme, locale]
  model: versioned
  hooks: [audit, pagination, envelope]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "v2", cfg.Configuration.RoutePrefix)
	assert.False(t, cfg.Configuration.AllowCaseInsensitiveKeys)
	assert.Equal(t, []string{"theme", "locale"}, cfg.Configuration.AllowedKeys)
	assert.Equal(t, "versioned", cfg.Configuration.Model)
	assert.Equal(t, []string{"audit", "pagination", "envelope"}, cfg.Configuration.Hooks)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MODELCONFIG_SERVER_PORT", "9100")
	t.Setenv("MODELCONFIG_CONFIGURATION_REGISTER_ROUTES", "false")
	t.Setenv("MODELCONFIG_DATABASE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.False(t, cfg.Configuration.RegisterRoutes)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}
