package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:       "8490",
		JWTSecret:  "dev-secret",
		DBDriver:   "postgres",
		DBPassword: "password",
		DenialMode: "forbidden",
		PageSize:   10,
		Env:        "development",
	}
}

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_MissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_UnsupportedDriver(t *testing.T) {
	cfg := validConfig()
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_UnsupportedDenialMode(t *testing.T) {
	cfg := validConfig()
	cfg.DenialMode = "silent"
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_RedirectDenialMode(t *testing.T) {
	cfg := validConfig()
	cfg.DenialMode = "redirect"
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_NonPositivePageSize(t *testing.T) {
	cfg := validConfig()
	cfg.PageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_ProductionRequiresStrongSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate())

	cfg.DBPassword = "s0me-strong-db-password"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "forbidden", cfg.DenialMode)
	assert.False(t, cfg.StaffOverride)
}
