package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/core/validator"
	"github.com/kochabx/authkit/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authkit.yaml"), []byte(content), 0o600))
	return dir
}

func loadSettings(t *testing.T, content string) (*Settings, error) {
	t.Helper()
	dir := writeConfig(t, content)

	settings := new(Settings)
	v := viper.New()
	loader := NewFileLoader("authkit.yaml", []string{dir}, v, validator.Validate)
	c := New(settings, WithViper(v), WithLoader(loader), WithWatch(false))
	return settings, c.Load()
}

func TestSettingsDefaults(t *testing.T) {
	settings, err := loadSettings(t, `
api:
  base_url: https://api.example.com
`)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", settings.API.BaseURL)
	assert.Equal(t, "/auth/refresh", settings.API.RefreshEndpoint)
	assert.Equal(t, 10*time.Second, settings.API.Timeout)
	assert.Equal(t, 30*time.Second, settings.API.RefreshLeeway)
	assert.Equal(t, "memory", settings.Storage.Backend)
	assert.Equal(t, "/session-expired", settings.Redirect.SessionExpiredRoute)
}

func TestSettingsOverrides(t *testing.T) {
	settings, err := loadSettings(t, `
api:
  base_url: https://api.example.com
  refresh_endpoint: /v2/auth/refresh
storage:
  backend: file
  file:
    path: /tmp/session.json
policy:
  public_endpoints:
    - /v2/auth/login
`)
	require.NoError(t, err)

	assert.Equal(t, "/v2/auth/refresh", settings.API.RefreshEndpoint)
	assert.Equal(t, "file", settings.Storage.Backend)
	assert.Equal(t, "/tmp/session.json", settings.Storage.File.Path)

	p := settings.BuildPolicy()
	assert.False(t, p.RequiresAuthentication("/v2/auth/login"))
	assert.True(t, p.RequiresAuthentication("/auth/login"), "override replaces the defaults")
}

func TestSettingsValidation(t *testing.T) {
	_, err := loadSettings(t, `
api:
  base_url: not-a-url
`)
	require.Error(t, err)
	assert.Equal(t, 400, errors.FromError(err).GetCode())
}

func TestInvalidBackendRejected(t *testing.T) {
	_, err := loadSettings(t, `
api:
  base_url: https://api.example.com
storage:
  backend: s3
`)
	require.Error(t, err)
}

func TestMissingFileReported(t *testing.T) {
	settings := new(Settings)
	v := viper.New()
	loader := NewFileLoader("authkit.yaml", []string{t.TempDir()}, v, validator.Validate)
	c := New(settings, WithViper(v), WithLoader(loader), WithWatch(false))

	err := c.Load()
	require.Error(t, err)
	assert.Equal(t, 404, errors.FromError(err).GetCode())
}

func TestBuildPolicyDefaults(t *testing.T) {
	settings := new(Settings)
	p := settings.BuildPolicy()
	assert.False(t, p.RequiresAuthentication("/auth/login"))
	assert.True(t, p.RequiresAuthentication("/account/balance"))
}
