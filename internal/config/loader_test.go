package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whisperd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 4445, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "WhisperX Assistant API", cfg.API.Title)
	assert.Equal(t, "base", cfg.Whisper.DefaultModel)
	assert.Equal(t, "en", cfg.Whisper.DefaultLanguage)
	assert.Equal(t, "cpu", cfg.Whisper.Device)
	assert.Equal(t, "int8", cfg.Whisper.ComputeType)
	assert.Equal(t, ".wav", cfg.Whisper.TempFileSuffix)
	assert.False(t, cfg.Storage.ExternalEnabled)
	assert.Equal(t, "/app/models", cfg.Storage.VolumePath)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
whisper:
  default_model: small
storage:
  external_enabled: true
  cache_dir: /x
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "small", cfg.Whisper.DefaultModel)
	assert.True(t, cfg.Storage.ExternalEnabled)
	assert.Equal(t, "/x", cfg.Storage.CacheDir)

	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "en", cfg.Whisper.DefaultLanguage)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
`)
	t.Setenv("PORT", "7777")
	t.Setenv("DEFAULT_LANGUAGE", "de")
	t.Setenv("ENABLE_EXTERNAL_STORAGE", "yes")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "de", cfg.Whisper.DefaultLanguage)
	assert.True(t, cfg.Storage.ExternalEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 4445, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [broken")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestLoad_SchemaRejectsUnknownSection(t *testing.T) {
	path := writeConfig(t, `
servor:
  port: 9000
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_SchemaRejectsWrongType(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "nine thousand"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestParseBool_LegacySpellings(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "Yes", "on", "ON"} {
		assert.True(t, parseBool(v), "%q should be truthy", v)
	}
	for _, v := range []string{"false", "0", "no", "off", "anything"} {
		assert.False(t, parseBool(v), "%q should be falsy", v)
	}
}

func TestStorageView_CapturesCacheHomes(t *testing.T) {
	t.Setenv("HF_HOME", "/hf")
	t.Setenv("TRANSFORMERS_CACHE", "/tc")

	cfg := Defaults()
	view := cfg.Storage.View()

	assert.Equal(t, "/hf", view.HFHome)
	assert.Equal(t, "/tc", view.TransformersCache)
	assert.Equal(t, "/app/models", view.VolumePath)
	assert.False(t, view.ExternalEnabled)
}

func TestEngineTimeouts(t *testing.T) {
	e := EngineConfig{ReadyTimeoutSeconds: 45, RequestTimeoutSeconds: 120}

	assert.Equal(t, "45s", e.ReadyTimeout().String())
	assert.Equal(t, "2m0s", e.RequestTimeout().String())
	assert.Zero(t, EngineConfig{}.ReadyTimeout())
}
