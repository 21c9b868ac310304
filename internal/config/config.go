// Package config loads, validates and watches the service
// configuration. The effective configuration is compiled-in defaults,
// overlaid by the YAML file when present, overlaid by environment
// variables whose names match the legacy deployment.
package config

import (
	"os"
	"time"

	"github.com/ekisa-team/whisperd/internal/envvar"
	"github.com/ekisa-team/whisperd/internal/storage"
)

// Config is the whole service configuration.
type Config struct {
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Server  ServerConfig  `json:"server,omitempty"  yaml:"server,omitempty"`
	API     APIConfig     `json:"api,omitempty"     yaml:"api,omitempty"`
	Whisper WhisperConfig `json:"whisper,omitempty" yaml:"whisper,omitempty"`
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	Engine  EngineConfig  `json:"engine,omitempty"  yaml:"engine,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ServerConfig holds the HTTP listener settings. Fixed at startup.
type ServerConfig struct {
	Host        string   `json:"host,omitempty"         yaml:"host,omitempty"`
	Port        int      `json:"port,omitempty"         yaml:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// APIConfig holds the published API metadata.
type APIConfig struct {
	Title   string `json:"title,omitempty"   yaml:"title,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// WhisperConfig holds the transcription defaults applied when a request
// leaves them unset.
type WhisperConfig struct {
	DefaultModel    string `json:"default_model,omitempty"    yaml:"default_model,omitempty"`
	DefaultLanguage string `json:"default_language,omitempty" yaml:"default_language,omitempty"`
	Device          string `json:"device,omitempty"           yaml:"device,omitempty"`
	ComputeType     string `json:"compute_type,omitempty"     yaml:"compute_type,omitempty"`
	TempFileSuffix  string `json:"temp_file_suffix,omitempty" yaml:"temp_file_suffix,omitempty"`
}

// StorageConfig holds the model store settings. Fixed at startup: the
// locator captures one view at boot and never sees later edits.
type StorageConfig struct {
	ExternalEnabled bool   `json:"external_enabled,omitempty" yaml:"external_enabled,omitempty"`
	CacheDir        string `json:"cache_dir,omitempty"        yaml:"cache_dir,omitempty"`
	VolumePath      string `json:"volume_path,omitempty"      yaml:"volume_path,omitempty"`
}

// View captures the locator's startup view, folding in the cache homes
// inherited from the process environment.
func (s StorageConfig) View() storage.Config {
	return storage.Config{
		ExternalEnabled:   s.ExternalEnabled,
		CacheDir:          s.CacheDir,
		VolumePath:        s.VolumePath,
		HFHome:            os.Getenv(envvar.HFHome),
		TransformersCache: os.Getenv(envvar.TransformersCache),
	}
}

// EngineConfig holds the whisper-server process settings.
type EngineConfig struct {
	BinPath               string `json:"bin_path,omitempty"                yaml:"bin_path,omitempty"`
	Port                  int    `json:"port,omitempty"                    yaml:"port,omitempty"`
	ReadyTimeoutSeconds   int    `json:"ready_timeout_seconds,omitempty"   yaml:"ready_timeout_seconds,omitempty"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`
}

// ReadyTimeout returns the configured readiness wait, zero when unset.
func (e EngineConfig) ReadyTimeout() time.Duration {
	return time.Duration(e.ReadyTimeoutSeconds) * time.Second
}

// RequestTimeout returns the configured inference timeout, zero when unset.
func (e EngineConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutSeconds) * time.Second
}

// LoggingConfig holds the log sink settings. The level is the only
// setting applied live on reload.
type LoggingConfig struct {
	Level      string `json:"level,omitempty"        yaml:"level,omitempty"`
	Format     string `json:"format,omitempty"       yaml:"format,omitempty"`
	File       string `json:"file,omitempty"         yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"  yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"  yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
}
