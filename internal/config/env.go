package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ekisa-team/whisperd/internal/envvar"
)

// applyEnv overlays environment variables onto the configuration. The
// names match the legacy deployment, so existing compose files and unit
// definitions keep working unchanged.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, envvar.Host)
	setPort(&cfg.Server.Port, envvar.Port)
	if v, ok := lookup(envvar.CORSOrigins); ok {
		cfg.Server.CORSOrigins = splitCSV(v)
	}

	setString(&cfg.API.Title, envvar.APITitle)
	setString(&cfg.API.Version, envvar.APIVersion)

	setString(&cfg.Whisper.DefaultModel, envvar.DefaultWhisperModel)
	setString(&cfg.Whisper.DefaultLanguage, envvar.DefaultLanguage)
	setString(&cfg.Whisper.Device, envvar.WhisperDevice)
	setString(&cfg.Whisper.ComputeType, envvar.WhisperComputeType)
	setString(&cfg.Whisper.TempFileSuffix, envvar.TempFileSuffix)

	if v, ok := lookup(envvar.EnableExternalStorage); ok {
		cfg.Storage.ExternalEnabled = parseBool(v)
	}
	setString(&cfg.Storage.CacheDir, envvar.ModelsCacheDir)
	setString(&cfg.Storage.VolumePath, envvar.ModelsVolumePath)

	setString(&cfg.Engine.BinPath, envvar.WhisperServerBin)

	setString(&cfg.Logging.Level, envvar.LogLevel)
	setString(&cfg.Logging.Format, envvar.LogFormat)
	setString(&cfg.Logging.File, envvar.LogFile)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setPort(dst *int, name string) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		slog.Warn("Ignoring invalid port override", "name", name, "value", v)
		return
	}
	*dst = port
}

// parseBool accepts the legacy truthy spellings; everything else is false.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
