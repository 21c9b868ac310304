package config

// Defaults mirror the legacy deployment so an empty environment behaves
// exactly like the service it replaces.
func Defaults() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        4445,
			CORSOrigins: []string{"*"},
		},
		API: APIConfig{
			Title:   "WhisperX Assistant API",
			Version: "1.0.0",
		},
		Whisper: WhisperConfig{
			DefaultModel:    "base",
			DefaultLanguage: "en",
			Device:          "cpu",
			ComputeType:     "int8",
			TempFileSuffix:  ".wav",
		},
		Storage: StorageConfig{
			ExternalEnabled: false,
			VolumePath:      "/app/models",
		},
		Engine: EngineConfig{
			BinPath: "whisper-server",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "auto",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
