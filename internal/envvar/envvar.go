package envvar

const (
	// WhisperdEnv is the environment variable used to determine the environment
	WhisperdEnv = "WHISPERD_ENV"

	// Host is the environment variable used to determine the bind address
	Host = "HOST"

	// Port is the environment variable used to determine the HTTP port
	Port = "PORT"

	// CORSOrigins is a comma-separated list of allowed CORS origins
	CORSOrigins = "CORS_ORIGINS"

	// APITitle overrides the API title reported by info endpoints
	APITitle = "API_TITLE"

	// APIVersion overrides the API version reported by info endpoints
	APIVersion = "API_VERSION"

	// DefaultWhisperModel selects the model bound at startup
	DefaultWhisperModel = "DEFAULT_WHISPER_MODEL"

	// DefaultLanguage is the transcription language used when a request names none
	DefaultLanguage = "DEFAULT_LANGUAGE"

	// WhisperDevice selects the inference device (cpu, cuda, ...)
	WhisperDevice = "WHISPER_DEVICE"

	// WhisperComputeType selects the inference compute precision (int8, float16, ...)
	WhisperComputeType = "WHISPER_COMPUTE_TYPE"

	// WhisperServerBin points at the whisper-server binary
	WhisperServerBin = "WHISPER_SERVER_BIN"

	// TempFileSuffix sets the suffix of scratch audio files
	TempFileSuffix = "TEMP_FILE_SUFFIX"

	// EnableExternalStorage toggles probing of the external model store first
	EnableExternalStorage = "ENABLE_EXTERNAL_STORAGE"

	// ModelsCacheDir is the explicit external model cache directory
	ModelsCacheDir = "MODELS_CACHE_DIR"

	// ModelsVolumePath is the mounted volume checked when no explicit cache dir is set
	ModelsVolumePath = "MODELS_VOLUME_PATH"

	// HFHome is the inherited Hugging Face cache home
	HFHome = "HF_HOME"

	// TransformersCache is the legacy inherited transformers cache dir
	TransformersCache = "TRANSFORMERS_CACHE"

	// LogLevel overrides the configured log level
	LogLevel = "LOG_LEVEL"

	// LogFormat overrides the configured log format (auto, json, text)
	LogFormat = "LOG_FORMAT"

	// LogFile overrides the configured log file path
	LogFile = "LOG_FILE"
)
