package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Unit     UnitConfig     `mapstructure:"unit"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// UnitConfig contains settings for the unit session engine.
type UnitConfig struct {
	// ContentDir is the directory holding per-(unit type, locale)
	// question catalog JSON files.
	ContentDir string `mapstructure:"content_dir" validate:"required"`

	// Locale selects the question catalog language. Defaults to "en".
	Locale string `mapstructure:"locale" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
// The insight generator falls back to rule-based output when the API key
// is absent, so none of these fields are hard-required at load time.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxRetries         int    `mapstructure:"max_retries"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"`
}
