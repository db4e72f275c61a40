package common

import (
	"os"
	"strconv"
	"time"
)

// RetryLoggingStyle controls how much the client logs per retry attempt.
// The enumeration is passed through to the resilience layer, never
// interpreted by the pipeline itself.
type RetryLoggingStyle string

const (
	RetryLogNone    RetryLoggingStyle = "none"
	RetryLogBrief   RetryLoggingStyle = "brief"
	RetryLogVerbose RetryLoggingStyle = "verbose"
)

// Config holds all application configuration
type Config struct {
	ADE   ADEConfig
	Batch BatchConfig
	Log   LogConfig
}

// ADEConfig holds the remote extraction-service configuration
type ADEConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	HTTPTimeout  time.Duration
	BatchSize    int // request-rate hint forwarded to the client limiter
	MaxRetries   int
	MaxRetryWait time.Duration
	RetryLogging RetryLoggingStyle
}

// BatchConfig holds batch-orchestration configuration
type BatchConfig struct {
	MaxWorkers int
	OutputDir  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		ADE: ADEConfig{
			APIKey:       getEnv("VISION_AGENT_API_KEY", ""),
			BaseURL:      getEnv("ADE_BASE_URL", "https://api.va.landing.ai"),
			Model:        getEnv("ADE_MODEL", "dpt-2-latest"),
			HTTPTimeout:  getEnvAsDuration("ADE_HTTP_TIMEOUT", 120*time.Second),
			BatchSize:    getEnvAsInt("ADE_BATCH_SIZE", 4),
			MaxRetries:   getEnvAsInt("ADE_MAX_RETRIES", 3),
			MaxRetryWait: getEnvAsDuration("ADE_MAX_RETRY_WAIT", 30*time.Second),
			RetryLogging: RetryLoggingStyle(getEnv("ADE_RETRY_LOGGING_STYLE", string(RetryLogBrief))),
		},
		Batch: BatchConfig{
			MaxWorkers: getEnvAsInt("ADE_MAX_WORKERS", 4),
			OutputDir:  getEnv("ADE_OUTPUT_DIR", "./ade_results"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.ADE.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "VISION_AGENT_API_KEY is required", ErrValidation)
	}
	if c.Batch.MaxWorkers <= 0 {
		return NewAppError("CONFIG_ERROR", "ADE_MAX_WORKERS must be a positive integer", ErrValidation)
	}
	switch c.ADE.RetryLogging {
	case RetryLogNone, RetryLogBrief, RetryLogVerbose:
	default:
		return NewAppError("CONFIG_ERROR", "ADE_RETRY_LOGGING_STYLE must be one of none|brief|verbose", ErrValidation)
	}
	return nil
}
