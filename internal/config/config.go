package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // sqlite (default), postgres, mysql
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string

	AI    AIConfig
	Email EmailConfig
}

// AIConfig enumerates the question-generation provider settings. An
// empty Provider means no live provider is configured and the
// deterministic generator is used.
type AIConfig struct {
	Provider string // openai, cerebras, anthropic, gemini

	OpenAIAPIKey    string
	OpenAIModel     string
	CerebrasAPIKey  string
	CerebrasModel   string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string

	Timeout          time.Duration
	MaxRetries       int
	LiveCallsEnabled bool
}

// EmailConfig holds the SES settings for the progress digest
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./brightpath.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      getEnv("JWT_SECRET", "brightpath-dev-secret-change-me"),
		AI: AIConfig{
			Provider:         getEnv("AI_PROVIDER", ""),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			CerebrasAPIKey:   getEnv("CEREBRAS_API_KEY", ""),
			CerebrasModel:    getEnv("CEREBRAS_MODEL", "gpt-oss-120b"),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:          getEnvDuration("AI_TIMEOUT_MS", 10*time.Second),
			MaxRetries:       getEnvInt("AI_MAX_RETRIES", 2),
			LiveCallsEnabled: getEnvBool("AI_LIVE_CALLS_ENABLED", true),
		},
		Email: EmailConfig{
			AWSRegion:  getEnv("AWS_REGION", "eu-west-1"),
			FromEmail:  getEnv("SES_FROM_EMAIL", ""),
			FromName:   getEnv("SES_FROM_NAME", "BrightPath"),
			AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable, ignoring unparseable
// or negative values
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

// getEnvDuration reads a millisecond count from the environment
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}

// getEnvBool reads a boolean environment variable ("true"/"false")
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
