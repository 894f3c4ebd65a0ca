package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// LLM Configuration
	AnthropicAPIKey string
	DefaultProvider string
	DefaultModel    string
	// Rewrite behaviour
	RewriteMaxTokens int
	RewriteTimeout   time.Duration
	// Upload / session behaviour
	MaxUploadBytes int64
	SessionTTL     time.Duration
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "anthropic"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		// Rewrite behaviour
		RewriteMaxTokens: getEnvInt("REWRITE_MAX_TOKENS", DefaultRewriteMaxTokens),
		RewriteTimeout:   time.Duration(getEnvInt("REWRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		// Upload / session behaviour
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", MaxUploadBytes)),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
