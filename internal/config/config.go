// Package config loads process configuration from a .env file (when
// present) and environment variables, with working defaults for local
// development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the server and worker processes.
type Config struct {
	Port      string
	DBPath    string
	RedisAddr string

	// Worker settings.
	Concurrency int

	// Chat provider for category and question generation: "openai" or
	// "ollama". Empty disables LLM assistance, leaving the deterministic
	// generators.
	ChatProvider string
	OpenAIAPIKey string
	OpenAIModel  string
	OllamaURL    string
	OllamaModel  string

	// Web-search provider executing prompts.
	PerplexityAPIKey string
	PerplexityModel  string
}

// Load reads .env if one exists, then the environment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "brandscope.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		Concurrency:      getEnvInt("WORKER_CONCURRENCY", 5),
		ChatProvider:     getEnv("CHAT_PROVIDER", "openai"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", ""),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "gpt-oss:20b"),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
