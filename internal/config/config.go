package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (optional; caching and websocket fan-out degrade gracefully without it)
	RedisURL string

	// Gemini AI (optional; empty key switches to the content fallback generator)
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Uploads
	MaxUploadMB int

	// Question generation defaults
	DefaultEasyCount   int
	DefaultMediumCount int
	DefaultHardCount   int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		MaxUploadMB:          getEnvAsIntOrDefault("MAX_UPLOAD_MB", 25),
		DefaultEasyCount:     getEnvAsIntOrDefault("DEFAULT_EASY_COUNT", 3),
		DefaultMediumCount:   getEnvAsIntOrDefault("DEFAULT_MEDIUM_COUNT", 3),
		DefaultHardCount:     getEnvAsIntOrDefault("DEFAULT_HARD_COUNT", 2),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
