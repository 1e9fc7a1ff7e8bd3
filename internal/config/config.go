package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string

	RequestTimeout time.Duration

	// StatePath is the sqlite file holding the anonymous cart and the
	// session token.
	StatePath string

	LocationTimeout time.Duration

	LogLevel string
}

// Load reads .env when present and falls back to process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		APIBaseURL:      EnvDefault("PIZZAHOUSE_API_URL", "http://localhost:5000/api"),
		RequestTimeout:  time.Duration(EnvIntDefault("PIZZAHOUSE_REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		StatePath:       EnvDefault("PIZZAHOUSE_STATE_PATH", defaultStatePath()),
		LocationTimeout: time.Duration(EnvIntDefault("PIZZAHOUSE_LOCATION_TIMEOUT_SECONDS", 5)) * time.Second,
		LogLevel:        EnvDefault("PIZZAHOUSE_LOG_LEVEL", "info"),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pizzahouse.db"
	}
	return filepath.Join(dir, "pizzahouse", "state.db")
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
