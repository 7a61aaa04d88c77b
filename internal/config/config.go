package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for a scan
type Config struct {
	// Workers bounds concurrent batch unshuffling. 1 means sequential.
	Workers int
	// ShowUnshuffled prints the recovered scan order of each vulnerable batch.
	ShowUnshuffled bool
	// WarmTables builds both inverse tables at startup instead of on first use.
	WarmTables bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Workers:        getEnvIntOrDefault("DVSORDER_WORKERS", 4),
		ShowUnshuffled: getEnvBoolOrDefault("DVSORDER_SHOW_UNSHUFFLED", false),
		WarmTables:     getEnvBoolOrDefault("DVSORDER_WARM_TABLES", false),
	}
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
