// Package config resolves client and dev-server settings from a .env file
// (when present) and the environment, with local-development defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client settings.
type Config struct {
	// APIBaseURL is the backend base URL.
	APIBaseURL string
	// DataDir holds the persisted token and the log file.
	DataDir string
	// Timeout bounds every API request.
	Timeout time.Duration
}

// ServerConfig holds the dev server settings.
type ServerConfig struct {
	Addr       string
	DBPath     string
	UploadsDir string
}

// Load reads the client configuration. A .env in the working directory is
// merged in first; explicit environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL: getEnv("EDUCACONECTA_API_URL", "http://localhost:8000"),
		DataDir:    getEnv("EDUCACONECTA_DATA_DIR", defaultDataDir()),
		Timeout:    secondsEnv("EDUCACONECTA_TIMEOUT", 30),
	}
}

// LoadServer reads the dev server configuration.
func LoadServer() ServerConfig {
	_ = godotenv.Load()

	return ServerConfig{
		Addr:       getEnv("DEVSERVER_ADDR", ":8000"),
		DBPath:     getEnv("DEVSERVER_DB", "educaconecta.db"),
		UploadsDir: getEnv("DEVSERVER_UPLOADS", filepath.Join("uploads", "media")),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".educaconecta"
	}
	return filepath.Join(home, ".educaconecta")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func secondsEnv(key string, fallback int) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return time.Duration(fallback) * time.Second
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return time.Duration(fallback) * time.Second
	}
	return time.Duration(n) * time.Second
}
