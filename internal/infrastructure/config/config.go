// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Warehouse
	PostgresDSN string

	// Object storage
	StorageBucket      string
	StoragePrefix      string
	AirportsKey        string
	GCSCredentialsFile string
	GCSAccessToken     string

	// Pipeline
	RawDataDir          string
	ChunkSize           int
	RejectRateThreshold float64
	MaxAttempts         int
	RetryBackoff        time.Duration
	RunInterval         time.Duration

	// Weather source
	IEMBaseURL string
	IEMTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost port=5432 user=flights password=flights dbname=flights sslmode=disable"),

		StorageBucket:      getEnv("STORAGE_BUCKET", "flight-data"),
		StoragePrefix:      getEnv("STORAGE_PREFIX", "raw/"),
		AirportsKey:        getEnv("AIRPORTS_KEY", "raw/airports.dat"),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		GCSAccessToken:     getEnv("GCS_ACCESS_TOKEN", ""),

		RawDataDir:          getEnv("RAW_DATA_DIR", "./data/raw"),
		ChunkSize:           getEnvAsInt("CHUNK_SIZE", 50000),
		RejectRateThreshold: getEnvAsFloat("REJECT_RATE_THRESHOLD", 5.0),
		MaxAttempts:         getEnvAsInt("MAX_ATTEMPTS", 3),
		RetryBackoff:        time.Duration(getEnvAsInt("RETRY_BACKOFF", 120)) * time.Second,
		RunInterval:         time.Duration(getEnvAsInt("PIPELINE_INTERVAL", 0)) * time.Minute,

		IEMBaseURL: getEnv("IEM_BASE_URL", "https://mesonet.agron.iastate.edu/cgi-bin/request/asos.py"),
		IEMTimeout: time.Duration(getEnvAsInt("IEM_TIMEOUT", 30)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
