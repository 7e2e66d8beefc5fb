// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string
	Location   *time.Location

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresDSN string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Dashboard
	KPIRefreshInterval time.Duration
	TopN               int
	MetricsNamespace   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	timezone := getEnv("APP_TIMEZONE", "America/Sao_Paulo")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", timezone, err)
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Location:   location,

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres dbname=freight sslmode=disable"),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "freight"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		KPIRefreshInterval: time.Duration(getEnvAsInt("KPI_REFRESH_INTERVAL", 60)) * time.Second,
		TopN:               getEnvAsInt("TOP_N", 5),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "freight"),
	}

	if config.KPIRefreshInterval <= 0 {
		return nil, fmt.Errorf("KPI_REFRESH_INTERVAL must be positive")
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
