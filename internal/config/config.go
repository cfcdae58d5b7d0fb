// Package config loads application configuration from environment variables
// and optional .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Pool    PoolConfig
	Indexer IndexerConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerSec  int
}

// PoolConfig identifies the pool this instance reports on.
type PoolConfig struct {
	ID string
}

// IndexerConfig holds the upstream indexer connection settings.
type IndexerConfig struct {
	URL            string
	Timeout        time.Duration
	RequestsPerSec float64
	MaxRetries     int
}

// RedisConfig holds Redis connection settings for the raw-response cache.
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// CacheConfig holds cache TTLs. ReportTTL covers derived report rows in
// process memory; RawTTL covers raw indexer responses in Redis.
type CacheConfig struct {
	ReportTTL time.Duration
	RawTTL    time.Duration
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from the .env file and environment
// variables. The .env file is optional.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestsPerSec:  getEnvAsInt("SERVER_REQUESTS_PER_SEC", 50),
		},
		Pool: PoolConfig{
			ID: getEnv("POOL_ID", ""),
		},
		Indexer: IndexerConfig{
			URL:            getEnv("INDEXER_URL", "http://localhost:4350/graphql"),
			Timeout:        getEnvAsDuration("INDEXER_TIMEOUT", 30*time.Second),
			RequestsPerSec: getEnvAsFloat("INDEXER_REQUESTS_PER_SEC", 10),
			MaxRetries:     getEnvAsInt("INDEXER_MAX_RETRIES", 5),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Cache: CacheConfig{
			ReportTTL: getEnvAsDuration("CACHE_REPORT_TTL", 120*time.Second),
			RawTTL:    getEnvAsDuration("CACHE_RAW_TTL", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if config.Pool.ID == "" {
		return nil, fmt.Errorf("POOL_ID is required")
	}

	return config, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default
// value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
