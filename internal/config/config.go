package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the pipeline
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Pipeline configuration
	Pipeline PipelineConfig

	// NATS configuration (optional event sink)
	NATS NATSConfig

	// Log configuration
	Log LogConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// PipelineConfig holds staging pipeline configuration
type PipelineConfig struct {
	// Source tag recorded on every fact row
	Source string

	// LoadWorkers bounds the per-record worker pool in the load stage
	LoadWorkers int

	// StageTimeout bounds store access for a single stage run
	StageTimeout time.Duration
}

// NATSConfig holds NATS configuration; URL empty means events stay in-process
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "cinelake"),
			Password:     getEnv("DB_PASSWORD", "cinelake"),
			Database:     getEnv("DB_NAME", "cinelake"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Pipeline: PipelineConfig{
			Source:       getEnv("PIPELINE_SOURCE", "kkphim"),
			LoadWorkers:  getEnvAsInt("PIPELINE_LOAD_WORKERS", 4),
			StageTimeout: getEnvAsDuration("PIPELINE_STAGE_TIMEOUT", 10*time.Minute),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "pipeline"),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
