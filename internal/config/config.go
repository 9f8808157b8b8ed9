package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration read from the environment
type Config struct {
	Port     string
	BasePath string
	LogLevel string

	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Dispatch DispatchConfig

	BackfillConcurrency int

	JWTSecret           string
	LifecycleAPIKeyHash string
	SentryDSN           string
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// RabbitMQConfig holds broker settings and queue names
type RabbitMQConfig struct {
	Host                  string
	Port                  string
	User                  string
	Pass                  string
	BookingEventsQueue    string
	WorkflowMessagesQueue string
}

// URL returns the AMQP connection URL
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Pass, c.Host, c.Port)
}

// DispatchConfig controls the due-entry sweep
type DispatchConfig struct {
	Schedule  string
	BatchSize int
	Lease     time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		BasePath: getEnv("BASE_PATH", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "booking_followup"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:                  getEnv("RABBITMQ_HOST", "localhost"),
			Port:                  getEnv("RABBITMQ_PORT", "5672"),
			User:                  getEnv("RABBITMQ_USER", "guest"),
			Pass:                  getEnv("RABBITMQ_PASS", "guest"),
			BookingEventsQueue:    getEnv("BOOKING_EVENTS_QUEUE", "booking_events"),
			WorkflowMessagesQueue: getEnv("WORKFLOW_MESSAGES_QUEUE", "workflow_messages"),
		},
		Dispatch: DispatchConfig{
			Schedule:  getEnv("DISPATCH_SCHEDULE", "@every 30s"),
			BatchSize: getEnvInt("DISPATCH_BATCH_SIZE", 100),
			Lease:     getEnvDuration("DISPATCH_LEASE", 5*time.Minute),
		},
		BackfillConcurrency: getEnvInt("BACKFILL_CONCURRENCY", 8),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		LifecycleAPIKeyHash: getEnv("LIFECYCLE_API_KEY_HASH", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
