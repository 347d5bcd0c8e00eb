// Package config loads the runtime configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// AMQP event publishing. Events are only logged when URL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	WorkerInterval time.Duration
}

// Load reads the configuration from the environment, falling back to
// defaults for everything that is not set.
func Load() *Config {
	return &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "data/gorm.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "stashbudget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		WorkerInterval: getEnvDuration("WORKER_INTERVAL", 15*time.Minute),
	}
}

// Validate returns an error when the configuration cannot be used.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number, got %q", c.Port)
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}

	if c.WorkerInterval <= 0 {
		return fmt.Errorf("WORKER_INTERVAL must be positive, got %s", c.WorkerInterval)
	}

	return nil
}
