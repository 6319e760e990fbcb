package config

import (
	"fmt"
	"time"

	"github.com/mindhouselabs/miod/internal/logging"
)

// Config is the root configuration for miod.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Storage   StorageConfig   `koanf:"storage"`
	Functions FunctionsConfig `koanf:"functions"`
	Webhooks  WebhooksConfig  `koanf:"webhooks"`
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Affect    AffectConfig    `koanf:"affect"`
	Logging   logging.Config  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds relational database settings.
// Driver is "postgres" for the hosted database or "sqlite" for local work.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	Endpoint     string        `koanf:"endpoint"`
	AccessKey    string        `koanf:"access_key"`
	SecretKey    string        `koanf:"secret_key"`
	Bucket       string        `koanf:"bucket"`
	UseSSL       bool          `koanf:"use_ssl"`
	SignedURLTTL time.Duration `koanf:"signed_url_ttl"`
}

// FunctionsConfig holds hosted function endpoint settings.
type FunctionsConfig struct {
	BaseURL    string        `koanf:"base_url"`
	ServiceKey string        `koanf:"service_key"`
	Timeout    time.Duration `koanf:"timeout"`
}

// WebhooksConfig holds workflow-automation webhook settings.
// Endpoints maps event names to webhook URLs; unknown events are dropped.
type WebhooksConfig struct {
	Endpoints     map[string]string `koanf:"endpoints"`
	RatePerSecond float64           `koanf:"rate_per_second"`
	Burst         int               `koanf:"burst"`
	Timeout       time.Duration     `koanf:"timeout"`
}

// KnowledgeConfig holds protocol library settings.
type KnowledgeConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// AffectConfig holds affect classifier settings.
type AffectConfig struct {
	RemoteOverride bool `koanf:"remote_override"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Knowledge.VectorSize <= 0 {
		return fmt.Errorf("knowledge.vector_size must be positive, got %d", c.Knowledge.VectorSize)
	}
	if c.Webhooks.RatePerSecond < 0 {
		return fmt.Errorf("webhooks.rate_per_second cannot be negative")
	}
	for event, url := range c.Webhooks.Endpoints {
		if url == "" {
			return fmt.Errorf("webhooks.endpoints[%s] is empty", event)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
