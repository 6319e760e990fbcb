// Package config provides configuration loading for miod.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/mindhouselabs/miod/internal/logging"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load loads configuration from a YAML file, then overrides with
// MIOD_-prefixed environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (MIOD_SERVER_PORT, MIOD_DATABASE_DSN, ...)
//  2. YAML config file (~/.config/miod/config.yaml by default)
//  3. Hardcoded defaults
//
// Environment variables map to config keys by stripping the MIOD_ prefix,
// lowercasing and splitting on the first underscore:
//
//	MIOD_SERVER_PORT        -> server.port
//	MIOD_STORAGE_ACCESS_KEY -> storage.access_key
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "miod", "config.yaml")
	}

	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("MIOD_", ".", func(s string) string {
		// MIOD_SECTION_FIELD_NAME -> section.field_name
		lower := strings.ToLower(strings.TrimPrefix(s, "MIOD_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := NewDefault()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// NewDefault returns a Config with hardcoded defaults applied.
func NewDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "miod.db",
		},
		Storage: StorageConfig{
			Bucket:       "mio-documents",
			UseSSL:       true,
			SignedURLTTL: 15 * time.Minute,
		},
		Functions: FunctionsConfig{
			Timeout: 30 * time.Second,
		},
		Webhooks: WebhooksConfig{
			Endpoints:     map[string]string{},
			RatePerSecond: 5,
			Burst:         10,
			Timeout:       10 * time.Second,
		},
		Knowledge: KnowledgeConfig{
			Path:       "~/.config/miod/knowledge",
			Collection: "mio_knowledge_chunks",
			VectorSize: 1536,
		},
		Affect: AffectConfig{
			RemoteOverride: false,
		},
		Logging: *logging.NewDefaultConfig(),
	}
}
