package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port                   int    `env:"PORT" envDefault:"8080"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	RedisURL               string `env:"REDIS_URL,required"`
	ArchiveAPIURL          string `env:"ARCHIVE_API_URL,required"`
	APIToken               string `env:"API_TOKEN"`
	RecoveryTimeoutSeconds int    `env:"RECOVERY_TIMEOUT_SECONDS" envDefault:"300"`
	SessionRetentionMins   int    `env:"SESSION_RETENTION_MINS" envDefault:"30"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

// RecoveryTimeout is the client-side deadline for one archive recovery call.
// Archive lookups walk snapshot history, so this is minutes, not seconds.
func (c *Config) RecoveryTimeout() time.Duration {
	return time.Duration(c.RecoveryTimeoutSeconds) * time.Second
}

// SessionRetention is how long terminal sessions stay queryable before the
// cleanup job sweeps them.
func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionMins) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.RecoveryTimeoutSeconds <= 0 {
		return fmt.Errorf("RECOVERY_TIMEOUT_SECONDS must be positive")
	}
	if c.SessionRetentionMins <= 0 {
		return fmt.Errorf("SESSION_RETENTION_MINS must be positive")
	}
	if !strings.HasPrefix(c.ArchiveAPIURL, "http://") && !strings.HasPrefix(c.ArchiveAPIURL, "https://") {
		return fmt.Errorf("ARCHIVE_API_URL must be an http(s) URL")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
