package storage

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MaxListCap bounds a single List call regardless of configuration.
const MaxListCap int32 = 500

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
	PresignExpiry    string `toml:"presign_expiry"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
	PresignExpiry    string
}

// PresignExpiryDuration returns PresignExpiry as a time.Duration.
func (c *Config) PresignExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.PresignExpiry)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
	if overlay.PresignExpiry != "" {
		c.PresignExpiry = overlay.PresignExpiry
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "branding-assets"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 50
	}
	if c.MaxListSize > MaxListCap {
		c.MaxListSize = MaxListCap
	}
	if c.PresignExpiry == "" {
		c.PresignExpiry = "1h"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.MaxListSize != "" {
		if v := os.Getenv(env.MaxListSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxListSize = min(int32(n), MaxListCap)
			}
		}
	}
	if env.PresignExpiry != "" {
		if v := os.Getenv(env.PresignExpiry); v != "" {
			c.PresignExpiry = v
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if _, err := time.ParseDuration(c.PresignExpiry); err != nil {
		return fmt.Errorf("invalid presign_expiry: %w", err)
	}
	return nil
}
