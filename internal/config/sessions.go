package config

import (
	"fmt"
	"os"
	"time"
)

const EnvSessionsTTL = "BRANDY_SESSIONS_TTL"

// SessionsConfig holds session lifecycle parameters.
type SessionsConfig struct {
	TTL string `toml:"ttl"`
}

// TTLDuration returns the session time-to-live as a time.Duration.
func (c *SessionsConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SessionsConfig) Finalize() error {
	if c.TTL == "" {
		c.TTL = "24h"
	}
	if v := os.Getenv(EnvSessionsTTL); v != "" {
		c.TTL = v
	}

	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid ttl %q", c.TTL)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *SessionsConfig) Merge(overlay *SessionsConfig) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}
