package kvstore

import (
	"fmt"
	"os"
	"strconv"
)

// Store kinds selectable through configuration.
const (
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Config holds key-value store connection parameters.
type Config struct {
	Kind     string `toml:"kind"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Kind     string
	Addr     string
	Password string
	DB       string
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
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
}

func (c *Config) loadDefaults() {
	if c.Kind == "" {
		c.Kind = KindRedis
	}
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Kind != "" {
		if v := os.Getenv(env.Kind); v != "" {
			c.Kind = v
		}
	}
	if env.Addr != "" {
		if v := os.Getenv(env.Addr); v != "" {
			c.Addr = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.DB != "" {
		if v := os.Getenv(env.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DB = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Kind != KindRedis && c.Kind != KindMemory {
		return fmt.Errorf("invalid kind: %s", c.Kind)
	}
	if c.Kind == KindRedis && c.Addr == "" {
		return fmt.Errorf("addr required for redis store")
	}
	return nil
}
