package generation

import (
	"fmt"
	"os"
	"time"

	"github.com/men16922/brandy-serverless-sub000/pkg/formatting"
)

// Config holds fan-out parameters shared by every image generation step.
type Config struct {
	GlobalTimeout   string `toml:"global_timeout"`
	MaxVariants     int    `toml:"max_variants"`
	MaxDownloadSize string `toml:"max_download_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	GlobalTimeout string
	MaxVariants   string
}

// GlobalTimeoutDuration returns the fan-out deadline as a time.Duration.
func (c *Config) GlobalTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.GlobalTimeout)
	return d
}

// MaxDownloadBytes returns the per-image download cap in bytes.
func (c *Config) MaxDownloadBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxDownloadSize)
	return n
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
	if overlay.GlobalTimeout != "" {
		c.GlobalTimeout = overlay.GlobalTimeout
	}
	if overlay.MaxVariants != 0 {
		c.MaxVariants = overlay.MaxVariants
	}
	if overlay.MaxDownloadSize != "" {
		c.MaxDownloadSize = overlay.MaxDownloadSize
	}
}

func (c *Config) loadDefaults() {
	if c.GlobalTimeout == "" {
		c.GlobalTimeout = "90s"
	}
	if c.MaxVariants == 0 {
		c.MaxVariants = 3
	}
	if c.MaxDownloadSize == "" {
		c.MaxDownloadSize = "16MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.GlobalTimeout); v != "" {
		c.GlobalTimeout = v
	}
	if v := os.Getenv(env.MaxVariants); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			c.MaxVariants = n
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.GlobalTimeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid global_timeout %q", c.GlobalTimeout)
	}
	if c.MaxVariants < 1 || c.MaxVariants > 3 {
		return fmt.Errorf("max_variants must be between 1 and 3, got %d", c.MaxVariants)
	}
	if _, err := formatting.ParseBytes(c.MaxDownloadSize); err != nil {
		return fmt.Errorf("invalid max_download_size %q: %w", c.MaxDownloadSize, err)
	}
	return nil
}
