package providers

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds connection and retry parameters for one generative API.
// The API key is never stored in configuration files; APIKeyEnv names the
// environment variable it is read from.
type Config struct {
	Enabled         bool   `toml:"enabled"`
	Endpoint        string `toml:"endpoint"`
	APIKeyEnv       string `toml:"api_key_env"`
	AuthHeader      string `toml:"auth_header"`
	Model           string `toml:"model"`
	Size            string `toml:"size"`
	Quality         string `toml:"quality"`
	Timeout         string `toml:"timeout"`
	MaxAttempts     int    `toml:"max_attempts"`
	BackoffBase     string `toml:"backoff_base"`
	MaxPromptLength int    `toml:"max_prompt_length"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled  string
	Endpoint string
	Model    string
	Timeout  string
}

// TimeoutDuration returns the per-attempt timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// BackoffBaseDuration returns the backoff base as a time.Duration.
func (c *Config) BackoffBaseDuration() time.Duration {
	d, _ := time.ParseDuration(c.BackoffBase)
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

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.APIKeyEnv != "" {
		c.APIKeyEnv = overlay.APIKeyEnv
	}
	if overlay.AuthHeader != "" {
		c.AuthHeader = overlay.AuthHeader
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Size != "" {
		c.Size = overlay.Size
	}
	if overlay.Quality != "" {
		c.Quality = overlay.Quality
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.BackoffBase != "" {
		c.BackoffBase = overlay.BackoffBase
	}
	if overlay.MaxPromptLength != 0 {
		c.MaxPromptLength = overlay.MaxPromptLength
	}
}

func (c *Config) loadDefaults() {
	if c.AuthHeader == "" {
		c.AuthHeader = "Authorization"
	}
	if c.Size == "" {
		c.Size = "1024x1024"
	}
	if c.Quality == "" {
		c.Quality = "standard"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase == "" {
		c.BackoffBase = "500ms"
	}
	if c.MaxPromptLength == 0 {
		c.MaxPromptLength = 1000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint required")
	}
	if c.APIKeyEnv == "" {
		return fmt.Errorf("api_key_env required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.BackoffBase); err != nil {
		return fmt.Errorf("invalid backoff_base: %w", err)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	return nil
}
