package config

import (
	"fmt"
	"os"
	"time"

	"github.com/men16922/brandy-serverless-sub000/internal/generation"
	"github.com/men16922/brandy-serverless-sub000/pkg/kvstore"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBrandyEnv             = "BRANDY_ENV"
	EnvBrandyShutdownTimeout = "BRANDY_SHUTDOWN_TIMEOUT"
	EnvBrandyVersion         = "BRANDY_VERSION"
)

var kvstoreEnv = &kvstore.Env{
	Kind:     "BRANDY_KV_KIND",
	Addr:     "BRANDY_KV_ADDR",
	Password: "BRANDY_KV_PASSWORD",
	DB:       "BRANDY_KV_DB",
}

var storageEnv = &storage.Env{
	ContainerName:    "BRANDY_STORAGE_CONTAINER_NAME",
	ConnectionString: "BRANDY_STORAGE_CONNECTION_STRING",
	MaxListSize:      "BRANDY_STORAGE_MAX_LIST_SIZE",
	PresignExpiry:    "BRANDY_STORAGE_PRESIGN_EXPIRY",
}

var generationEnv = &generation.Env{
	GlobalTimeout: "BRANDY_GENERATION_GLOBAL_TIMEOUT",
	MaxVariants:   "BRANDY_GENERATION_MAX_VARIANTS",
}

// Config is the root configuration for the Brandy service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	KVStore         kvstore.Config    `toml:"kvstore"`
	Storage         storage.Config    `toml:"storage"`
	Sessions        SessionsConfig    `toml:"sessions"`
	Generation      generation.Config `toml:"generation"`
	Providers       ProvidersConfig   `toml:"providers"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the BRANDY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBrandyEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.KVStore.Merge(&overlay.KVStore)
	c.Storage.Merge(&overlay.Storage)
	c.Sessions.Merge(&overlay.Sessions)
	c.Generation.Merge(&overlay.Generation)
	c.Providers.Merge(&overlay.Providers)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.KVStore.Finalize(kvstoreEnv); err != nil {
		return fmt.Errorf("kvstore: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Sessions.Finalize(); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	if err := c.Generation.Finalize(generationEnv); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Providers.Finalize(); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	// Every provider attempt must fit inside the fan-out deadline.
	global := c.Generation.GlobalTimeoutDuration()
	for name, pc := range c.Providers.Map() {
		if pc.Enabled && pc.TimeoutDuration() > global {
			return fmt.Errorf("providers: %s timeout %s exceeds generation global_timeout %s",
				name, pc.Timeout, c.Generation.GlobalTimeout)
		}
	}

	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBrandyShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBrandyVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBrandyEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
