package config

import (
	"fmt"

	"github.com/men16922/brandy-serverless-sub000/internal/providers"
)

var providerEnvs = map[string]*providers.Env{
	"dalle": {
		Enabled:  "BRANDY_PROVIDER_DALLE_ENABLED",
		Endpoint: "BRANDY_PROVIDER_DALLE_ENDPOINT",
		Model:    "BRANDY_PROVIDER_DALLE_MODEL",
		Timeout:  "BRANDY_PROVIDER_DALLE_TIMEOUT",
	},
	"sdxl": {
		Enabled:  "BRANDY_PROVIDER_SDXL_ENABLED",
		Endpoint: "BRANDY_PROVIDER_SDXL_ENDPOINT",
		Model:    "BRANDY_PROVIDER_SDXL_MODEL",
		Timeout:  "BRANDY_PROVIDER_SDXL_TIMEOUT",
	},
	"gemini": {
		Enabled:  "BRANDY_PROVIDER_GEMINI_ENABLED",
		Endpoint: "BRANDY_PROVIDER_GEMINI_ENDPOINT",
		Model:    "BRANDY_PROVIDER_GEMINI_MODEL",
		Timeout:  "BRANDY_PROVIDER_GEMINI_TIMEOUT",
	},
}

// ProvidersConfig groups the configs for each supported image provider.
type ProvidersConfig struct {
	DALLE  providers.Config `toml:"dalle"`
	SDXL   providers.Config `toml:"sdxl"`
	Gemini providers.Config `toml:"gemini"`
}

// Map returns the provider configs keyed by provider name.
func (c *ProvidersConfig) Map() map[string]*providers.Config {
	return map[string]*providers.Config{
		"dalle":  &c.DALLE,
		"sdxl":   &c.SDXL,
		"gemini": &c.Gemini,
	}
}

// Finalize applies defaults, environment variable overrides, and validation
// to every provider config.
func (c *ProvidersConfig) Finalize() error {
	for name, pc := range c.Map() {
		if err := pc.Finalize(providerEnvs[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay for every provider.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	c.DALLE.Merge(&overlay.DALLE)
	c.SDXL.Merge(&overlay.SDXL)
	c.Gemini.Merge(&overlay.Gemini)
}
