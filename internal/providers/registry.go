package providers

import (
	"errors"
	"log/slog"
	"sort"
)

// BuildClients constructs a client for every enabled provider config, in
// deterministic name order. Providers with missing credentials are skipped
// with a warning rather than failing startup; callers degrade to fallbacks
// when no client could be built.
func BuildClients(cfgs map[string]*Config, logger *slog.Logger) []Client {
	names := make([]string, 0, len(cfgs))
	for name, cfg := range cfgs {
		if cfg != nil && cfg.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	clients := make([]Client, 0, len(names))
	for _, name := range names {
		client, err := New(name, cfgs[name], logger)
		if err != nil {
			if errors.Is(err, ErrMissingCredentials) {
				logger.Warn("skipping provider with missing credentials", "provider", name)
				continue
			}
			logger.Error("skipping provider", "provider", name, "error", err)
			continue
		}
		clients = append(clients, client)
	}

	return clients
}
