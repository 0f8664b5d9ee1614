// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, session store, blob storage) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/men16922/brandy-serverless-sub000/internal/config"
	"github.com/men16922/brandy-serverless-sub000/pkg/kvstore"
	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
	"github.com/men16922/brandy-serverless-sub000/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, key-value session state, and blob storage.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	KVStore   kvstore.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	kv, err := kvstore.New(&cfg.KVStore, logger)
	if err != nil {
		return nil, fmt.Errorf("kvstore init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		KVStore:   kv,
		Storage:   store,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Store hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.KVStore.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("kvstore start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
