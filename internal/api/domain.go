package api

import (
	"github.com/men16922/brandy-serverless-sub000/internal/generation"
	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions   sessions.System
	Generation generation.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	sessionsSystem := sessions.New(
		runtime.KVStore,
		runtime.Storage,
		cfg.Sessions.TTLDuration(),
		cfg.Storage.PresignExpiryDuration(),
		runtime.Logger,
	)

	generationSystem := generation.New(
		&cfg.Generation,
		cfg.Providers.Map(),
		sessionsSystem,
		runtime.Storage,
		cfg.Storage.PresignExpiryDuration(),
		runtime.Logger,
	)

	return &Domain{
		Sessions:   sessionsSystem,
		Generation: generationSystem,
	}
}
