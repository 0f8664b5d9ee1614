// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/internal/config"
	"github.com/men16922/brandy-serverless-sub000/internal/infrastructure"
	"github.com/men16922/brandy-serverless-sub000/pkg/middleware"
	"github.com/men16922/brandy-serverless-sub000/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	if err := specRoute(cfg, mux); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
