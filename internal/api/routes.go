package api

import (
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Sessions.Handler().Routes(),
		domain.Generation.Handler().Routes(),
		newStorageHandler(
			runtime.Storage,
			runtime.Logger,
			runtime.Config.Storage.MaxListSize,
			runtime.Config.Storage.PresignExpiryDuration(),
		).routes(),
	)
}
