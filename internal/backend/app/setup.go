// Package app wires the catalog backend together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/backend/config"
	"github.com/abgdnv/catalog/internal/backend/service"
	"github.com/abgdnv/catalog/internal/backend/store"
	"github.com/abgdnv/catalog/internal/backend/transport/rest"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/server"
)

type Dependencies struct {
	CatalogService service.CatalogService
	Logger         *slog.Logger
}

// SetupDependencies builds the service over the given store. A nil publisher disables events.
func SetupDependencies(catalogStore store.CatalogStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Dependencies{
		CatalogService: service.NewService(catalogStore, publisher, logger),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes of the catalog backend.
// Used by E2E tests to serve the backend from an httptest server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	rest.NewHandler(deps.CatalogService, deps.Logger).RegisterRoutes(mux)
	return server.Instrument(mux, "catalogd")
}

// SetupHttpServer creates and configures the HTTP server of the catalog backend.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
