package main

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/JaimeStill/kahuna/internal/metrics"
	"github.com/JaimeStill/kahuna/internal/search"
	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/JaimeStill/kahuna/internal/uploads"
	"github.com/JaimeStill/kahuna/pkg/lifecycle"
	"github.com/JaimeStill/kahuna/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, domain *Domain, ready lifecycle.ReadinessChecker, logger *slog.Logger, cfg *config.Config) {
	api := routes.Group{
		Prefix:      "/api",
		Description: "Kahuna client API",
		Children: []routes.Group{
			search.NewHandler(domain.Sessions, domain.Seen, logger).Routes(),
			seen.NewHandler(domain.Seen, logger).Routes(),
			crops.NewHandler(domain.Gateway, logger).Routes(),
			uploads.NewHandler(domain.Gateway, logger, cfg.Gateway.MaxUploadSizeBytes()).Routes(),
		},
	}
	r.RegisterGroup(api)

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, ready)
		},
	})

	r.Handle("GET /metrics", metrics.Handler())
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
