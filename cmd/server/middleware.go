package main

import (
	"log/slog"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/metrics"
	"github.com/JaimeStill/kahuna/pkg/middleware"
)

// buildMiddleware creates the middleware stack: slash trimming, request
// logging, request metrics and CORS.
func buildMiddleware(logger *slog.Logger, cfg *config.Config) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.TrimSlash())
	mw.Use(middleware.Logger(logger))
	mw.Use(metrics.Middleware)
	mw.Use(middleware.CORS(&cfg.CORS))
	return mw
}
