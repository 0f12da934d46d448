package main

import (
	"net/http"
	"os"
	"time"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/infrastructure"
	internalroutes "github.com/JaimeStill/kahuna/internal/routes"
	"github.com/JaimeStill/kahuna/internal/server"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra  *infrastructure.Infrastructure
	domain *Domain
	cfg    *config.Config
	http   server.System
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	domain := NewDomain(infra, cfg)
	handler := buildHandler(infra, domain, cfg)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"media", cfg.Gateway.MediaURI,
		"seen_backend", cfg.Seen.Backend,
	)

	return &Server{
		infra:  infra,
		domain: domain,
		cfg:    cfg,
		http:   server.New(&cfg.Server, handler, infra.Logger),
	}, nil
}

func buildHandler(infra *infrastructure.Infrastructure, domain *Domain, cfg *config.Config) http.Handler {
	routeSys := internalroutes.New(infra.Logger)
	registerRoutes(routeSys, domain, infra.Lifecycle, infra.Logger, cfg)
	return buildMiddleware(infra.Logger, cfg).Apply(routeSys.Build())
}

// Start begins all subsystems and returns when they are ready.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	s.domain.Start(s.infra, s.cfg)

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
