package main

import (
	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/infrastructure"
	"github.com/JaimeStill/kahuna/internal/search"
	"github.com/JaimeStill/kahuna/internal/seen"
)

// Domain holds the systems behind the API handlers.
type Domain struct {
	Gateway  gateway.System
	Search   search.System
	Sessions *search.Registry
	Seen     seen.System
}

func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config) *Domain {
	gw := gateway.New(&cfg.Gateway, cfg.Pagination, infra.Logger)
	engine := search.New(gw, cfg.Pagination.DefaultPageSize, infra.Logger)

	return &Domain{
		Gateway:  gw,
		Search:   engine,
		Sessions: search.NewRegistry(engine, infra.Logger),
		Seen:     seen.New(infra.Store, cfg.Seen.Key, infra.Logger),
	}
}

// Start registers background work with the lifecycle coordinator.
func (d *Domain) Start(infra *infrastructure.Infrastructure, cfg *config.Config) {
	d.Sessions.Start(
		infra.Lifecycle,
		cfg.Search.SessionTTLDuration(),
		cfg.Search.SweepIntervalDuration(),
	)
}
