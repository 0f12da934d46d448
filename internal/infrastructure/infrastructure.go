// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, lifecycle, persistence for
// the local store) that the domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/localstore"
	"github.com/JaimeStill/kahuna/pkg/database"
	"github.com/JaimeStill/kahuna/pkg/lifecycle"
	"github.com/JaimeStill/kahuna/pkg/logging"
	"github.com/JaimeStill/kahuna/pkg/storage"
)

// Infrastructure holds the core systems required by the domain modules.
// Database and Storage are nil unless the configured seen backend needs them.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Store     localstore.Store

	backend string
}

// New creates an Infrastructure from the application configuration, logging to w.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logging.New(&cfg.Logging, w),
		backend:   cfg.Seen.Backend,
	}

	switch cfg.Seen.Backend {
	case config.SeenBackendDatabase:
		db, err := database.New(&cfg.Database, infra.Logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Store = localstore.NewSQL(db.Connection(), db.Driver())
	case config.SeenBackendBlob:
		store, err := storage.New(context.Background(), &cfg.Storage, infra.Logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
		infra.Store = localstore.NewBlob(store)
	default:
		infra.Store = localstore.NewMemory()
	}

	infra.Store = localstore.Instrument(infra.backend, infra.Store)
	return infra, nil
}

// Start initializes the persistence systems, applies local store migrations
// and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		if err := i.Migrate(); err != nil {
			return err
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}

	i.Logger.Info("infrastructure started", "seen_backend", i.backend)
	return nil
}

// Migrate applies the local store schema. It is a no-op without a database.
func (i *Infrastructure) Migrate() error {
	if i.Database == nil {
		return nil
	}

	version, err := database.Migrate(
		i.Database.Connection(),
		i.Database.Driver(),
		localstore.Migrations,
		localstore.MigrationsDir,
	)
	if err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}

	i.Logger.Info("local store schema current", "version", version)
	return nil
}
