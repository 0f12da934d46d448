package config

import (
	"fmt"
	"os"
)

const (
	// EnvSeenBackend overrides the local store backend.
	EnvSeenBackend = "SEEN_BACKEND"

	// EnvSeenKey overrides the store key holding seen marks.
	EnvSeenKey = "SEEN_KEY"
)

// Local store backends available to the seen tracker.
const (
	SeenBackendMemory   = "memory"
	SeenBackendBlob     = "blob"
	SeenBackendDatabase = "database"
)

// SeenConfig selects where seen marks are persisted.
// The database backend uses the driver named in the database section.
type SeenConfig struct {
	Backend string `toml:"backend"`
	Key     string `toml:"key"`
}

// Finalize applies defaults, loads environment overrides, and validates the seen configuration.
func (c *SeenConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *SeenConfig) Merge(overlay *SeenConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
}

func (c *SeenConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = SeenBackendMemory
	}
	if c.Key == "" {
		c.Key = "search.seenFrom"
	}
}

func (c *SeenConfig) loadEnv() {
	if v := os.Getenv(EnvSeenBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvSeenKey); v != "" {
		c.Key = v
	}
}

func (c *SeenConfig) validate() error {
	switch c.Backend {
	case SeenBackendMemory, SeenBackendBlob, SeenBackendDatabase:
	default:
		return fmt.Errorf("invalid backend: %s (must be memory, blob, or database)", c.Backend)
	}
	return nil
}
