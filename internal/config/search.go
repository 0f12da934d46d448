package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvSearchSessionTTL overrides how long an idle search session is kept.
	EnvSearchSessionTTL = "SEARCH_SESSION_TTL"

	// EnvSearchSweepInterval overrides how often idle sessions are swept.
	EnvSearchSweepInterval = "SEARCH_SWEEP_INTERVAL"
)

// SearchConfig controls search sessions held by the server.
type SearchConfig struct {
	SessionTTL    string `toml:"session_ttl"`
	SweepInterval string `toml:"sweep_interval"`
}

// SessionTTLDuration parses and returns the session TTL as a time.Duration.
func (c *SearchConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// SweepIntervalDuration parses and returns the sweep interval as a time.Duration.
func (c *SearchConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the search configuration.
func (c *SearchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *SearchConfig) Merge(overlay *SearchConfig) {
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
}

func (c *SearchConfig) loadDefaults() {
	if c.SessionTTL == "" {
		c.SessionTTL = "30m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
}

func (c *SearchConfig) loadEnv() {
	if v := os.Getenv(EnvSearchSessionTTL); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv(EnvSearchSweepInterval); v != "" {
		c.SweepInterval = v
	}
}

func (c *SearchConfig) validate() error {
	if d, err := time.ParseDuration(c.SessionTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_ttl: %q", c.SessionTTL)
	}
	if d, err := time.ParseDuration(c.SweepInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid sweep_interval: %q", c.SweepInterval)
	}
	return nil
}
