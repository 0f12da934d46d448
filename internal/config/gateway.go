package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/docker/go-units"
)

const (
	// EnvGatewayMediaURI overrides the Media API base URI.
	EnvGatewayMediaURI = "GATEWAY_MEDIA_URI"

	// EnvGatewayCropperURI overrides the Cropper base URI.
	EnvGatewayCropperURI = "GATEWAY_CROPPER_URI"

	// EnvGatewayLoaderURI overrides the Loader base URI.
	EnvGatewayLoaderURI = "GATEWAY_LOADER_URI"

	// EnvGatewayTimeout overrides the per-request timeout.
	EnvGatewayTimeout = "GATEWAY_TIMEOUT"

	// EnvGatewayMaxUploadSize overrides the largest payload accepted by Load.
	EnvGatewayMaxUploadSize = "GATEWAY_MAX_UPLOAD_SIZE"
)

// GatewayConfig holds the base URIs and limits of the remote media services.
type GatewayConfig struct {
	MediaURI      string `toml:"media_uri"`
	CropperURI    string `toml:"cropper_uri"`
	LoaderURI     string `toml:"loader_uri"`
	Timeout       string `toml:"timeout"`
	MaxUploadSize string `toml:"max_upload_size"`

	maxUploadSizeVal int64
}

// TimeoutDuration parses and returns the request timeout as a time.Duration.
func (c *GatewayConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *GatewayConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the gateway configuration.
func (c *GatewayConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *GatewayConfig) Merge(overlay *GatewayConfig) {
	if overlay.MediaURI != "" {
		c.MediaURI = overlay.MediaURI
	}
	if overlay.CropperURI != "" {
		c.CropperURI = overlay.CropperURI
	}
	if overlay.LoaderURI != "" {
		c.LoaderURI = overlay.LoaderURI
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
}

func (c *GatewayConfig) loadDefaults() {
	if c.MediaURI == "" {
		c.MediaURI = "http://localhost:9001"
	}
	if c.CropperURI == "" {
		c.CropperURI = "http://localhost:9006"
	}
	if c.LoaderURI == "" {
		c.LoaderURI = "http://localhost:9003"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *GatewayConfig) loadEnv() {
	if v := os.Getenv(EnvGatewayMediaURI); v != "" {
		c.MediaURI = v
	}
	if v := os.Getenv(EnvGatewayCropperURI); v != "" {
		c.CropperURI = v
	}
	if v := os.Getenv(EnvGatewayLoaderURI); v != "" {
		c.LoaderURI = v
	}
	if v := os.Getenv(EnvGatewayTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvGatewayMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *GatewayConfig) validate() error {
	for name, raw := range map[string]string{
		"media_uri":   c.MediaURI,
		"cropper_uri": c.CropperURI,
		"loader_uri":  c.LoaderURI,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
