// Package gateway is the HTTP/JSON client for the media services: the
// Media API (search and lookup), the Cropper and the Loader.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/metrics"
	"github.com/JaimeStill/kahuna/pkg/pagination"
	"github.com/docker/go-units"
)

// SearchOptions narrows a Media API search. Nil fields are omitted.
// Since and Until bound uploadTime; Length falls back to the configured page size.
type SearchOptions struct {
	Since    *time.Time
	Until    *time.Time
	Archived *bool
	Length   int
}

// System is the media services client.
type System interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]images.Image, error)
	Find(ctx context.Context, id string) (images.Image, error)
	CreateCrop(ctx context.Context, img images.Image, rect crops.Rect, token string) (crops.Crop, error)
	CropsFor(ctx context.Context, img images.Image) ([]crops.Crop, error)
	Load(ctx context.Context, data []byte) (images.Image, error)
}

type client struct {
	http          *http.Client
	mediaURI      string
	cropperURI    string
	loaderURI     string
	maxUploadSize int64
	pagination    pagination.Config
	logger        *slog.Logger
}

// New creates a gateway client from finalized configuration.
func New(cfg *config.GatewayConfig, page pagination.Config, logger *slog.Logger) System {
	return &client{
		http:          &http.Client{Timeout: cfg.TimeoutDuration()},
		mediaURI:      strings.TrimRight(cfg.MediaURI, "/"),
		cropperURI:    strings.TrimRight(cfg.CropperURI, "/"),
		loaderURI:     strings.TrimRight(cfg.LoaderURI, "/"),
		maxUploadSize: cfg.MaxUploadSizeBytes(),
		pagination:    page,
		logger:        logger.With("system", "gateway"),
	}
}

func (c *client) Search(ctx context.Context, query string, opts SearchOptions) ([]images.Image, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if opts.Since != nil {
		params.Set("since", opts.Since.UTC().Format(time.RFC3339Nano))
	}
	if opts.Until != nil {
		params.Set("until", opts.Until.UTC().Format(time.RFC3339Nano))
	}
	if opts.Archived != nil {
		params.Set("archived", strconv.FormatBool(*opts.Archived))
	}
	params.Set("length", strconv.Itoa(c.pagination.Length(opts.Length)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mediaURI+"/images?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	var page collection[imageData]
	if err := c.do(req, "search", &page); err != nil {
		return nil, err
	}

	c.logger.Debug("search page", "query", query, "count", len(page.Data))
	return toImages(page), nil
}

func (c *client) Find(ctx context.Context, id string) (images.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mediaURI+"/images/"+url.PathEscape(id), nil)
	if err != nil {
		return images.Image{}, &Error{Op: "find", Err: err}
	}

	var e entity[imageData]
	if err := c.do(req, "find", &e); err != nil {
		return images.Image{}, err
	}
	return toImage(e), nil
}

func (c *client) CreateCrop(ctx context.Context, img images.Image, rect crops.Rect, token string) (crops.Crop, error) {
	body, err := json.Marshal(newCropRequest(img, rect, token))
	if err != nil {
		return crops.Crop{}, &Error{Op: "create crop", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cropperURI+"/crops", bytes.NewReader(body))
	if err != nil {
		return crops.Crop{}, &Error{Op: "create crop", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var e entity[crops.Crop]
	if err := c.do(req, "create crop", &e); err != nil {
		return crops.Crop{}, err
	}
	return e.Data, nil
}

func (c *client) CropsFor(ctx context.Context, img images.Image) ([]crops.Crop, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cropperURI+"/crops/"+url.PathEscape(img.ID), nil)
	if err != nil {
		return nil, &Error{Op: "crops for", Err: err}
	}

	var list collection[crops.Crop]
	if err := c.do(req, "crops for", &list); err != nil {
		return nil, err
	}
	return toCrops(list), nil
}

func (c *client) Load(ctx context.Context, data []byte) (images.Image, error) {
	if len(data) == 0 {
		return images.Image{}, ErrEmptyUpload
	}
	if int64(len(data)) > c.maxUploadSize {
		return images.Image{}, fmt.Errorf(
			"%w: %s > %s",
			ErrUploadTooLarge,
			units.HumanSize(float64(len(data))),
			units.HumanSize(float64(c.maxUploadSize)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loaderURI+"/images", bytes.NewReader(data))
	if err != nil {
		return images.Image{}, &Error{Op: "load", Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var e entity[imageData]
	if err := c.do(req, "load", &e); err != nil {
		return images.Image{}, err
	}

	c.logger.Info("image loaded", "uri", e.URI, "size", units.HumanSize(float64(len(data))))
	return toImage(e), nil
}

func (c *client) do(req *http.Request, op string, out any) error {
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordGatewayRequest(op, 0, time.Since(start))
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	metrics.RecordGatewayRequest(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(msg))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: op, Status: resp.StatusCode, Err: errors.New(detail)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
