package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/pkg/logging"
	"github.com/JaimeStill/kahuna/pkg/pagination"
)

func newClient(t *testing.T, handler http.Handler, maxUpload string) gateway.System {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.GatewayConfig{
		MediaURI:      srv.URL,
		CropperURI:    srv.URL + "/cropper",
		LoaderURI:     srv.URL + "/loader",
		Timeout:       "5s",
		MaxUploadSize: maxUpload,
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	page := pagination.Config{DefaultPageSize: 50, MaxPageSize: 200}
	return gateway.New(cfg, page, logging.Discard())
}

func TestSearch_QueryParameters(t *testing.T) {
	var got map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /images", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"q":        q.Get("q"),
			"since":    q.Get("since"),
			"until":    q.Get("until"),
			"archived": q.Get("archived"),
			"length":   q.Get("length"),
		}
		io.WriteString(w, `{"data":[
			{"uri":"https://media/images/a","data":{"id":"a","uploadTime":"2015-01-02T10:00:00Z","cost":"free"}},
			{"uri":"https://media/images/b","data":{"id":"b","uploadTime":"2015-01-01T10:00:00Z","cost":"paid"}}
		]}`)
	})

	c := newClient(t, mux, "1MB")

	until := time.Date(2015, 1, 3, 0, 0, 0, 0, time.UTC)
	archived := false
	imgs, err := c.Search(context.Background(), "cats", gateway.SearchOptions{Until: &until, Archived: &archived, Length: 500})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	want := map[string]string{
		"q":        "cats",
		"since":    "",
		"until":    "2015-01-03T00:00:00Z",
		"archived": "false",
		"length":   "200",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %s = %q, want %q", k, got[k], v)
		}
	}

	if len(imgs) != 2 {
		t.Fatalf("len(images) = %d, want 2", len(imgs))
	}
	if imgs[0].URI != "https://media/images/a" || imgs[0].ID != "a" || !imgs[0].IsFree() {
		t.Errorf("images[0] = %+v", imgs[0])
	}
	if imgs[1].Cost != images.CostPaid {
		t.Errorf("images[1].Cost = %q, want paid", imgs[1].Cost)
	}
}

func TestSearch_EmptyQueryOmitted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /images", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("q") {
			t.Error("q should be omitted for an empty query")
		}
		if r.URL.Query().Get("length") != "50" {
			t.Errorf("length = %q, want default 50", r.URL.Query().Get("length"))
		}
		io.WriteString(w, `{"data":[]}`)
	})

	imgs, err := newClient(t, mux, "1MB").Search(context.Background(), "", gateway.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(imgs) != 0 {
		t.Errorf("len(images) = %d, want 0", len(imgs))
	}
}

func TestErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /images", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("GET /images/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /cropper/crops/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})

	c := newClient(t, mux, "1MB")
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantStatus int
		wantHTTP   int
	}{
		{
			name:       "search upstream failure",
			call:       func() error { _, err := c.Search(ctx, "x", gateway.SearchOptions{}); return err },
			wantStatus: http.StatusServiceUnavailable,
			wantHTTP:   http.StatusBadGateway,
		},
		{
			name:       "find not found",
			call:       func() error { _, err := c.Find(ctx, "missing"); return err },
			wantStatus: http.StatusNotFound,
			wantHTTP:   http.StatusNotFound,
		},
		{
			name:       "crops decode failure",
			call:       func() error { _, err := c.CropsFor(ctx, images.Image{ID: "a"}); return err },
			wantStatus: http.StatusOK,
			wantHTTP:   http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, gateway.ErrGateway) {
				t.Fatalf("error = %v, want ErrGateway", err)
			}

			var gwErr *gateway.Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("error is not *gateway.Error: %T", err)
			}
			if gwErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", gwErr.Status, tt.wantStatus)
			}
			if got := gateway.MapHTTPStatus(err); got != tt.wantHTTP {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.wantHTTP)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &config.GatewayConfig{MediaURI: url, CropperURI: url, LoaderURI: url, Timeout: "1s"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	c := gateway.New(cfg, pagination.Config{DefaultPageSize: 10, MaxPageSize: 10}, logging.Discard())

	_, err := c.Search(context.Background(), "", gateway.SearchOptions{})

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("error = %v, want *gateway.Error", err)
	}
	if gwErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", gwErr.Status)
	}
}

func TestCreateCrop(t *testing.T) {
	var body map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /cropper/crops", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		io.WriteString(w, `{"data":{"id":"c1","specification":{"uri":"https://media/images/a","bounds":{"x":0,"y":0,"width":100,"height":60},"aspectRatio":"5:3"}}}`)
	})

	c := newClient(t, mux, "1MB")
	img := images.Image{URI: "https://media/images/a", ID: "a"}

	crop, err := c.CreateCrop(context.Background(), img, crops.Rect{Width: 100, Height: 60}, "5:3")
	if err != nil {
		t.Fatalf("CreateCrop() failed: %v", err)
	}

	if body["source"] != img.URI || body["aspectRatio"] != "5:3" || body["width"] != float64(100) {
		t.Errorf("request body = %v", body)
	}
	if crop.Key() != "0_0_100_60" {
		t.Errorf("Key() = %q, want 0_0_100_60", crop.Key())
	}
}

func TestCropsFor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cropper/crops/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "a" {
			t.Errorf("id = %q, want a", r.PathValue("id"))
		}
		io.WriteString(w, `{"data":[
			{"uri":"https://cropper/crops/c1","data":{"id":"c1","specification":{"bounds":{"x":0,"y":0,"width":100,"height":60}}}},
			{"uri":"https://cropper/crops/c2","data":{"id":"c2","specification":{"bounds":{"x":10,"y":20,"width":30,"height":45}}}}
		]}`)
	})

	list, err := newClient(t, mux, "1MB").CropsFor(context.Background(), images.Image{ID: "a"})
	if err != nil {
		t.Fatalf("CropsFor() failed: %v", err)
	}
	if len(list) != 2 || list[1].Key() != "10_20_30_45" {
		t.Errorf("crops = %+v", list)
	}
}

func TestLoad(t *testing.T) {
	var received int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /loader/images", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		received = len(data)
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		io.WriteString(w, `{"uri":"https://media/images/new","data":{"id":"new","uploadTime":"2015-01-01T00:00:00Z","cost":"free"}}`)
	})

	c := newClient(t, mux, "1KB")

	img, err := c.Load(context.Background(), make([]byte, 512))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if received != 512 || img.ID != "new" {
		t.Errorf("received = %d, image = %+v", received, img)
	}

	if _, err := c.Load(context.Background(), make([]byte, 2000)); !errors.Is(err, gateway.ErrUploadTooLarge) {
		t.Errorf("oversized Load() error = %v, want ErrUploadTooLarge", err)
	}
	if _, err := c.Load(context.Background(), nil); !errors.Is(err, gateway.ErrEmptyUpload) {
		t.Errorf("empty Load() error = %v, want ErrEmptyUpload", err)
	}
}
