package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/kahuna/internal/config"
	"github.com/JaimeStill/kahuna/internal/infrastructure"
	"github.com/JaimeStill/kahuna/internal/search"
)

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /images", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("until") != "" {
			io.WriteString(w, `{"data":[]}`)
			return
		}
		io.WriteString(w, `{"data":[
			{"uri":"https://media/images/a","data":{"id":"a","uploadTime":"2015-01-02T10:00:00Z","cost":"free"}},
			{"uri":"https://media/images/b","data":{"id":"b","uploadTime":"2015-01-01T10:00:00Z","cost":"paid"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T) (http.Handler, *infrastructure.Infrastructure) {
	t.Helper()

	media := newMediaServer(t)
	cfg := &config.Config{}
	cfg.Gateway.MediaURI = media.URL
	cfg.Seen.Backend = config.SeenBackendMemory
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	infra, err := infrastructure.New(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure.New() failed: %v", err)
	}

	return buildHandler(infra, NewDomain(infra, cfg), cfg), infra
}

func TestHealthAndReadiness(t *testing.T) {
	handler, infra := newTestHandler(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusServiceUnavailable},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
		}
	}

	infra.Lifecycle.WaitForStartup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz after startup = %d, want 200", rec.Code)
	}
}

func TestSearchFlow(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/search/", strings.NewReader(`{"query":"cats","freeOnly":true}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/search = %d, body %s", rec.Code, rec.Body.String())
	}

	var view search.SessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Total != 2 || len(view.Results) != 1 || view.Results[0].ID != "a" {
		t.Errorf("view = %+v", view)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/search/"+view.ID.String()+"/more", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST more = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !view.Exhausted {
		t.Error("session should be exhausted after an empty continuation page")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/seen", strings.NewReader(`{"query":"cats","uploadTime":"2015-01-02T10:00:00Z"}`)))
	if rec.Code >= 300 {
		t.Fatalf("POST /api/seen = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/search/"+view.ID.String(), nil))
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.SeenSince == nil || !view.Results[0].Seen {
		t.Errorf("result not flagged seen: %+v", view)
	}
}
