package routes_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/kahuna/internal/routes"
	pkgroutes "github.com/JaimeStill/kahuna/pkg/routes"
)

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func TestBuild(t *testing.T) {
	sys := routes.New(slog.New(slog.DiscardHandler))

	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/healthz", Handler: text("ok")})
	sys.RegisterGroup(pkgroutes.Group{
		Prefix: "/api",
		Children: []pkgroutes.Group{
			{
				Prefix: "/search",
				Routes: []pkgroutes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: func(w http.ResponseWriter, r *http.Request) {
						io.WriteString(w, "session "+r.PathValue("id"))
					}},
				},
			},
		},
	})
	sys.Handle("/metrics", text("metrics"))

	handler := sys.Build()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/healthz", http.StatusOK, "ok"},
		{"GET", "/api/search/abc", http.StatusOK, "session abc"},
		{"GET", "/metrics", http.StatusOK, "metrics"},
		{"POST", "/healthz", http.StatusMethodNotAllowed, ""},
		{"GET", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}

	if len(sys.Groups()) != 1 || len(sys.Routes()) != 1 {
		t.Errorf("Groups() = %d, Routes() = %d", len(sys.Groups()), len(sys.Routes()))
	}
}
