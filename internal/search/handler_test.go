package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/localstore"
	"github.com/JaimeStill/kahuna/internal/routes"
	"github.com/JaimeStill/kahuna/internal/search"
	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/JaimeStill/kahuna/pkg/logging"
	"github.com/google/uuid"
)

func newSearchServer(t *testing.T, f search.Searcher, tracker seen.System) http.Handler {
	t.Helper()

	logger := logging.Discard()
	registry := search.NewRegistry(search.New(f, 0, logger), logger)

	sys := routes.New(logger)
	sys.RegisterGroup(search.NewHandler(registry, tracker, logger).Routes())
	return sys.Build()
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) search.SessionView {
	t.Helper()

	var view search.SessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestHandler_StartAndMore(t *testing.T) {
	f := &fakeSearcher{pages: [][]images.Image{
		{img("a", 10, images.CostFree), img("b", 8, images.CostPaid)},
		{img("c", 6, images.CostFree)},
	}}

	tracker := seen.New(localstore.NewMemory(), "", logging.Discard())
	tracker.MarkSeen(context.Background(), "cats", img("b", 8, "").UploadTime)

	srv := newSearchServer(t, f, tracker)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"cats","freeOnly":true}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}

	view := decodeView(t, rec)
	if view.Total != 2 || len(view.Results) != 1 || view.Results[0].URI != "a" {
		t.Errorf("view = %+v, want one visible of two", view)
	}
	if view.Results[0].Seen {
		t.Error("a uploaded after the mark should not be seen")
	}
	if view.Results[0].Drag[images.MimeURIList] != "a" {
		t.Errorf("drag data = %v", view.Results[0].Drag)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/search/"+view.ID.String()+"/more", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("more status = %d, body = %s", rec.Code, rec.Body.String())
	}

	view = decodeView(t, rec)
	if view.Total != 3 || len(view.Results) != 2 {
		t.Fatalf("view after more = %+v", view)
	}
	if !view.Results[1].Seen {
		t.Error("c uploaded before the mark should be seen")
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/search/"+view.ID.String(), nil))
	if rec.Code != http.StatusOK || decodeView(t, rec).Total != 3 {
		t.Errorf("GET status = %d", rec.Code)
	}
}

func TestHandler_StartDefaultsToFree(t *testing.T) {
	f := &fakeSearcher{pages: [][]images.Image{
		{img("a", 10, images.CostPaid), img("b", 8, images.CostFree)},
	}}
	srv := newSearchServer(t, f, seen.New(localstore.NewMemory(), "", logging.Discard()))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"cats"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}

	view := decodeView(t, rec)
	if view.Total != 2 || len(view.Results) != 1 || view.Results[0].URI != "b" {
		t.Errorf("view = %+v, want only the free image", view)
	}
}

func TestHandler_Errors(t *testing.T) {
	f := &fakeSearcher{errs: map[int]error{0: &gateway.Error{Op: "search", Status: 500, Err: errors.New("down")}}}
	srv := newSearchServer(t, f, seen.New(localstore.NewMemory(), "", logging.Discard()))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"gateway failure", "POST", "/search", `{}`, http.StatusBadGateway},
		{"bad body", "POST", "/search", `{"query":`, http.StatusBadRequest},
		{"bad id", "GET", "/search/not-a-uuid", "", http.StatusBadRequest},
		{"unknown id", "GET", "/search/" + uuid.NewString(), "", http.StatusNotFound},
		{"more unknown id", "POST", "/search/" + uuid.NewString() + "/more", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
