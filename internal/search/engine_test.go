package search_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/search"
	"github.com/JaimeStill/kahuna/pkg/logging"
)

var base = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

func img(uri string, minute int, cost images.Cost) images.Image {
	return images.Image{
		URI:        uri,
		ID:         uri,
		UploadTime: base.Add(time.Duration(minute) * time.Minute),
		Cost:       cost,
	}
}

type fakeSearcher struct {
	mu    sync.Mutex
	pages [][]images.Image
	errs  map[int]error
	calls []gateway.SearchOptions
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts gateway.SearchOptions) ([]images.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.calls)
	f.calls = append(f.calls, opts)

	if err := f.errs[idx]; err != nil {
		return nil, err
	}
	if idx < len(f.pages) {
		return f.pages[idx], nil
	}
	return nil, nil
}

func uris(set []images.Image) []string {
	out := make([]string, len(set))
	for i, im := range set {
		out[i] = im.URI
	}
	return out
}

func newEngine(f search.Searcher) search.System {
	return search.New(f, 0, logging.Discard())
}

func TestStart(t *testing.T) {
	archived := true
	f := &fakeSearcher{pages: [][]images.Image{{img("a", 10, images.CostFree), img("b", 5, images.CostPaid)}}}
	since := base

	res, err := newEngine(f).Start(context.Background(), search.Context{Query: "cats", Since: &since, Archived: &archived})
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if !slices.Equal(uris(res.Images), []string{"a", "b"}) {
		t.Errorf("Images = %v", uris(res.Images))
	}
	if res.Exhausted {
		t.Error("Exhausted = true for a non-empty first page")
	}

	opts := f.calls[0]
	if opts.Since == nil || !opts.Since.Equal(since) || opts.Until != nil {
		t.Errorf("first page options = %+v, want since only", opts)
	}
	if opts.Archived == nil || !*opts.Archived {
		t.Errorf("Archived not forwarded: %+v", opts)
	}
}

func TestStart_EmptyIsExhausted(t *testing.T) {
	res, err := newEngine(&fakeSearcher{}).Start(context.Background(), search.Context{})
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !res.Exhausted || len(res.Images) != 0 {
		t.Errorf("Start() = %+v, want empty and exhausted", res)
	}
}

func TestStart_GatewayError(t *testing.T) {
	gwErr := &gateway.Error{Op: "search", Status: 500, Err: errors.New("boom")}
	f := &fakeSearcher{errs: map[int]error{0: gwErr}}

	_, err := newEngine(f).Start(context.Background(), search.Context{})

	var got *gateway.Error
	if !errors.As(err, &got) || got != gwErr {
		t.Errorf("Start() error = %v, want wrapped gateway error", err)
	}
}

func TestFetchMore_Deduplicates(t *testing.T) {
	current := []images.Image{img("a", 10, images.CostFree), img("b", 5, images.CostFree)}
	f := &fakeSearcher{pages: [][]images.Image{{img("b", 5, images.CostFree), img("c", 4, images.CostFree)}}}

	res, err := newEngine(f).FetchMore(context.Background(), search.Context{}, current)
	if err != nil {
		t.Fatalf("FetchMore() failed: %v", err)
	}

	if !slices.Equal(uris(res.Images), []string{"a", "b", "c"}) {
		t.Errorf("Images = %v, want [a b c]", uris(res.Images))
	}
	if res.Exhausted {
		t.Error("Exhausted = true after new images were added")
	}
	if until := f.calls[0].Until; until == nil || !until.Equal(current[1].UploadTime) {
		t.Errorf("Until = %v, want last image upload time", until)
	}
	if f.calls[0].Since != nil {
		t.Error("Since should not be sent when fetching more")
	}
}

func TestFetchMore_WalksPastPaidPages(t *testing.T) {
	current := []images.Image{img("a", 10, images.CostFree)}
	f := &fakeSearcher{pages: [][]images.Image{
		{img("c", 8, images.CostPaid)},
		{img("d", 6, images.CostFree)},
	}}

	res, err := newEngine(f).FetchMore(context.Background(), search.Context{FreeOnly: true}, current)
	if err != nil {
		t.Fatalf("FetchMore() failed: %v", err)
	}

	if !slices.Equal(uris(res.Images), []string{"a", "c", "d"}) {
		t.Errorf("Images = %v, want [a c d]", uris(res.Images))
	}
	if len(f.calls) != 2 {
		t.Fatalf("gateway calls = %d, want 2", len(f.calls))
	}
	if !f.calls[1].Until.Equal(img("c", 8, "").UploadTime) {
		t.Errorf("second Until = %v, want upload time of c", f.calls[1].Until)
	}
}

func TestFetchMore_NoWalkWithoutFreeFilter(t *testing.T) {
	current := []images.Image{img("a", 10, images.CostFree)}
	f := &fakeSearcher{pages: [][]images.Image{
		{img("c", 8, images.CostPaid)},
		{img("d", 6, images.CostFree)},
	}}

	res, err := newEngine(f).FetchMore(context.Background(), search.Context{}, current)
	if err != nil {
		t.Fatalf("FetchMore() failed: %v", err)
	}
	if len(f.calls) != 1 || !slices.Equal(uris(res.Images), []string{"a", "c"}) {
		t.Errorf("calls = %d, Images = %v", len(f.calls), uris(res.Images))
	}
}

func TestFetchMore_Exhaustion(t *testing.T) {
	current := []images.Image{img("a", 10, images.CostFree), img("b", 5, images.CostFree)}

	tests := []struct {
		name      string
		sc        search.Context
		pages     [][]images.Image
		wantURIs  []string
		wantCalls int
	}{
		{
			name:      "empty page",
			pages:     [][]images.Image{{}},
			wantURIs:  []string{"a", "b"},
			wantCalls: 1,
		},
		{
			name:      "only duplicates",
			pages:     [][]images.Image{{img("b", 5, images.CostFree)}},
			wantURIs:  []string{"a", "b"},
			wantCalls: 1,
		},
		{
			name: "paid walk runs out",
			sc:   search.Context{FreeOnly: true},
			pages: [][]images.Image{
				{img("c", 4, images.CostPaid)},
				{img("d", 3, images.CostPaid)},
				{},
			},
			wantURIs:  []string{"a", "b", "c", "d"},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSearcher{pages: tt.pages}

			res, err := newEngine(f).FetchMore(context.Background(), tt.sc, current)
			if err != nil {
				t.Fatalf("FetchMore() failed: %v", err)
			}
			if !res.Exhausted {
				t.Error("Exhausted = false")
			}
			if !slices.Equal(uris(res.Images), tt.wantURIs) {
				t.Errorf("Images = %v, want %v", uris(res.Images), tt.wantURIs)
			}
			if len(f.calls) != tt.wantCalls {
				t.Errorf("gateway calls = %d, want %d", len(f.calls), tt.wantCalls)
			}
		})
	}
}

func TestFetchMore_EmptyCurrent(t *testing.T) {
	f := &fakeSearcher{pages: [][]images.Image{{img("a", 1, images.CostFree)}}}

	res, err := newEngine(f).FetchMore(context.Background(), search.Context{}, nil)
	if err != nil {
		t.Fatalf("FetchMore() failed: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("gateway calls = %d, want 0", len(f.calls))
	}
	if !res.Exhausted || len(res.Images) != 0 {
		t.Errorf("FetchMore() = %+v, want unchanged and exhausted", res)
	}
}

func TestFetchMore_ErrorLeavesInputUntouched(t *testing.T) {
	current := make([]images.Image, 1, 8)
	current[0] = img("a", 10, images.CostFree)
	f := &fakeSearcher{
		pages: [][]images.Image{{img("c", 8, images.CostPaid)}},
		errs:  map[int]error{1: &gateway.Error{Op: "search", Status: 502, Err: errors.New("bad")}},
	}

	_, err := newEngine(f).FetchMore(context.Background(), search.Context{FreeOnly: true}, current)
	if !errors.Is(err, gateway.ErrGateway) {
		t.Fatalf("FetchMore() error = %v, want gateway error", err)
	}

	if len(current) != 1 || current[:2][1].URI != "" {
		t.Errorf("input slice was modified: %v", uris(current[:2]))
	}
}

func TestFetchMore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeSearcher{pages: [][]images.Image{{img("b", 1, images.CostFree)}}}
	_, err := newEngine(f).FetchMore(ctx, search.Context{}, []images.Image{img("a", 2, images.CostFree)})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchMore() error = %v, want context.Canceled", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("gateway calls = %d, want 0", len(f.calls))
	}
}

func TestFreeFilter(t *testing.T) {
	free := img("a", 0, images.CostFree)
	paid := img("b", 0, images.CostPaid)

	tests := []struct {
		name string
		img  images.Image
		sc   search.Context
		want bool
	}{
		{"free unfiltered", free, search.Context{}, true},
		{"paid unfiltered", paid, search.Context{}, true},
		{"free filtered", free, search.Context{FreeOnly: true}, true},
		{"paid filtered", paid, search.Context{FreeOnly: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := search.FreeFilter(tt.img, tt.sc); got != tt.want {
				t.Errorf("FreeFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContext_Equal(t *testing.T) {
	t1 := base
	t2 := base.Add(time.Hour)
	yes, no := true, false

	tests := []struct {
		name string
		a, b search.Context
		want bool
	}{
		{"zero", search.Context{}, search.Context{}, true},
		{"query differs", search.Context{Query: "a"}, search.Context{Query: "b"}, false},
		{"since equal", search.Context{Since: &t1}, search.Context{Since: &t1}, true},
		{"since differs", search.Context{Since: &t1}, search.Context{Since: &t2}, false},
		{"since nil vs set", search.Context{}, search.Context{Since: &t1}, false},
		{"archived differs", search.Context{Archived: &yes}, search.Context{Archived: &no}, false},
		{"free differs", search.Context{FreeOnly: true}, search.Context{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
