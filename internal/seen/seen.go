// Package seen tracks, per search query, the upload time of the newest
// image the user has acknowledged seeing.
package seen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/localstore"
)

// DefaultKey is the store key holding the seen marks object.
const DefaultKey = "search.seenFrom"

// AnyQuery is the query key used for an empty query.
const AnyQuery = "*"

// System records and reads seen marks.
type System interface {
	// MarkSeen records uploadTime as the last seen time for queryKey.
	// Marks for other queries are preserved. The last write wins.
	MarkSeen(ctx context.Context, queryKey string, uploadTime time.Time) error

	// SeenSince returns the mark for queryKey or nil when there is none.
	SeenSince(ctx context.Context, queryKey string) (*time.Time, error)

	// Marks returns every recorded mark.
	Marks(ctx context.Context) (map[string]time.Time, error)
}

type tracker struct {
	store  localstore.Store
	key    string
	logger *slog.Logger

	// serializes read-merge-write within the process
	mu sync.Mutex
}

// New creates a tracker over store. An empty key selects DefaultKey.
func New(store localstore.Store, key string, logger *slog.Logger) System {
	if key == "" {
		key = DefaultKey
	}
	return &tracker{
		store:  store,
		key:    key,
		logger: logger.With("system", "seen"),
	}
}

func (t *tracker) MarkSeen(ctx context.Context, queryKey string, uploadTime time.Time) error {
	raw, err := json.Marshal(uploadTime.UTC())
	if err != nil {
		return fmt.Errorf("encode mark: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := localstore.Merge(ctx, t.store, t.key, map[string]json.RawMessage{queryKey: raw}); err != nil {
		return fmt.Errorf("mark seen %q: %w", queryKey, err)
	}

	t.logger.Debug("marked seen", "query", queryKey, "upload_time", uploadTime)
	return nil
}

func (t *tracker) SeenSince(ctx context.Context, queryKey string) (*time.Time, error) {
	marks, err := t.Marks(ctx)
	if err != nil {
		return nil, err
	}

	since, ok := marks[queryKey]
	if !ok {
		return nil, nil
	}
	return &since, nil
}

func (t *tracker) Marks(ctx context.Context) (map[string]time.Time, error) {
	obj, err := localstore.GetObject(ctx, t.store, t.key)
	if err != nil {
		return nil, fmt.Errorf("read marks: %w", err)
	}

	marks := make(map[string]time.Time, len(obj))
	for k, v := range obj {
		var ts time.Time
		if err := json.Unmarshal(v, &ts); err != nil {
			t.logger.Warn("skipping unreadable mark", "query", k, "error", err)
			continue
		}
		marks[k] = ts
	}
	return marks, nil
}

// IsSeen reports whether img was uploaded at or before since.
// A nil since means nothing has been seen.
func IsSeen(img images.Image, since *time.Time) bool {
	return since != nil && !img.UploadTime.After(*since)
}

// QueryKey returns the mark key for a search query.
func QueryKey(query string) string {
	if query == "" {
		return AnyQuery
	}
	return query
}
