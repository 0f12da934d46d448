// Package localstore is a small durable key-value store of JSON documents.
// It backs client-side state such as seen marks and is available over
// memory, blob storage, PostgreSQL and SQLite.
package localstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/kahuna/internal/metrics"
)

// Migrations holds the schema for the SQL backends.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory within Migrations containing the files.
const MigrationsDir = "migrations"

var (
	ErrNotFound   = errors.New("localstore: key not found")
	ErrInvalidKey = errors.New("localstore: invalid key")
	ErrNotObject  = errors.New("localstore: stored value is not a JSON object")
)

// Store holds JSON documents by key.
type Store interface {
	// Get returns the stored document or ErrNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores value under key, replacing any previous document.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// GetObject decodes the document at key as a JSON object.
// A missing key yields an empty object.
func GetObject(ctx context.Context, s Store, key string) (map[string]json.RawMessage, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, key)
	}
	return obj, nil
}

// Merge shallow-merges patch into the object stored at key. Keys present in
// patch replace existing ones; all others are kept. A nil patch removes key.
func Merge(ctx context.Context, s Store, key string, patch map[string]json.RawMessage) error {
	if patch == nil {
		return s.Remove(ctx, key)
	}

	obj, err := GetObject(ctx, s, key)
	if err != nil {
		return err
	}
	for k, v := range patch {
		obj[k] = v
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

type instrumented struct {
	backend string
	store   Store
}

// Instrument records operation durations for store under the backend label.
func Instrument(backend string, store Store) Store {
	return &instrumented{backend: backend, store: store}
}

func (i *instrumented) Get(ctx context.Context, key string) (json.RawMessage, error) {
	defer i.observe("get", time.Now())
	return i.store.Get(ctx, key)
}

func (i *instrumented) Set(ctx context.Context, key string, value json.RawMessage) error {
	defer i.observe("set", time.Now())
	return i.store.Set(ctx, key, value)
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	defer i.observe("remove", time.Now())
	return i.store.Remove(ctx, key)
}

func (i *instrumented) observe(op string, start time.Time) {
	metrics.RecordStoreOperation(i.backend, op, time.Since(start))
}

func validKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
