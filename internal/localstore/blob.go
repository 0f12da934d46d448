package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/JaimeStill/kahuna/pkg/storage"
)

// BlobPrefix is the storage directory holding blob-backed documents.
const BlobPrefix = "localstore"

type blob struct {
	storage storage.System
}

// NewBlob stores each document as a JSON blob under BlobPrefix.
func NewBlob(sys storage.System) Store {
	return &blob{storage: sys}
}

func (b *blob) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	data, err := b.storage.Retrieve(ctx, blobKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", key, err)
	}
	return data, nil
}

func (b *blob) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := b.storage.Store(ctx, blobKey(key), value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (b *blob) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := b.storage.Delete(ctx, blobKey(key)); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func blobKey(key string) string {
	return path.Join(BlobPrefix, key+".json")
}
