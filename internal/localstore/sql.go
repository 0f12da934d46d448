package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/kahuna/pkg/database"
)

const (
	selectQuery = `SELECT value FROM local_store WHERE store_key = ?`
	upsertQuery = `INSERT INTO local_store (store_key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (store_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteQuery = `DELETE FROM local_store WHERE store_key = ?`
)

type sqlStore struct {
	db     *sql.DB
	get    string
	upsert string
	remove string
}

// NewSQL stores documents in the local_store table. The schema is created
// by running Migrations before use.
func NewSQL(db *sql.DB, driver database.Driver) Store {
	return &sqlStore{
		db:     db,
		get:    rebind(driver, selectQuery),
		upsert: rebind(driver, upsertQuery),
		remove: rebind(driver, deleteQuery),
	}
}

func (s *sqlStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, s.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := validKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.remove, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func rebind(driver database.Driver, query string) string {
	if driver != database.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
