// Package localstore keeps player state in a SQLite file on the bot host. It
// mirrors a browser's local storage: one string value per key.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hxnx/kampita/internal/music"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	*sql.DB
}

var _ music.StateStore = (*Store)(nil)

// Open opens or creates the SQLite database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection also keeps :memory:
	// databases shared.
	d.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_storage (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init local storage: %w", err)
		}
	}
	return &Store{d}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, music.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.ExecContext(ctx,
		`INSERT INTO local_storage(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, string(payload))
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.ExecContext(ctx, `DELETE FROM local_storage WHERE key=?`, key)
	return err
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.QueryContext(ctx, `SELECT key FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
