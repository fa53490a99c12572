package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hxnx/kampita/internal/music"
)

// PlayerStateRepository stores player state blobs in the player_states table.
type PlayerStateRepository struct {
	db *sql.DB
}

var _ music.StateStore = (*PlayerStateRepository)(nil)

func NewPlayerStateRepository() *PlayerStateRepository {
	return &PlayerStateRepository{db: GetDB()}
}

func (r *PlayerStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("database not initialized")
	}

	const query = `
		SELECT payload
		FROM player_states
		WHERE state_key = $1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, music.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *PlayerStateRepository) Save(ctx context.Context, key string, payload []byte) error {
	if r == nil || r.db == nil {
		return errors.New("database not initialized")
	}

	const query = `
		INSERT INTO player_states (state_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (state_key)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, key, string(payload))
	return err
}

func (r *PlayerStateRepository) Keys(ctx context.Context) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT state_key FROM player_states ORDER BY state_key`)
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
