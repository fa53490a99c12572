package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const guildRepoTimeout = 2 * time.Second

// DashboardEntry locates a guild's now-playing panel message.
type DashboardEntry struct {
	GuildID   string
	ChannelID string
	MessageID string
	UpdatedAt time.Time
}

type GuildRepository struct {
	db *sql.DB
}

func NewGuildRepository() *GuildRepository {
	return &GuildRepository{db: GetDB()}
}

// Enabled reports whether dashboard entries are persisted at all.
func (r *GuildRepository) Enabled() bool {
	return r != nil && r.db != nil
}

func (r *GuildRepository) UpsertDashboardEntry(ctx context.Context, entry DashboardEntry) error {
	if !r.Enabled() {
		return nil
	}
	if entry.GuildID == "" || entry.ChannelID == "" || entry.MessageID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, guildRepoTimeout)
	defer cancel()

	const query = `
		INSERT INTO dashboard_entries (guild_id, channel_id, message_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (guild_id)
		DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			message_id = EXCLUDED.message_id,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, entry.GuildID, entry.ChannelID, entry.MessageID)
	return err
}

func (r *GuildRepository) GetDashboardEntry(ctx context.Context, guildID string) (DashboardEntry, bool, error) {
	if !r.Enabled() || guildID == "" {
		return DashboardEntry{}, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, guildRepoTimeout)
	defer cancel()

	const query = `
		SELECT channel_id, message_id, updated_at
		FROM dashboard_entries
		WHERE guild_id = $1
	`

	entry := DashboardEntry{GuildID: guildID}
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&entry.ChannelID, &entry.MessageID, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DashboardEntry{}, false, nil
		}
		return DashboardEntry{}, false, err
	}

	return entry, true, nil
}

// ListDashboardEntries returns every stored panel, used to resume refreshing
// after a restart.
func (r *GuildRepository) ListDashboardEntries(ctx context.Context) ([]DashboardEntry, error) {
	if !r.Enabled() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, guildRepoTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT guild_id, channel_id, message_id, updated_at FROM dashboard_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DashboardEntry
	for rows.Next() {
		var e DashboardEntry
		if err := rows.Scan(&e.GuildID, &e.ChannelID, &e.MessageID, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *GuildRepository) DeleteDashboardEntry(ctx context.Context, guildID string) error {
	if !r.Enabled() || guildID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, guildRepoTimeout)
	defer cancel()

	const query = `
		DELETE FROM dashboard_entries
		WHERE guild_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, guildID)
	return err
}
