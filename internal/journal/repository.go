package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS media_events (
    id            UUID PRIMARY KEY,
    kind          TEXT        NOT NULL,
    principal     TEXT        NOT NULL,
    path          TEXT        NOT NULL DEFAULT '',
    hash          TEXT        NOT NULL DEFAULT '',
    original_name TEXT        NOT NULL DEFAULT '',
    dedup         BOOLEAN     NOT NULL DEFAULT FALSE,
    status        TEXT        NOT NULL,
    message       TEXT        NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS media_events_created_at_idx ON media_events (created_at DESC);`

// Repository stores events in PostgreSQL.
type Repository struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

// NewRepository builds a journal repository on top of pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, nowFunc: time.Now}
}

// EnsureSchema creates the events table when it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Record appends one event.
func (r *Repository) Record(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	ev = stamp(ev, r.nowFunc())

	query := `
INSERT INTO media_events (id, kind, principal, path, hash, original_name, dedup, status, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	if _, err := r.pool.Exec(ctx, query,
		ev.ID,
		ev.Kind,
		ev.Principal,
		ev.Path,
		ev.Hash,
		ev.OriginalName,
		ev.Dedup,
		ev.Status,
		ev.Message,
		ev.CreatedAt,
	); err != nil {
		return fmt.Errorf("record journal event: %w", err)
	}
	return nil
}

// Recent returns the newest events first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, kind, principal, path, hash, original_name, dedup, status, message, created_at
FROM media_events
ORDER BY created_at DESC, id
LIMIT $1;`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Principal, &ev.Path, &ev.Hash, &ev.OriginalName, &ev.Dedup, &ev.Status, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal events: %w", err)
	}
	return events, nil
}
