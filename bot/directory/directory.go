// Package directory implements the durable user registry backing the
// moderation gate, broadcast fan-out, and personal message resolution.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/marybot/core/logger"
	"log/slog"
)

// Store is the full directory surface. Consumers should depend on the narrow
// subset they need rather than this interface.
type Store interface {
	Upsert(ctx context.Context, id int64, handle, displayName string) error
	ByID(ctx context.Context, id int64) (*UserRecord, error)
	ByHandle(ctx context.Context, handle string) (*UserRecord, error)
	ListIDs(ctx context.Context) ([]int64, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	TouchLastMessage(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int, error)
}

// Postgres is the sqlx-backed Store implementation.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Upsert inserts or refreshes the identity fields of a user. The ban flag,
// last-message timestamp, and first-seen timestamp are preserved when the
// record already exists.
func (p *Postgres) Upsert(ctx context.Context, id int64, handle, displayName string) error {
	const q = `
		INSERT INTO users (user_id, handle, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET handle = EXCLUDED.handle, display_name = EXCLUDED.display_name`
	if _, err := p.db.ExecContext(ctx, q, id, handle, displayName); err != nil {
		return fmt.Errorf("directory upsert %d: %w", id, err)
	}
	logger.Debug(ctx, "directory", "user.upsert",
		slog.Int64("user_id", id),
		slog.String("handle", handle),
	)
	return nil
}

// ByID returns the record for a user id, or nil when unknown.
func (p *Postgres) ByID(ctx context.Context, id int64) (*UserRecord, error) {
	var rec UserRecord
	err := p.db.GetContext(ctx, &rec, `SELECT * FROM users WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory lookup %d: %w", id, err)
	}
	return &rec, nil
}

// ByHandle returns the record matching a handle exactly (stored without the
// leading marker), or nil when unknown.
func (p *Postgres) ByHandle(ctx context.Context, handle string) (*UserRecord, error) {
	if handle == "" {
		return nil, nil
	}
	var rec UserRecord
	err := p.db.GetContext(ctx, &rec, `SELECT * FROM users WHERE handle = $1`, handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory lookup @%s: %w", handle, err)
	}
	return &rec, nil
}

// ListIDs returns the ids of every known user, banned included. Order is
// whatever the database yields.
func (p *Postgres) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := p.db.SelectContext(ctx, &ids, `SELECT user_id FROM users`); err != nil {
		return nil, fmt.Errorf("directory list: %w", err)
	}
	return ids, nil
}

// SetBanned flips the soft ban flag. Unknown ids are tolerated as a no-op.
func (p *Postgres) SetBanned(ctx context.Context, id int64, banned bool) error {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET banned = $2 WHERE user_id = $1`, id, banned)
	if err != nil {
		return fmt.Errorf("directory set banned %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	logger.Info(ctx, "directory", "user.ban",
		slog.Int64("user_id", id),
		slog.Bool("banned", banned),
		slog.Int64("count", affected),
	)
	return nil
}

// TouchLastMessage overwrites the last-message timestamp unconditionally.
func (p *Postgres) TouchLastMessage(ctx context.Context, id int64, at time.Time) error {
	if _, err := p.db.ExecContext(ctx, `UPDATE users SET last_message_at = $2 WHERE user_id = $1`, id, at); err != nil {
		return fmt.Errorf("directory touch %d: %w", id, err)
	}
	return nil
}

// Count returns the number of known users.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.GetContext(ctx, &n, `SELECT count(*) FROM users`); err != nil {
		return 0, fmt.Errorf("directory count: %w", err)
	}
	return n, nil
}
