// Package moderation implements the admission gate every inbound end-user
// message must pass: banned users are rejected outright, and the rest are
// throttled by the interval since their last accepted message.
package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/core/logger"
	"log/slog"
)

var (
	// ErrBanned rejects a user whose ban flag is set, regardless of timing.
	ErrBanned = errors.New("moderation: user is banned")
	// ErrRateLimited rejects a message arriving before the minimum delay has
	// elapsed since the user's last accepted message.
	ErrRateLimited = errors.New("moderation: rate limited")
)

// Directory is the subset of the user directory the gate consults.
type Directory interface {
	ByID(ctx context.Context, id int64) (*directory.UserRecord, error)
	TouchLastMessage(ctx context.Context, id int64, at time.Time) error
}

// Gate decides whether an inbound user message is admitted.
type Gate struct {
	dir      Directory
	minDelay time.Duration
}

// New builds a gate with the configured minimum inter-message delay.
func New(dir Directory, minDelay time.Duration) *Gate {
	return &Gate{dir: dir, minDelay: minDelay}
}

// Check admits or rejects a message from the given user at the given instant.
// The ban check strictly precedes the rate check, so a banned user is never
// told to retry later. The last-message timestamp is advanced only on allow:
// rejected attempts keep being compared against the last accepted message, so
// hammering the gate cannot reset the throttle window.
func (g *Gate) Check(ctx context.Context, userID int64, now time.Time) error {
	rec, err := g.dir.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if rec != nil && rec.Banned {
		logger.Info(ctx, "gate", "gate.deny",
			slog.Int64("user_id", userID),
			slog.String("reason", "banned"),
		)
		return ErrBanned
	}

	if rec != nil && rec.LastMessageAt != nil {
		if delta := now.Sub(*rec.LastMessageAt); delta < g.minDelay {
			logger.Info(ctx, "gate", "gate.deny",
				slog.Int64("user_id", userID),
				slog.String("reason", "rate_limited"),
				slog.Int64("duration_ms", delta.Milliseconds()),
			)
			return ErrRateLimited
		}
	}

	if err := g.dir.TouchLastMessage(ctx, userID, now); err != nil {
		return err
	}
	logger.Debug(ctx, "gate", "gate.allow", slog.Int64("user_id", userID))
	return nil
}
