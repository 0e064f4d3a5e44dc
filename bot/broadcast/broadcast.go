// Package broadcast implements the sequential best-effort fan-out of one
// payload to every known user.
package broadcast

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/core/logger"
	"log/slog"
)

// Lister yields the recipients of a broadcast run.
type Lister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// Copier forwards the operator's original message to one recipient.
type Copier interface {
	SendCopy(recipientID int64, msg tele.Editable) error
}

// Report tallies one broadcast run.
type Report struct {
	Sent   int
	Failed int
}

// Dispatcher forwards one payload to every directory entry except the
// operator, pacing sends to respect transport rate limits.
type Dispatcher struct {
	lister     Lister
	copier     Copier
	operatorID int64
	limiter    *rate.Limiter
}

// New builds a dispatcher that waits interval between consecutive sends.
func New(lister Lister, copier Copier, operatorID int64, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Dispatcher{
		lister:     lister,
		copier:     copier,
		operatorID: operatorID,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run delivers msg to every eligible recipient in directory order. A failed
// delivery is counted and final for this run: there are no retries and no
// early abort. The operator's own id is skipped.
func (d *Dispatcher) Run(ctx context.Context, msg tele.Editable) (Report, error) {
	ids, err := d.lister.ListIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	var rep Report
	for _, id := range ids {
		if id == d.operatorID {
			continue
		}
		if err := d.limiter.Wait(ctx); err != nil {
			// Context cancelled mid-run: report what was done so far.
			logger.Warn(ctx, "broadcast", "broadcast.interrupted",
				slog.Int("sent", rep.Sent),
				slog.Int("failed", rep.Failed),
			)
			return rep, err
		}
		if err := d.copier.SendCopy(id, msg); err != nil {
			rep.Failed++
			logger.Warn(ctx, "broadcast", "broadcast.skip",
				slog.Int64("user_id", id),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		rep.Sent++
	}

	logger.Info(ctx, "broadcast", "broadcast.done",
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return rep, nil
}
