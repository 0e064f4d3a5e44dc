// Package followup schedules the one-shot reminder sent to users a fixed
// delay after they greet the bot.
package followup

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/core/logger"
	"log/slog"
)

// Directory is the subset consulted at fire time.
type Directory interface {
	ByID(ctx context.Context, id int64) (*directory.UserRecord, error)
}

// Sender delivers the reminder text.
type Sender interface {
	SendText(recipientID int64, text string) error
}

// Scheduler owns one pending timer per user id. Timers are in-memory only:
// pending follow-ups are lost on restart, which is an accepted limitation.
type Scheduler struct {
	dir   Directory
	gw    Sender
	delay time.Duration
	text  string

	mu      sync.Mutex
	pending map[int64]*time.Timer
	closed  bool
}

// New builds a scheduler with the given fire delay and reminder text.
func New(dir Directory, gw Sender, delay time.Duration, text string) *Scheduler {
	return &Scheduler{
		dir:     dir,
		gw:      gw,
		delay:   delay,
		text:    text,
		pending: make(map[int64]*time.Timer),
	}
}

// Schedule arms the follow-up for a user, replacing any pending timer for the
// same id.
func (s *Scheduler) Schedule(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.pending[userID]; ok {
		t.Stop()
	}
	s.pending[userID] = time.AfterFunc(s.delay, func() { s.fire(userID) })
}

// Pending reports how many follow-ups are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown stops every pending timer. Further Schedule calls are ignored.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) fire(userID int64) {
	s.mu.Lock()
	delete(s.pending, userID)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	ctx := context.Background()

	// Users banned while the timer was pending get nothing.
	rec, err := s.dir.ByID(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "followup", "followup.lookup_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if rec != nil && rec.Banned {
		logger.Info(ctx, "followup", "followup.suppressed",
			slog.Int64("user_id", userID),
			slog.String("reason", "banned"),
		)
		return
	}

	if err := s.gw.SendText(userID, s.text); err != nil {
		logger.Warn(ctx, "followup", "followup.send_failed",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	logger.Debug(ctx, "followup", "followup.sent", slog.Int64("user_id", userID))
}
