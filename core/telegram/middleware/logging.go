package middleware

import (
	"time"

	"github.com/m3rciful/marybot/core/logger"
	tghelpers "github.com/m3rciful/marybot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware logs a single receipt line per update and seeds the
// request context (rid + update metadata) for downstream handlers.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.WithUpdateMeta(nil, upd.ID, userID, chatID), rid)
		tghelpers.StoreContext(c, ctx)

		attrs := []slog.Attr{
			slog.Int("update_id", upd.ID),
		}
		if userID != 0 && user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("handle", logger.SanitizeLimit(user.Username, 64)))
		}
		if upd.Callback != nil {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Callback.Unique+upd.Callback.Data, 128)))
		} else if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		start := time.Now()
		err := next(c)
		if err != nil {
			logger.Error(ctx, "tg", "handler.failed",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
			)
		}
		return err
	}
}
