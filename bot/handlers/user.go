package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/admin"
	"github.com/m3rciful/marybot/bot/moderation"
	"github.com/m3rciful/marybot/core/logger"
	tghelpers "github.com/m3rciful/marybot/core/telegram/helpers"
)

func (h *Handlers) onStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if err := h.store.Upsert(ctx, sender.ID, sender.Username, displayName(sender)); err != nil {
		logger.Warn(ctx, "directory", "directory.upsert_failed",
			slog.String("err", err.Error()),
		)
	}

	if h.sess.IsOperator(sender.ID) {
		return c.Send(admin.TextPanel, tele.ModeHTML, adminKeyboard())
	}

	// Banned users get no greeting, and rapid restarts are dropped quietly.
	if err := h.gate.Check(ctx, sender.ID, time.Now()); err != nil {
		return nil
	}

	h.followup.Schedule(sender.ID)
	return c.Send(greeting(displayName(sender)), tele.ModeHTML, userKeyboard(h.siteURL))
}

// onMessage splits inbound traffic between the operator's flows and the
// user-to-operator relay. Group chatter is ignored.
func (h *Handlers) onMessage(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if chat := c.Chat(); chat == nil || chat.Type != tele.ChatPrivate {
		return nil
	}
	if h.sess.IsOperator(sender.ID) {
		return h.onOperatorMessage(c)
	}
	return h.onUserMessage(c)
}

func (h *Handlers) onUserMessage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "user_message")
	sender := c.Sender()

	// Keep the directory entry fresh even when the gate later rejects.
	if err := h.store.Upsert(ctx, sender.ID, sender.Username, displayName(sender)); err != nil {
		logger.Warn(ctx, "directory", "directory.upsert_failed",
			slog.String("err", err.Error()),
		)
	}

	if err := h.gate.Check(ctx, sender.ID, time.Now()); err != nil {
		switch {
		case errors.Is(err, moderation.ErrBanned):
			return nil
		case errors.Is(err, moderation.ErrRateLimited):
			return c.Send(textSlowDown)
		default:
			return fmt.Errorf("gate check: %w", err)
		}
	}

	operatorID := h.sess.OperatorID()
	if err := h.gw.SendHTML(operatorID, relayHeader(displayName(sender), sender.Username, sender.ID)); err != nil {
		return fmt.Errorf("relay header: %w", err)
	}
	if err := h.gw.SendCopy(operatorID, c.Message()); err != nil {
		return fmt.Errorf("relay copy: %w", err)
	}

	logger.Info(ctx, "relay", "relay.delivered", slog.Int64("user_id", sender.ID))
	return c.Send(textRelayAck)
}

func (h *Handlers) onAskQuestion(c tele.Context) error {
	tghelpers.WithHandler(c, "ask_question")
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(textAskPrompt, tele.ModeHTML)
}

// onCallback dispatches inline-button presses through the callback registry.
func (h *Handlers) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	unique := cb.Unique
	if unique == "" {
		unique = callbackUnique(cb.Data)
	}
	handler, ok := h.reg.GetCallback(unique)
	if !ok {
		return c.Respond()
	}
	return handler(c)
}

// callbackUnique strips telebot's callback framing ("\funique|data") down to
// the unique key.
func callbackUnique(data string) string {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.Index(data, "|"); i >= 0 {
		data = data[:i]
	}
	return data
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "there"
	}
	return name
}
