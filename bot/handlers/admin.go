package handlers

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/admin"
	"github.com/m3rciful/marybot/bot/session"
	tghelpers "github.com/m3rciful/marybot/core/telegram/helpers"
)

func (h *Handlers) onAdminPanel(c tele.Context) error {
	tghelpers.WithHandler(c, "admin_panel")
	return c.Send(admin.TextPanel, tele.ModeHTML, adminKeyboard())
}

func (h *Handlers) onCancel(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cancel")
	return h.sess.Do(func() error {
		return h.flow.Cancel(ctx, teleReplier{c})
	})
}

// onOperatorMessage routes one operator input. Inputs are serialized through
// the session: text arriving while a broadcast runs queues behind it instead
// of landing in a half-finished flow.
func (h *Handlers) onOperatorMessage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "operator_message")
	r := teleReplier{c}

	return h.sess.Do(func() error {
		if h.sess.InProgress() {
			return h.flow.HandleInput(ctx, messageText(c), c.Message(), r)
		}

		switch strings.TrimSpace(c.Text()) {
		case btnBroadcast:
			return h.flow.Begin(ctx, session.ModeAwaitingBroadcast, r)
		case btnPersonal:
			return h.flow.Begin(ctx, session.ModeAwaitingPersonal, r)
		case btnBan:
			return h.flow.Begin(ctx, session.ModeAwaitingBanTarget, r)
		case btnUnban:
			return h.flow.Begin(ctx, session.ModeAwaitingUnbanTarget, r)
		case btnStats:
			return h.flow.Stats(ctx, r)
		default:
			return c.Send(textOperatorHint, tele.ModeHTML, adminKeyboard())
		}
	})
}

// messageText returns the text of a message, falling back to the media
// caption so captioned photos work as flow input.
func messageText(c tele.Context) string {
	if t := c.Text(); t != "" {
		return t
	}
	if m := c.Message(); m != nil {
		return m.Caption
	}
	return ""
}
