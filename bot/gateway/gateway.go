// Package gateway adapts the Telegram transport to the narrow outbound
// surface the domain packages need. Every failure is one error kind:
// the delivery failed.
package gateway

import (
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// Gateway delivers outbound messages to a recipient by numeric id.
type Gateway interface {
	// SendText delivers plain text.
	SendText(recipientID int64, text string) error
	// SendHTML delivers text with HTML formatting enabled.
	SendHTML(recipientID int64, text string) error
	// SendCopy forwards a received message as a fresh copy, preserving media.
	SendCopy(recipientID int64, msg tele.Editable) error
}

type telegramGateway struct {
	bot *tele.Bot
}

// NewTelegram wraps a telebot instance.
func NewTelegram(bot *tele.Bot) Gateway {
	return &telegramGateway{bot: bot}
}

func (g *telegramGateway) SendText(recipientID int64, text string) error {
	if _, err := g.bot.Send(tele.ChatID(recipientID), text); err != nil {
		return fmt.Errorf("deliver to %d: %w", recipientID, err)
	}
	return nil
}

func (g *telegramGateway) SendHTML(recipientID int64, text string) error {
	if _, err := g.bot.Send(tele.ChatID(recipientID), text, tele.ModeHTML); err != nil {
		return fmt.Errorf("deliver to %d: %w", recipientID, err)
	}
	return nil
}

func (g *telegramGateway) SendCopy(recipientID int64, msg tele.Editable) error {
	if _, err := g.bot.Copy(tele.ChatID(recipientID), msg); err != nil {
		return fmt.Errorf("deliver copy to %d: %w", recipientID, err)
	}
	return nil
}
