package handlers

import (
	tele "gopkg.in/telebot.v4"
)

// teleReplier adapts tele.Context to the admin flow's reply surface. Prompt
// keeps the cancel keyboard up while a flow waits for input; Done restores
// the panel keyboard.
type teleReplier struct {
	c tele.Context
}

func (r teleReplier) Notice(text string) error {
	return r.c.Send(text, tele.ModeHTML)
}

func (r teleReplier) Prompt(text string) error {
	return r.c.Send(text, tele.ModeHTML, cancelKeyboard())
}

func (r teleReplier) Done(text string) error {
	return r.c.Send(text, tele.ModeHTML, adminKeyboard())
}
