package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button: either a callback button (Unique set)
// or a URL button (URL set).
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

// ReplyButtons builds a resizable reply keyboard from rows of button labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// InlineButtons builds an inline keyboard where each button takes its own row.
func InlineButtons(buttons ...InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(buttons))
	for _, b := range buttons {
		var btn tele.Btn
		if b.URL != "" {
			btn = markup.URL(b.Text, b.URL)
		} else {
			btn = markup.Data(b.Text, b.Unique, b.Data)
		}
		inline = append(inline, []tele.InlineButton{*btn.Inline()})
	}
	markup.InlineKeyboard = inline
	return markup
}
