package handlers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/admin"
	"github.com/m3rciful/marybot/core/telegram/keyboard"
)

func adminKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnBroadcast, btnPersonal},
		[]string{btnBan, btnUnban},
		[]string{btnStats},
	)
}

func cancelKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{admin.BtnCancel})
}

// userKeyboard is the inline keyboard under the greeting: the site link (when
// configured) and the ask-a-question button.
func userKeyboard(siteURL string) *tele.ReplyMarkup {
	var buttons []keyboard.InlineBtn
	if siteURL != "" {
		buttons = append(buttons, keyboard.InlineBtn{Text: "🌐 Open the site", URL: siteURL})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "❓ Ask a question", Unique: cbAskQuestion})
	return keyboard.InlineButtons(buttons...)
}
