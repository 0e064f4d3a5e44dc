package handlers

import (
	"fmt"
	"html"
)

// Admin panel button labels. The operator keyboard sends these back as plain
// text, so the labels double as dispatch keys.
const (
	btnBroadcast = "📨 Broadcast"
	btnPersonal  = "✍️ Message user"
	btnBan       = "🚫 Ban"
	btnUnban     = "✅ Unban"
	btnStats     = "📊 Stats"
)

const cbAskQuestion = "ask_question"

const (
	textAskPrompt = "💬 <b>Go ahead, ask!</b>\n\nWrite your question in one message and I will pass it on."

	textRelayAck = "✅ Your message has been passed to the team. We'll get back to you soon!"

	textSlowDown = "⏳ Slow down a little — you can send the next message in a few seconds."

	textFollowup = "👀 Did you get a chance to look around?\n" +
		"If you have any questions, just write them here and I'll pass them on!"

	textOperatorHint = "🤖 Use the panel buttons below, or /admin to reopen it."
)

func greeting(name string) string {
	return fmt.Sprintf(
		"👋 <b>Hi, %s!</b>\n\n"+
			"I'm Mary's assistant. Write me anything and I'll pass it along to the team.\n\n"+
			"You can also check out the site or ask a question right away:",
		html.EscapeString(name),
	)
}

// relayHeader is the line sent to the operator right before the copied user
// message, so replies can be routed back by handle or id.
func relayHeader(name, handle string, id int64) string {
	h := "—"
	if handle != "" {
		h = "@" + handle
	}
	return fmt.Sprintf(
		"📬 <b>New message</b>\n\n👤 %s\n🔗 %s\n🆔 <code>%d</code>",
		html.EscapeString(name), html.EscapeString(h), id,
	)
}
