package admin

// Operator-facing texts. HTML formatting, matching the user-facing texts in
// the handlers package.
const (
	TextPanel = "👨‍💻 <b>Admin panel</b>\n\nPick an action:"

	TextBroadcastPrompt = "📨 <b>Enter the broadcast content.</b>\n\nText, photo, video, or a file:"
	TextBroadcastStart  = "⏳ Broadcast started..."

	TextPersonalPrompt = "✍️ <b>Enter the input in the format:</b>\n\n" +
		"<code>@handle message</code>\n\n" +
		"Example:\n<code>@ivan Hi, this is Mary!</code>\n\n" +
		"Send /cancel to abort."
	TextPersonalMissingHandle = "⚠️ <b>No handle found!</b>\n\n" +
		"The input must contain @handle\nExample: <code>@ivan hello</code>"
	TextPersonalMissingBody = "⚠️ <b>No message text found!</b>\n\n" +
		"Example: <code>@ivan hello</code>"

	TextBanPrompt   = "🚫 <b>Enter the numeric id of the user to ban:</b>"
	TextUnbanPrompt = "✅ <b>Enter the numeric id of the user to unban:</b>"
	TextBadID       = "⚠️ <b>That is not a numeric id.</b> Try again or /cancel."
	TextBanSelf     = "🙅 You cannot ban yourself."

	// BtnCancel is the reply-keyboard label shown while a flow waits for
	// input; the bare /cancel command works too.
	BtnCancel = "❌ Cancel"

	TextCancelled = "❌ Cancelled."

	TextUserBanNotice   = "🚫 You have been blocked by the administration."
	TextUserUnbanNotice = "✅ You have been unblocked. Welcome back!"
)
