// Package admin implements the operator's multi-step flows: broadcast,
// personal message, ban and unban. Each flow begins from the panel, consumes
// exactly one operator input (re-prompting on bad input), and returns the
// session to Idle.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/broadcast"
	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/bot/dm"
	"github.com/m3rciful/marybot/bot/session"
	"github.com/m3rciful/marybot/core/logger"
)

// Store is the directory subset the flows need.
type Store interface {
	ByID(ctx context.Context, id int64) (*directory.UserRecord, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	Count(ctx context.Context) (int, error)
}

// Broadcaster fans a payload out to the whole directory.
type Broadcaster interface {
	Run(ctx context.Context, msg tele.Editable) (broadcast.Report, error)
}

// Messenger delivers a "@handle message" input to its addressee.
type Messenger interface {
	Send(ctx context.Context, input string) (dm.Receipt, error)
}

// Notifier sends plain texts to arbitrary users (ban/unban notices).
type Notifier interface {
	SendText(recipientID int64, text string) error
}

// Replier is how a flow talks back to the operator. Prompt keeps the flow
// open (the transport shows a cancel keyboard), Done closes it (the panel
// keyboard returns), Notice is an intermediate status line.
type Replier interface {
	Notice(text string) error
	Prompt(text string) error
	Done(text string) error
}

// Flow drives the operator session through its modes.
type Flow struct {
	sess   *session.Session
	store  Store
	bcast  Broadcaster
	dm     Messenger
	notify Notifier
}

// New wires a flow over the session and its collaborators.
func New(sess *session.Session, store Store, bcast Broadcaster, dmr Messenger, notify Notifier) *Flow {
	return &Flow{sess: sess, store: store, bcast: bcast, dm: dmr, notify: notify}
}

var prompts = map[session.Mode]string{
	session.ModeAwaitingBroadcast:   TextBroadcastPrompt,
	session.ModeAwaitingPersonal:    TextPersonalPrompt,
	session.ModeAwaitingBanTarget:   TextBanPrompt,
	session.ModeAwaitingUnbanTarget: TextUnbanPrompt,
}

// Begin enters the given mode and prompts for its input. Beginning a flow
// while another is active abandons the previous one without side effects.
func (f *Flow) Begin(ctx context.Context, mode session.Mode, r Replier) error {
	prompt, ok := prompts[mode]
	if !ok {
		return fmt.Errorf("no flow for mode %q", mode)
	}
	f.sess.Set(mode)
	logger.Info(ctx, "admin", "flow.begin", slog.String("mode", string(mode)))
	return r.Prompt(prompt)
}

// Cancel abandons the active flow, if any.
func (f *Flow) Cancel(ctx context.Context, r Replier) error {
	if !f.sess.InProgress() {
		return r.Done(TextPanel)
	}
	logger.Info(ctx, "admin", "flow.cancel", slog.String("mode", string(f.sess.Mode())))
	f.sess.Reset()
	return r.Done(TextCancelled)
}

// Stats reports the directory size. Instantaneous, no mode change.
func (f *Flow) Stats(ctx context.Context, r Replier) error {
	n, err := f.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	return r.Done(fmt.Sprintf("📊 <b>Users in the directory:</b> %d", n))
}

// HandleInput consumes one operator input while a flow is active. The payload
// is the full inbound message (broadcast copies it verbatim); text is its
// textual content. A /cancel text aborts whatever mode is active before any
// mode-specific parsing happens.
func (f *Flow) HandleInput(ctx context.Context, text string, payload tele.Editable, r Replier) error {
	if isCancel(text) {
		return f.Cancel(ctx, r)
	}

	mode := f.sess.Mode()
	switch mode {
	case session.ModeAwaitingBroadcast:
		return f.runBroadcast(ctx, payload, r)
	case session.ModeAwaitingPersonal:
		return f.runPersonal(ctx, text, r)
	case session.ModeAwaitingBanTarget:
		return f.runBanTarget(ctx, text, true, r)
	case session.ModeAwaitingUnbanTarget:
		return f.runBanTarget(ctx, text, false, r)
	case session.ModeIdle:
		return nil
	default:
		f.sess.Reset()
		return fmt.Errorf("unknown session mode %q", mode)
	}
}

func isCancel(text string) bool {
	text = strings.TrimSpace(text)
	return text == "/cancel" || text == BtnCancel
}

func (f *Flow) runBroadcast(ctx context.Context, payload tele.Editable, r Replier) error {
	if payload == nil {
		return r.Prompt(TextBroadcastPrompt)
	}
	if err := r.Notice(TextBroadcastStart); err != nil {
		logger.Warn(ctx, "admin", "flow.notice_failed", slog.String("err", err.Error()))
	}

	rep, err := f.bcast.Run(ctx, payload)
	f.sess.Reset()
	if err != nil {
		// Interrupted run: report the partial tally anyway.
		logger.Warn(ctx, "admin", "broadcast.interrupted", slog.String("err", err.Error()))
	}
	return r.Done(fmt.Sprintf(
		"✅ <b>Broadcast finished.</b>\n\n📬 Delivered: %d\n🚫 Failed: %d",
		rep.Sent, rep.Failed,
	))
}

func (f *Flow) runPersonal(ctx context.Context, text string, r Replier) error {
	receipt, err := f.dm.Send(ctx, text)
	switch {
	case errors.Is(err, dm.ErrMissingHandle):
		return r.Prompt(TextPersonalMissingHandle)
	case errors.Is(err, dm.ErrMissingBody):
		return r.Prompt(TextPersonalMissingBody)
	case errors.Is(err, dm.ErrHandleNotFound):
		f.sess.Reset()
		return r.Done(fmt.Sprintf("❌ <b>User not found:</b> %s", handleFromErr(err)))
	case err != nil:
		f.sess.Reset()
		logger.Warn(ctx, "admin", "personal.deliver_failed", slog.String("err", err.Error()))
		return r.Done("⚠️ <b>Could not deliver the message.</b> The user may have blocked the bot.")
	}

	f.sess.Reset()
	logger.Info(ctx, "admin", "personal.sent",
		slog.Int64("user_id", receipt.UserID),
		slog.String("handle", receipt.Handle),
	)
	return r.Done(fmt.Sprintf("✅ <b>Message sent to</b> @%s", receipt.Handle))
}

// handleFromErr pulls the "@handle" tail the router wraps into its not-found
// error so the report shows what the operator typed.
func handleFromErr(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, "@"); i >= 0 {
		return msg[i:]
	}
	return msg
}

func (f *Flow) runBanTarget(ctx context.Context, text string, ban bool, r Replier) error {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return r.Prompt(TextBadID)
	}

	if ban && id == f.sess.OperatorID() {
		f.sess.Reset()
		return r.Done(TextBanSelf)
	}

	rec, err := f.store.ByID(ctx, id)
	if err != nil {
		f.sess.Reset()
		return fmt.Errorf("lookup %d: %w", id, err)
	}
	if rec == nil {
		return r.Prompt(fmt.Sprintf("❌ <b>No user with id</b> <code>%d</code>. Try again or /cancel.", id))
	}

	if err := f.store.SetBanned(ctx, id, ban); err != nil {
		f.sess.Reset()
		return fmt.Errorf("set banned=%v for %d: %w", ban, id, err)
	}
	f.sess.Reset()

	notice, verb := TextUserUnbanNotice, "unbanned"
	if ban {
		notice, verb = TextUserBanNotice, "banned"
	}
	// Best effort: the user may have blocked the bot.
	if err := f.notify.SendText(id, notice); err != nil {
		logger.Debug(ctx, "admin", "moderation.notice_failed",
			slog.Int64("user_id", id),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "admin", "moderation."+verb, slog.Int64("user_id", id))
	return r.Done(fmt.Sprintf("✅ <b>User</b> <code>%d</code> <b>%s.</b>", id, verb))
}
