package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/broadcast"
	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/bot/dm"
	"github.com/m3rciful/marybot/bot/session"
)

type fakeStore struct {
	records map[int64]*directory.UserRecord
	banned  map[int64]bool
	count   int
}

func (f *fakeStore) ByID(_ context.Context, id int64) (*directory.UserRecord, error) {
	return f.records[id], nil
}

func (f *fakeStore) SetBanned(_ context.Context, id int64, banned bool) error {
	if f.banned == nil {
		f.banned = make(map[int64]bool)
	}
	f.banned[id] = banned
	return nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	return f.count, nil
}

type fakeBroadcaster struct {
	report broadcast.Report
	err    error
	runs   int
}

func (f *fakeBroadcaster) Run(_ context.Context, _ tele.Editable) (broadcast.Report, error) {
	f.runs++
	return f.report, f.err
}

type fakeMessenger struct {
	receipt dm.Receipt
	err     error
	inputs  []string
}

func (f *fakeMessenger) Send(_ context.Context, input string) (dm.Receipt, error) {
	f.inputs = append(f.inputs, input)
	return f.receipt, f.err
}

type fakeNotifier struct {
	sent map[int64]string
	err  error
}

func (f *fakeNotifier) SendText(id int64, text string) error {
	if f.sent == nil {
		f.sent = make(map[int64]string)
	}
	f.sent[id] = text
	return f.err
}

// recordingReplier captures every operator-facing line with its kind.
type recordingReplier struct {
	lines []string
}

func (r *recordingReplier) Notice(text string) error {
	r.lines = append(r.lines, "notice:"+text)
	return nil
}

func (r *recordingReplier) Prompt(text string) error {
	r.lines = append(r.lines, "prompt:"+text)
	return nil
}

func (r *recordingReplier) Done(text string) error {
	r.lines = append(r.lines, "done:"+text)
	return nil
}

func (r *recordingReplier) last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

type stubPayload struct{}

func (stubPayload) MessageSig() (string, int64) { return "42", 1 }

func newFlow(store *fakeStore, bcast *fakeBroadcaster, msg *fakeMessenger, notify *fakeNotifier) (*Flow, *session.Session) {
	sess := session.New(10)
	return New(sess, store, bcast, msg, notify), sess
}

func TestBeginPromptsAndEntersMode(t *testing.T) {
	f, sess := newFlow(&fakeStore{}, &fakeBroadcaster{}, &fakeMessenger{}, &fakeNotifier{})
	r := &recordingReplier{}

	if err := f.Begin(context.Background(), session.ModeAwaitingBanTarget, r); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if sess.Mode() != session.ModeAwaitingBanTarget {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if r.last() != "prompt:"+TextBanPrompt {
		t.Fatalf("reply = %q", r.last())
	}
}

func TestCancelFromEveryModeReturnsIdle(t *testing.T) {
	modes := []session.Mode{
		session.ModeAwaitingBroadcast,
		session.ModeAwaitingPersonal,
		session.ModeAwaitingBanTarget,
		session.ModeAwaitingUnbanTarget,
	}
	tokens := []string{"/cancel", BtnCancel}
	for i, mode := range modes {
		store := &fakeStore{}
		bcast := &fakeBroadcaster{}
		f, sess := newFlow(store, bcast, &fakeMessenger{}, &fakeNotifier{})
		sess.Set(mode)
		r := &recordingReplier{}

		if err := f.HandleInput(context.Background(), tokens[i%len(tokens)], stubPayload{}, r); err != nil {
			t.Fatalf("%s: cancel: %v", mode, err)
		}
		if sess.Mode() != session.ModeIdle {
			t.Fatalf("%s: mode after cancel = %s", mode, sess.Mode())
		}
		if bcast.runs != 0 || len(store.banned) != 0 {
			t.Fatalf("%s: cancel caused side effects", mode)
		}
		if r.last() != "done:"+TextCancelled {
			t.Fatalf("%s: reply = %q", mode, r.last())
		}
	}
}

func TestBroadcastReportsTallyAndResets(t *testing.T) {
	bcast := &fakeBroadcaster{report: broadcast.Report{Sent: 12, Failed: 3}}
	f, sess := newFlow(&fakeStore{}, bcast, &fakeMessenger{}, &fakeNotifier{})
	sess.Set(session.ModeAwaitingBroadcast)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "hello all", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if bcast.runs != 1 {
		t.Fatalf("runs = %d", bcast.runs)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
	last := r.last()
	if !strings.Contains(last, "Delivered: 12") || !strings.Contains(last, "Failed: 3") {
		t.Fatalf("report = %q", last)
	}
}

func TestBroadcastInterruptedStillReportsPartialTally(t *testing.T) {
	bcast := &fakeBroadcaster{
		report: broadcast.Report{Sent: 4, Failed: 1},
		err:    context.Canceled,
	}
	f, sess := newFlow(&fakeStore{}, bcast, &fakeMessenger{}, &fakeNotifier{})
	sess.Set(session.ModeAwaitingBroadcast)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "hello", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if !strings.Contains(r.last(), "Delivered: 4") {
		t.Fatalf("report = %q", r.last())
	}
}

func TestPersonalRepromptsOnBadInput(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"missing handle", dm.ErrMissingHandle, TextPersonalMissingHandle},
		{"missing body", dm.ErrMissingBody, TextPersonalMissingBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &fakeMessenger{err: tc.err}
			f, sess := newFlow(&fakeStore{}, &fakeBroadcaster{}, msg, &fakeNotifier{})
			sess.Set(session.ModeAwaitingPersonal)
			r := &recordingReplier{}

			if err := f.HandleInput(context.Background(), "bad", stubPayload{}, r); err != nil {
				t.Fatalf("HandleInput: %v", err)
			}
			if sess.Mode() != session.ModeAwaitingPersonal {
				t.Fatalf("re-prompt must keep the mode, got %s", sess.Mode())
			}
			if r.last() != "prompt:"+tc.want {
				t.Fatalf("reply = %q", r.last())
			}
		})
	}
}

func TestPersonalUnknownHandleClosesFlow(t *testing.T) {
	msg := &fakeMessenger{err: fmt.Errorf("%w: @ghost", dm.ErrHandleNotFound)}
	f, sess := newFlow(&fakeStore{}, &fakeBroadcaster{}, msg, &fakeNotifier{})
	sess.Set(session.ModeAwaitingPersonal)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "@ghost hi", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if !strings.Contains(r.last(), "@ghost") {
		t.Fatalf("report must echo the handle: %q", r.last())
	}
}

func TestPersonalSuccessConfirms(t *testing.T) {
	msg := &fakeMessenger{receipt: dm.Receipt{UserID: 7, Handle: "ivan"}}
	f, sess := newFlow(&fakeStore{}, &fakeBroadcaster{}, msg, &fakeNotifier{})
	sess.Set(session.ModeAwaitingPersonal)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "@ivan hello", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if !strings.Contains(r.last(), "@ivan") {
		t.Fatalf("confirmation = %q", r.last())
	}
	if len(msg.inputs) != 1 || msg.inputs[0] != "@ivan hello" {
		t.Fatalf("inputs = %v", msg.inputs)
	}
}

func TestBanRepromptsOnNonNumericInput(t *testing.T) {
	f, sess := newFlow(&fakeStore{}, &fakeBroadcaster{}, &fakeMessenger{}, &fakeNotifier{})
	sess.Set(session.ModeAwaitingBanTarget)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "not-a-number", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeAwaitingBanTarget {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if r.last() != "prompt:"+TextBadID {
		t.Fatalf("reply = %q", r.last())
	}
}

func TestBanSelfRefusedWithoutMutation(t *testing.T) {
	store := &fakeStore{records: map[int64]*directory.UserRecord{10: {ID: 10}}}
	f, sess := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, &fakeNotifier{})
	sess.Set(session.ModeAwaitingBanTarget)
	r := &recordingReplier{}

	// 10 is the operator id used by newFlow.
	if err := f.HandleInput(context.Background(), "10", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("self-ban must close the flow, got %s", sess.Mode())
	}
	if len(store.banned) != 0 {
		t.Fatalf("self-ban mutated the directory: %v", store.banned)
	}
	if r.last() != "done:"+TextBanSelf {
		t.Fatalf("reply = %q", r.last())
	}
}

func TestBanUnknownIDStaysInMode(t *testing.T) {
	store := &fakeStore{}
	f, sess := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, &fakeNotifier{})
	sess.Set(session.ModeAwaitingBanTarget)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "404", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeAwaitingBanTarget {
		t.Fatalf("unknown id must keep the mode, got %s", sess.Mode())
	}
	if len(store.banned) != 0 {
		t.Fatalf("unknown id mutated the directory: %v", store.banned)
	}
}

func TestBanSuccessNotifiesUser(t *testing.T) {
	store := &fakeStore{records: map[int64]*directory.UserRecord{7: {ID: 7}}}
	notify := &fakeNotifier{}
	f, sess := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, notify)
	sess.Set(session.ModeAwaitingBanTarget)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "7", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
	if banned, ok := store.banned[7]; !ok || !banned {
		t.Fatalf("banned flags = %v", store.banned)
	}
	if notify.sent[7] != TextUserBanNotice {
		t.Fatalf("notice = %q", notify.sent[7])
	}
}

func TestBanNotifyFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{records: map[int64]*directory.UserRecord{7: {ID: 7}}}
	notify := &fakeNotifier{err: errors.New("blocked by user")}
	f, sess := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, notify)
	sess.Set(session.ModeAwaitingBanTarget)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), "7", stubPayload{}, r); err != nil {
		t.Fatalf("notify failure must not surface: %v", err)
	}
	if banned := store.banned[7]; !banned {
		t.Fatal("ban must stick even when the notice fails")
	}
	if !strings.HasPrefix(r.last(), "done:") {
		t.Fatalf("reply = %q", r.last())
	}
}

func TestUnbanSuccess(t *testing.T) {
	store := &fakeStore{records: map[int64]*directory.UserRecord{7: {ID: 7, Banned: true}}}
	notify := &fakeNotifier{}
	f, sess := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, notify)
	sess.Set(session.ModeAwaitingUnbanTarget)
	r := &recordingReplier{}

	if err := f.HandleInput(context.Background(), " 7 ", stubPayload{}, r); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if banned, ok := store.banned[7]; !ok || banned {
		t.Fatalf("banned flags = %v", store.banned)
	}
	if notify.sent[7] != TextUserUnbanNotice {
		t.Fatalf("notice = %q", notify.sent[7])
	}
	if sess.Mode() != session.ModeIdle {
		t.Fatalf("mode = %s", sess.Mode())
	}
}

func TestStatsReportsDirectorySize(t *testing.T) {
	store := &fakeStore{count: 37}
	f, _ := newFlow(store, &fakeBroadcaster{}, &fakeMessenger{}, &fakeNotifier{})
	r := &recordingReplier{}

	if err := f.Stats(context.Background(), r); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !strings.Contains(r.last(), "37") {
		t.Fatalf("stats = %q", r.last())
	}
}
