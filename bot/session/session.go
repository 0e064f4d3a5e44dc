// Package session holds the operator's conversation state. The bot serves a
// single operator, so exactly one session exists for the process lifetime:
// created at startup, resting at Idle, never terminated.
package session

import "sync"

// Mode identifies which multi-step admin flow is in progress.
type Mode string

const (
	// ModeIdle means no admin flow is active.
	ModeIdle Mode = "idle"
	// ModeAwaitingBroadcast awaits the payload to fan out to all users.
	ModeAwaitingBroadcast Mode = "awaiting_broadcast"
	// ModeAwaitingPersonal awaits "@handle message" input.
	ModeAwaitingPersonal Mode = "awaiting_personal"
	// ModeAwaitingBanTarget awaits the numeric id to ban.
	ModeAwaitingBanTarget Mode = "awaiting_ban_target"
	// ModeAwaitingUnbanTarget awaits the numeric id to unban.
	ModeAwaitingUnbanTarget Mode = "awaiting_unban_target"
)

// Session tracks the operator's active mode and serializes their inputs.
type Session struct {
	operatorID int64

	busy sync.Mutex

	mu   sync.Mutex
	mode Mode
}

// New creates the session for the configured operator, starting at Idle.
func New(operatorID int64) *Session {
	return &Session{operatorID: operatorID, mode: ModeIdle}
}

// OperatorID returns the fixed operator identity this session belongs to.
func (s *Session) OperatorID() int64 {
	return s.operatorID
}

// IsOperator reports whether the sender id is the operator.
func (s *Session) IsOperator(id int64) bool {
	return id == s.operatorID
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set switches the active mode.
func (s *Session) Set(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Reset returns the session to Idle.
func (s *Session) Reset() {
	s.Set(ModeIdle)
}

// InProgress reports whether a multi-step flow is active.
func (s *Session) InProgress() bool {
	return s.Mode() != ModeIdle
}

// Do runs fn while holding the session's busy lock. Operator inputs are
// processed one at a time: input arriving while a long operation (such as a
// broadcast) runs queues behind it rather than interleaving. The machine is
// busy, not reentrant.
func (s *Session) Do(fn func() error) error {
	s.busy.Lock()
	defer s.busy.Unlock()
	return fn()
}
