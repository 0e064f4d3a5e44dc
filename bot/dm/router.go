// Package dm parses and delivers targeted operator messages addressed by
// handle ("@handle message body").
package dm

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/core/logger"
	"log/slog"
)

var (
	// ErrMissingHandle means no "@handle" was found in the input.
	ErrMissingHandle = errors.New("dm: missing handle")
	// ErrMissingBody means nothing remained after the handle.
	ErrMissingBody = errors.New("dm: missing message body")
	// ErrHandleNotFound means the handle resolved to no known user.
	ErrHandleNotFound = errors.New("dm: handle not found")
)

var handleRe = regexp.MustCompile(`@(\w+)`)

// Parse extracts the first "@handle" occurrence and the trimmed remainder.
func Parse(input string) (handle, body string, err error) {
	loc := handleRe.FindStringSubmatchIndex(input)
	if loc == nil {
		return "", "", ErrMissingHandle
	}
	handle = input[loc[2]:loc[3]]
	body = strings.TrimSpace(input[loc[1]:])
	if body == "" {
		return handle, "", ErrMissingBody
	}
	return handle, body, nil
}

// Resolver is the directory subset the router needs.
type Resolver interface {
	ByHandle(ctx context.Context, handle string) (*directory.UserRecord, error)
}

// Sender delivers the formatted message.
type Sender interface {
	SendHTML(recipientID int64, text string) error
}

// Receipt describes a successful delivery for the operator confirmation.
type Receipt struct {
	UserID      int64
	Handle      string
	DisplayName string
}

// Router resolves handles against the directory and delivers direct messages.
type Router struct {
	dir Resolver
	gw  Sender
}

// NewRouter builds a personal message router.
func NewRouter(dir Resolver, gw Sender) *Router {
	return &Router{dir: dir, gw: gw}
}

// Send parses input, resolves the handle, and delivers the body prefixed with
// the admin-message header. Parse and resolution failures come back as the
// package sentinels; anything else is a delivery failure.
func (r *Router) Send(ctx context.Context, input string) (Receipt, error) {
	handle, body, err := Parse(input)
	if err != nil {
		return Receipt{}, err
	}

	rec, err := r.dir.ByHandle(ctx, handle)
	if err != nil {
		return Receipt{}, err
	}
	if rec == nil {
		return Receipt{Handle: handle}, fmt.Errorf("%w: @%s", ErrHandleNotFound, handle)
	}

	text := "📩 <b>Message from the team:</b>\n\n" + html.EscapeString(body)
	if err := r.gw.SendHTML(rec.ID, text); err != nil {
		return Receipt{UserID: rec.ID, Handle: handle}, err
	}

	logger.Info(ctx, "dm", "dm.sent",
		slog.Int64("user_id", rec.ID),
		slog.String("handle", handle),
	)
	return Receipt{UserID: rec.ID, Handle: handle, DisplayName: rec.DisplayName}, nil
}
