package handlers

import (
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user tele.User
		want string
	}{
		{"first and last", tele.User{FirstName: "Ivan", LastName: "Petrov"}, "Ivan Petrov"},
		{"first only", tele.User{FirstName: "Ivan"}, "Ivan"},
		{"username fallback", tele.User{Username: "ivan"}, "ivan"},
		{"empty user", tele.User{}, "there"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := displayName(&tc.user); got != tc.want {
				t.Fatalf("displayName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGreetingEscapesName(t *testing.T) {
	got := greeting("<b>Ivan</b>")
	if strings.Contains(got, "<b>Ivan</b>") {
		t.Fatalf("name not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;b&gt;Ivan&lt;/b&gt;") {
		t.Fatalf("escaped name missing: %q", got)
	}
}

func TestRelayHeader(t *testing.T) {
	got := relayHeader("Ivan", "ivan", 42)
	for _, want := range []string{"Ivan", "@ivan", "<code>42</code>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("header %q missing %q", got, want)
		}
	}

	// No handle renders a placeholder, never a bare "@".
	got = relayHeader("Ivan", "", 42)
	if strings.Contains(got, "@") {
		t.Fatalf("header with no handle contains @: %q", got)
	}
	if !strings.Contains(got, "—") {
		t.Fatalf("placeholder missing: %q", got)
	}
}

func TestCallbackUnique(t *testing.T) {
	cases := []struct {
		data string
		want string
	}{
		{"\fask_question", "ask_question"},
		{"\fask_question|payload", "ask_question"},
		{"ask_question", "ask_question"},
	}
	for _, tc := range cases {
		if got := callbackUnique(tc.data); got != tc.want {
			t.Fatalf("callbackUnique(%q) = %q, want %q", tc.data, got, tc.want)
		}
	}
}

func TestUserKeyboardOmitsSiteButtonWhenUnset(t *testing.T) {
	withSite := userKeyboard("https://example.com")
	if len(withSite.InlineKeyboard) != 2 {
		t.Fatalf("rows with site = %d, want 2", len(withSite.InlineKeyboard))
	}

	withoutSite := userKeyboard("")
	if len(withoutSite.InlineKeyboard) != 1 {
		t.Fatalf("rows without site = %d, want 1", len(withoutSite.InlineKeyboard))
	}
}
