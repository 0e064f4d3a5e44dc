package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandRejectsInvalid(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterCommand("", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/start", commands.Command{Handler: nil, Description: "no handler"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: ""})

	if n := len(reg.Commands()); n != 0 {
		t.Fatalf("registered %d invalid commands", n)
	}
}

func TestRegisterCommandKeepsFirstRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "first"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "second"})

	if got := reg.Commands()["/start"].Description; got != "first" {
		t.Fatalf("description = %q, want first registration kept", got)
	}
}

func TestListCommandsHidesAdminEntries(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/admin", commands.Command{Handler: noop, Description: "panel", AdminOnly: true})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "debug", Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}
}

func TestCallbackRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCallback("ask_question", noop)

	if _, ok := reg.GetCallback("ask_question"); !ok {
		t.Fatal("registered callback not found")
	}
	if _, ok := reg.GetCallback("other"); ok {
		t.Fatal("unregistered callback found")
	}
}
