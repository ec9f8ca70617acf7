package telegram

import (
	"testing"

	"github.com/m3rciful/datebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Register"}); err != nil {
		t.Fatalf("register start: %v", err)
	}
	if err := reg.RegisterCommand("/search", commands.Command{Handler: noop, Description: "Search", Aliases: []string{"find"}}); err != nil {
		t.Fatalf("register search: %v", err)
	}
	if err := reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true}); err != nil {
		t.Fatalf("register stats: %v", err)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}); err == nil {
		t.Fatal("duplicate command accepted")
	}
	if err := reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "Help"}); err == nil {
		t.Fatal("command without slash accepted")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "search" || visible[1].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}

	for text, want := range map[string]string{"/start": "/start", "find": "/search", "/search now": "/search"} {
		key, _, ok := reg.LookupCommand(text)
		if !ok || key != want {
			t.Fatalf("LookupCommand(%q) = %q, %v", text, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("hello"); ok {
		t.Fatal("plain text matched a command")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("src", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("src", noop); err == nil {
		t.Fatal("duplicate callback accepted")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key accepted")
	}
	_ = reg.RegisterCallback("flt", noop)
	if got := reg.ListCallbacks(); len(got) != 2 || got[0] != "flt" {
		t.Fatalf("callbacks = %v", got)
	}
	if _, ok := reg.GetCallback("vote"); ok {
		t.Fatal("unknown callback found")
	}
}

func TestCommandWrappedOrder(t *testing.T) {
	var order []string
	mw := func(name string) tele.MiddlewareFunc {
		return func(next tele.HandlerFunc) tele.HandlerFunc {
			return func(c tele.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	cmd := commands.Command{
		Handler: func(tele.Context) error { order = append(order, "handler"); return nil },
		Guards:  []tele.MiddlewareFunc{mw("outer"), mw("inner")},
	}
	_ = cmd.Wrapped()(nil)
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Fatalf("order = %v", order)
	}
}

func TestBuildPoller(t *testing.T) {
	if _, ok := BuildPoller(PollerOptions{RunMode: "WEBHOOK", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://x"}}).(*tele.Webhook); !ok {
		t.Fatal("webhook mode did not build a webhook")
	}
	lp, ok := BuildPoller(PollerOptions{}).(*tele.LongPoller)
	if !ok || lp.Timeout.Seconds() != 10 {
		t.Fatalf("default poller = %+v", lp)
	}
}
