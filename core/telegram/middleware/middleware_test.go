package middleware

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/datebot/core/config"

	tele "gopkg.in/telebot.v4"
)

func textUpdate(userID int64, text string) tele.Context {
	return tele.NewContext(nil, tele.Update{ID: int(userID), Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
		Text:   text,
	}})
}

func ok(tele.Context) error { return nil }

func TestAdminOnly(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 7, OnReject: func(tele.Context) error {
		rejected++
		return nil
	}})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(textUpdate(7, "/stats"))
	_ = h(textUpdate(8, "/stats"))
	if passed != 1 || rejected != 1 {
		t.Fatalf("passed=%d rejected=%d", passed, rejected)
	}

	closed := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error {
		t.Fatal("handler ran without an admin configured")
		return nil
	})
	_ = closed(textUpdate(7, "/stats"))
}

func TestRateLimit(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{coreconfig.UpdateCallback: {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(textUpdate(1, "a"))
	_ = h(textUpdate(1, "b"))
	_ = h(textUpdate(2, "c"))
	cb := tele.NewContext(nil, tele.Update{Callback: &tele.Callback{Sender: &tele.User{ID: 1}, Data: "src 1 1"}})
	_ = h(cb)

	if passed != 3 || limited != 1 {
		t.Fatalf("passed=%d limited=%d", passed, limited)
	}
}

func TestUpdateKind(t *testing.T) {
	cases := map[string]tele.Update{
		coreconfig.UpdateCallback: {Callback: &tele.Callback{}},
		coreconfig.UpdatePhoto:    {Message: &tele.Message{Photo: &tele.Photo{}}},
		coreconfig.UpdateLocation: {Message: &tele.Message{Location: &tele.Location{}}},
		coreconfig.UpdateMessage:  {Message: &tele.Message{Text: "hi"}},
		"other":                   {},
	}
	for want, upd := range cases {
		if got := UpdateKind(upd); got != want {
			t.Fatalf("UpdateKind = %q, want %q", got, want)
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(textUpdate(3, "x")); err == nil {
		t.Fatal("panic not reported as error")
	}
	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(textUpdate(3, "x")); !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}

type fixedWizard string

func (f fixedWizard) ActiveWizard(tele.Context) string { return string(f) }

func TestInWizard(t *testing.T) {
	ran := false
	h := InWizard(fixedWizard("search"), "search")(func(tele.Context) error { ran = true; return nil })
	if err := h(textUpdate(4, "x")); err != nil || !ran {
		t.Fatalf("matching wizard: ran=%v err=%v", ran, err)
	}
	ran = false
	h = InWizard(fixedWizard(""), "search")(func(tele.Context) error { ran = true; return nil })
	if err := h(textUpdate(4, "x")); err != nil || ran {
		t.Fatalf("idle user: ran=%v err=%v", ran, err)
	}
}

func TestSerialPerUser(t *testing.T) {
	var active, maxActive atomic.Int32
	h := SerialPerUser()(func(tele.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h(textUpdate(5, "x"))
		}()
	}
	wg.Wait()
	if maxActive.Load() != 1 {
		t.Fatalf("same user ran %d handlers at once", maxActive.Load())
	}
}

func TestMessageMetrics(t *testing.T) {
	h := MessageMetricsMiddleware(ok)
	c := textUpdate(6, "x")
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if msgs, kb := GetCounters(c); msgs != 0 || kb {
		t.Fatalf("counters = %d, %v", msgs, kb)
	}
	if !hasKeyboard([]any{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}) {
		t.Fatal("keyboard in send options not detected")
	}
}
