package keyboard

import (
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func sourceItems() []ChecklistItem {
	return []ChecklistItem{
		{Key: "1", Label: "News", Chosen: false},
		{Key: "2", Label: "Memes", Chosen: true},
		{Key: "3", Label: "Music", Chosen: false},
	}
}

func findData(grid [][]tele.InlineButton, prefix, key string) (tele.InlineButton, Token) {
	for _, row := range grid {
		for _, btn := range row {
			tok, err := DecodeToken(btn.Data)
			if err == nil && tok.Prefix == prefix && tok.Key == key {
				return btn, tok
			}
		}
	}
	return tele.InlineButton{}, Token{}
}

func TestBuildChecklistLayout(t *testing.T) {
	grid := BuildChecklist("src", sourceItems(), ChecklistOptions{ButtonsInRow: 2, AllLabel: "All"})
	if len(grid) != 3 {
		t.Fatalf("rows = %d, expected 3", len(grid))
	}
	if len(grid[0]) != 2 || len(grid[1]) != 1 || len(grid[2]) != 1 {
		t.Fatalf("unexpected packing: %d/%d/%d", len(grid[0]), len(grid[1]), len(grid[2]))
	}
	if grid[0][0].Data != "src 1 0" || grid[0][1].Data != "src 2 1" {
		t.Fatalf("unexpected tokens: %q %q", grid[0][0].Data, grid[0][1].Data)
	}
	if grid[0][0].Unique != "" {
		t.Fatalf("tokens must be stored raw, got unique %q", grid[0][0].Unique)
	}
	if grid[2][0].Data != "src 0 0" {
		t.Fatalf("all-control = %q", grid[2][0].Data)
	}
	if !strings.HasSuffix(grid[0][1].Text, checkedGlyph) || !strings.HasPrefix(grid[0][1].Text, "Memes") {
		t.Fatalf("label = %q", grid[0][1].Text)
	}

	left := BuildChecklist("src", sourceItems(), ChecklistOptions{CheckboxOnLeft: true})
	if len(left) != 3 || !strings.HasPrefix(left[0][0].Text, uncheckedGlyph) {
		t.Fatalf("left glyph layout: %+v", left)
	}
}

func TestBuildChecklistAllChosen(t *testing.T) {
	items := sourceItems()
	for i := range items {
		items[i].Chosen = true
	}
	grid := BuildChecklist("src", items, ChecklistOptions{AllLabel: "All"})
	if _, tok := findData(grid, "src", AllKey); !tok.Chosen {
		t.Fatal("all-control should be checked when every item is chosen")
	}
}

func TestDecodeToken(t *testing.T) {
	tok, err := DecodeToken("src 12 1")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tok.Prefix != "src" || tok.Key != "12" || !tok.Chosen || tok.NewValue() {
		t.Fatalf("unexpected token %+v", tok)
	}
	tok, err = DecodeToken("\fsrc 3 0")
	if err != nil || tok.Key != "3" || !tok.NewValue() {
		t.Fatalf("prefixed token = %+v, %v", tok, err)
	}
	for _, bad := range []string{"", "src", "src 1", "src 1 2", "src  1 0", "src 1 0 x"} {
		if _, err := DecodeToken(bad); !errors.Is(err, ErrBadToken) {
			t.Fatalf("DecodeToken(%q) err = %v", bad, err)
		}
	}
}

func TestToggleChecklistRoundTrip(t *testing.T) {
	grid := BuildChecklist("src", sourceItems(), ChecklistOptions{AllLabel: "All"})

	grid2, err := ToggleChecklist(grid, "src 0 0")
	if err != nil {
		t.Fatalf("select all: %v", err)
	}
	for key, chosen := range ChecklistState(grid2, "src") {
		if !chosen {
			t.Fatalf("key %s not chosen after select all", key)
		}
	}
	if _, tok := findData(grid2, "src", AllKey); !tok.Chosen {
		t.Fatal("all-control should be checked after select all")
	}
	if _, tok := findData(grid, "src", "1"); tok.Chosen {
		t.Fatal("input grid was mutated")
	}

	grid3, err := ToggleChecklist(grid2, "src 0 1")
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	for key, chosen := range ChecklistState(grid3, "src") {
		if chosen {
			t.Fatalf("key %s chosen after clear all", key)
		}
	}

	grid4, err := ToggleChecklist(grid3, "src 2 0")
	if err != nil {
		t.Fatalf("toggle single: %v", err)
	}
	state := ChecklistState(grid4, "src")
	if !state["2"] || state["1"] || state["3"] {
		t.Fatalf("single toggle leaked: %v", state)
	}
	btn, _ := findData(grid4, "src", "2")
	if btn.Text != "Memes "+checkedGlyph {
		t.Fatalf("label not re-rendered: %q", btn.Text)
	}
}

func TestToggleChecklistUnknownToken(t *testing.T) {
	grid := BuildChecklist("src", sourceItems(), ChecklistOptions{})
	if _, err := ToggleChecklist(grid, "src 9 0"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token, got %v", err)
	}
	if _, err := ToggleChecklist(grid, "src 1 1"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("stale state must not match, got %v", err)
	}
	if _, err := ToggleChecklist(grid, "src 0 0"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("all-control absent, got %v", err)
	}
}

func TestSyncAllControl(t *testing.T) {
	grid := BuildChecklist("src", sourceItems(), ChecklistOptions{AllLabel: "All"})
	grid, _ = ToggleChecklist(grid, "src 1 0")
	grid, _ = ToggleChecklist(grid, "src 3 0")
	if _, tok := findData(grid, "src", AllKey); tok.Chosen {
		t.Fatal("single toggles alone must not touch the all-control")
	}
	synced := SyncAllControl(grid, "src")
	if _, tok := findData(synced, "src", AllKey); !tok.Chosen {
		t.Fatal("all-control should follow the items after sync")
	}
	synced, _ = ToggleChecklist(synced, "src 2 1")
	synced = SyncAllControl(synced, "src")
	if _, tok := findData(synced, "src", AllKey); tok.Chosen {
		t.Fatal("all-control should clear once an item is cleared")
	}
}

func TestChecklistKeepsForeignButtons(t *testing.T) {
	grid := BuildChecklist("src", sourceItems(), ChecklistOptions{AllLabel: "All"})
	grid = append(grid, []tele.InlineButton{{Text: "Confirm", Data: "srcok"}})
	out, err := ToggleChecklist(grid, "src 0 0")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	last := out[len(out)-1][0]
	if last.Text != "Confirm" || last.Data != "srcok" {
		t.Fatalf("foreign button changed: %+v", last)
	}
}
