package keyboard

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// AllKey is the reserved checklist key of the select/clear-all control.
const AllKey = "0"

const (
	checkedGlyph   = "✅"
	uncheckedGlyph = "⬜"
)

var (
	// ErrBadToken reports callback data that is not a checklist token.
	ErrBadToken = errors.New("keyboard: malformed checklist token")
	// ErrUnknownToken reports a token that matches no button of the grid.
	ErrUnknownToken = errors.New("keyboard: token not in checklist")
)

// ChecklistItem is one toggleable entry.
type ChecklistItem struct {
	Key    string
	Label  string
	Chosen bool
}

// ChecklistOptions controls checklist layout.
type ChecklistOptions struct {
	ButtonsInRow   int
	CheckboxOnLeft bool
	// AllLabel enables the select/clear-all row when non-empty.
	AllLabel string
}

// Token is a decoded checklist callback: the state rendered before the tap.
type Token struct {
	Prefix string
	Key    string
	Chosen bool
}

// NewValue is the state the tap asks for.
func (t Token) NewValue() bool { return !t.Chosen }

// IsAll reports whether the token belongs to the select/clear-all control.
func (t Token) IsAll() bool { return t.Key == AllKey }

func (t Token) String() string {
	flag := "0"
	if t.Chosen {
		flag = "1"
	}
	return t.Prefix + " " + t.Key + " " + flag
}

// BuildChecklist renders items as a grid of "{prefix} {key} {0|1}" buttons.
func BuildChecklist(prefix string, items []ChecklistItem, opts ChecklistOptions) [][]tele.InlineButton {
	buttons := make([]tele.InlineButton, 0, len(items))
	allChosen := len(items) > 0
	for _, it := range items {
		buttons = append(buttons, checklistButton(Token{Prefix: prefix, Key: it.Key, Chosen: it.Chosen}, it.Label, opts.CheckboxOnLeft))
		allChosen = allChosen && it.Chosen
	}
	rows := chunkInline(buttons, opts.ButtonsInRow)
	if opts.AllLabel != "" {
		all := checklistButton(Token{Prefix: prefix, Key: AllKey, Chosen: allChosen}, opts.AllLabel, opts.CheckboxOnLeft)
		rows = append(rows, []tele.InlineButton{all})
	}
	return rows
}

// DecodeToken parses "{prefix} {key} {0|1}".
func DecodeToken(data string) (Token, error) {
	if i := strings.IndexByte(data, '\f'); i >= 0 {
		data = data[i+1:]
	}
	parts := strings.Split(data, " ")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Token{}, fmt.Errorf("%w: %q", ErrBadToken, data)
	}
	var chosen bool
	switch parts[2] {
	case "1":
		chosen = true
	case "0":
	default:
		return Token{}, fmt.Errorf("%w: %q", ErrBadToken, data)
	}
	return Token{Prefix: parts[0], Key: parts[1], Chosen: chosen}, nil
}

// ToggleChecklist applies a tap to a copy of grid. Tapping the all-control
// sets every item to the opposite of its rendered state. Any other token
// flips the single matching button.
func ToggleChecklist(grid [][]tele.InlineButton, data string) ([][]tele.InlineButton, error) {
	tok, err := DecodeToken(data)
	if err != nil {
		return nil, err
	}
	out := copyGrid(grid)

	if tok.IsAll() {
		all := findButton(out, tok.String())
		if all == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, tok)
		}
		value := tok.NewValue()
		forEachItem(out, tok.Prefix, func(btn *tele.InlineButton, t Token) {
			relabel(btn, Token{Prefix: t.Prefix, Key: t.Key, Chosen: value})
		})
		relabel(all, Token{Prefix: tok.Prefix, Key: AllKey, Chosen: value})
		return out, nil
	}

	btn := findButton(out, tok.String())
	if btn == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, tok)
	}
	relabel(btn, Token{Prefix: tok.Prefix, Key: tok.Key, Chosen: tok.NewValue()})
	return out, nil
}

// SyncAllControl returns a copy of grid whose all-control is checked iff
// every item of prefix is checked.
func SyncAllControl(grid [][]tele.InlineButton, prefix string) [][]tele.InlineButton {
	out := copyGrid(grid)
	var all *tele.InlineButton
	allChosen, seen := true, false
	for i := range out {
		for j := range out[i] {
			t, err := DecodeToken(out[i][j].Data)
			if err != nil || t.Prefix != prefix {
				continue
			}
			if t.IsAll() {
				all = &out[i][j]
				continue
			}
			seen = true
			allChosen = allChosen && t.Chosen
		}
	}
	if all != nil {
		relabel(all, Token{Prefix: prefix, Key: AllKey, Chosen: seen && allChosen})
	}
	return out
}

// ChecklistState decodes the rendered selection of prefix, all-control excluded.
func ChecklistState(grid [][]tele.InlineButton, prefix string) map[string]bool {
	state := make(map[string]bool)
	forEachItem(grid, prefix, func(_ *tele.InlineButton, t Token) {
		state[t.Key] = t.Chosen
	})
	return state
}

func checklistButton(tok Token, label string, onLeft bool) tele.InlineButton {
	glyph := uncheckedGlyph
	if tok.Chosen {
		glyph = checkedGlyph
	}
	text := label + " " + glyph
	if onLeft {
		text = glyph + " " + label
	}
	return tele.InlineButton{Text: text, Data: tok.String()}
}

func relabel(btn *tele.InlineButton, tok Token) {
	label, onLeft := stripGlyph(btn.Text)
	*btn = checklistButton(tok, label, onLeft)
}

func stripGlyph(text string) (string, bool) {
	for _, g := range []string{checkedGlyph, uncheckedGlyph} {
		if rest, ok := strings.CutPrefix(text, g+" "); ok {
			return rest, true
		}
		if rest, ok := strings.CutSuffix(text, " "+g); ok {
			return rest, false
		}
	}
	return text, false
}

func findButton(grid [][]tele.InlineButton, token string) *tele.InlineButton {
	for i := range grid {
		for j := range grid[i] {
			if strings.Contains(grid[i][j].Data, token) {
				return &grid[i][j]
			}
		}
	}
	return nil
}

func forEachItem(grid [][]tele.InlineButton, prefix string, fn func(*tele.InlineButton, Token)) {
	for i := range grid {
		for j := range grid[i] {
			t, err := DecodeToken(grid[i][j].Data)
			if err != nil || t.Prefix != prefix || t.IsAll() {
				continue
			}
			fn(&grid[i][j], t)
		}
	}
}

func copyGrid(grid [][]tele.InlineButton) [][]tele.InlineButton {
	out := make([][]tele.InlineButton, len(grid))
	for i, row := range grid {
		out[i] = append([]tele.InlineButton(nil), row...)
	}
	return out
}

func chunkInline(buttons []tele.InlineButton, n int) [][]tele.InlineButton {
	if n <= 0 {
		n = 1
	}
	rows := make([][]tele.InlineButton, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return rows
}
