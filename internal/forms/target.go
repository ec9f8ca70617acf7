package forms

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AllSourcesKey is the reserved source key of the select/clear-all control.
const AllSourcesKey int64 = 0

var (
	// ErrReservedSource reports a real source carrying the reserved key.
	ErrReservedSource = errors.New("forms: source id 0 is reserved")
	// ErrSourcesFixed reports an attempt to repopulate sources.
	ErrSourcesFixed = errors.New("forms: sources already populated")
	// ErrUnknownSource reports a toggle for a source the form does not hold.
	ErrUnknownSource = errors.New("forms: unknown source")
)

// SourceChoice is one entry of the ordered source selection.
type SourceChoice struct {
	ID     int64 `json:"id"`
	Chosen bool  `json:"chosen"`
}

// SearchQuery is what the matcher receives when the search executes.
type SearchQuery struct {
	Sources  []int64
	Goal     Goal
	Gender   Gender
	AgeRange AgeRange
	Country  string
	City     string
	Filter   MatchFilter
}

// Target holds the search wizard state for one user.
type Target struct {
	userID int64

	Goal     Goal
	Gender   Gender
	AgeRange *AgeRange
	Country  string
	City     string
	Filter   MatchFilter

	order  []int64
	chosen map[int64]bool
}

// NewTarget starts an empty search form owned by userID.
func NewTarget(userID int64) *Target {
	return &Target{userID: userID, Filter: NewMatches, chosen: map[int64]bool{}}
}

// UserID returns the owner of the form.
func (t *Target) UserID() int64 { return t.userID }

// SetAgeRange stores the interval spanned by a and b.
func (t *Target) SetAgeRange(a, b int) {
	r := NewAgeRange(a, b)
	t.AgeRange = &r
}

// SetSources populates the selection with every source chosen. Keys are
// fixed afterwards.
func (t *Target) SetSources(ids []int64) error {
	if len(t.order) > 0 {
		return ErrSourcesFixed
	}
	order := make([]int64, 0, len(ids))
	chosen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id == AllSourcesKey {
			return ErrReservedSource
		}
		if _, dup := chosen[id]; dup {
			continue
		}
		order = append(order, id)
		chosen[id] = true
	}
	t.order, t.chosen = order, chosen
	return nil
}

// ToggleSource sets one source, or every source when id is AllSourcesKey.
func (t *Target) ToggleSource(id int64, chosen bool) error {
	if id == AllSourcesKey {
		for _, sid := range t.order {
			t.chosen[sid] = chosen
		}
		return nil
	}
	if _, ok := t.chosen[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSource, id)
	}
	t.chosen[id] = chosen
	return nil
}

// Sources returns the selection in discovery order.
func (t *Target) Sources() []SourceChoice {
	out := make([]SourceChoice, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, SourceChoice{ID: id, Chosen: t.chosen[id]})
	}
	return out
}

// SourceCount returns the number of real sources.
func (t *Target) SourceCount() int { return len(t.order) }

// IsChosen reports the selection state of one source.
func (t *Target) IsChosen(id int64) bool { return t.chosen[id] }

// ChosenSources returns the selected source ids in discovery order.
func (t *Target) ChosenSources() []int64 {
	out := make([]int64, 0, len(t.order))
	for _, id := range t.order {
		if t.chosen[id] {
			out = append(out, id)
		}
	}
	return out
}

// AllSourcesChosen is recomputed on every call.
func (t *Target) AllSourcesChosen() bool {
	if len(t.order) == 0 {
		return false
	}
	for _, id := range t.order {
		if !t.chosen[id] {
			return false
		}
	}
	return true
}

// SetGoal stores the searched goal.
func (t *Target) SetGoal(text string, kw Keywords) error {
	goal, err := ClassifyGoal(text, kw)
	if err != nil {
		return err
	}
	t.Goal = goal
	return nil
}

// SetGender stores the searched gender, "any" included.
func (t *Target) SetGender(text string, kw Keywords) error {
	gender, err := ClassifyTargetGender(text, kw)
	if err != nil {
		return err
	}
	t.Gender = gender
	return nil
}

// SetAge stores a compact age range or the any-age span.
func (t *Target) SetAge(text string, kw Keywords) error {
	r, err := ClassifyAgeRange(text, kw)
	if err != nil {
		return err
	}
	t.SetAgeRange(r.Min, r.Max)
	return nil
}

// ToggleFilter flips between all and new matches and returns the new value.
func (t *Target) ToggleFilter() MatchFilter {
	if t.Filter == AllMatches {
		t.Filter = NewMatches
	} else {
		t.Filter = AllMatches
	}
	return t.Filter
}

// Query builds the matcher input from the chosen sources and filters.
func (t *Target) Query() SearchQuery {
	ages := FullAgeRange()
	if t.AgeRange != nil {
		ages = *t.AgeRange
	}
	filter := t.Filter
	if filter == "" {
		filter = NewMatches
	}
	return SearchQuery{
		Sources:  t.ChosenSources(),
		Goal:     t.Goal,
		Gender:   t.Gender,
		AgeRange: ages,
		Country:  t.Country,
		City:     t.City,
		Filter:   filter,
	}
}

type targetJSON struct {
	UserID   int64          `json:"user_id"`
	Goal     Goal           `json:"goal,omitempty"`
	Gender   Gender         `json:"gender,omitempty"`
	AgeRange *AgeRange      `json:"age_range,omitempty"`
	Country  string         `json:"country,omitempty"`
	City     string         `json:"city,omitempty"`
	Filter   MatchFilter    `json:"filter,omitempty"`
	Sources  []SourceChoice `json:"sources,omitempty"`
}

// MarshalJSON keeps source order and the owner id in the session payload.
func (t *Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetJSON{
		UserID:   t.userID,
		Goal:     t.Goal,
		Gender:   t.Gender,
		AgeRange: t.AgeRange,
		Country:  t.Country,
		City:     t.City,
		Filter:   t.Filter,
		Sources:  t.Sources(),
	})
}

// UnmarshalJSON restores a form saved by MarshalJSON.
func (t *Target) UnmarshalJSON(data []byte) error {
	var w targetJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	restored := Target{
		userID:   w.UserID,
		Goal:     w.Goal,
		Gender:   w.Gender,
		AgeRange: w.AgeRange,
		Country:  w.Country,
		City:     w.City,
		Filter:   w.Filter,
		chosen:   make(map[int64]bool, len(w.Sources)),
	}
	for _, s := range w.Sources {
		if s.ID == AllSourcesKey {
			return ErrReservedSource
		}
		if _, dup := restored.chosen[s.ID]; dup {
			continue
		}
		restored.order = append(restored.order, s.ID)
		restored.chosen[s.ID] = s.Chosen
	}
	*t = restored
	return nil
}
