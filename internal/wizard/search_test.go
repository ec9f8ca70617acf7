package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/datebot/internal/forms"
)

type fakeMatcher struct {
	votes       bool
	sources     []int64
	covotes     bool
	results     []int64
	queries     []forms.SearchQuery
	shown       []int64
	covoteCalls int
}

func (f *fakeMatcher) HasVotes(context.Context, int64) (bool, error) { return f.votes, nil }

func (f *fakeMatcher) VotedSources(context.Context, int64) ([]int64, error) { return f.sources, nil }

func (f *fakeMatcher) HasCovotes(context.Context, int64, []int64) (bool, error) {
	f.covoteCalls++
	return f.covotes, nil
}

func (f *fakeMatcher) Search(_ context.Context, _ int64, q forms.SearchQuery) ([]int64, error) {
	f.queries = append(f.queries, q)
	return f.results, nil
}

func (f *fakeMatcher) MarkShown(_ context.Context, _, matchID int64) error {
	f.shown = append(f.shown, matchID)
	return nil
}

func TestSearchNoVotes(t *testing.T) {
	m := &fakeMatcher{}
	s := NewSearch(m, testKeywords())
	flow, out, err := s.HandleStartSearch(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if flow != nil || !out.Terminal || !errors.Is(out.Warning, forms.ErrNoVotes) {
		t.Fatalf("outcome = %+v, flow %v", out, flow)
	}
	if m.covoteCalls != 0 {
		t.Fatalf("covote search called %d times", m.covoteCalls)
	}
}

func TestSearchSourceSelection(t *testing.T) {
	ctx := context.Background()
	m := &fakeMatcher{votes: true, sources: []int64{1, 2, 3}, covotes: true}
	s := NewSearch(m, testKeywords())
	flow, out, err := s.HandleStartSearch(ctx, 7, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.Step != SourceSelection || !flow.Form.AllSourcesChosen() {
		t.Fatalf("start outcome = %+v", out)
	}

	if err := s.HandleSourceCallback(flow, forms.AllSourcesKey, false); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	out, err = s.ConfirmSources(ctx, flow)
	if err != nil || !errors.Is(out.Warning, forms.ErrNoSources) || out.Terminal || flow.Step != SourceSelection {
		t.Fatalf("empty confirm = %+v, %v", out, err)
	}
	if m.covoteCalls != 0 {
		t.Fatal("empty selection must not reach the covote search")
	}

	if err := s.HandleSourceCallback(flow, 2, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	out, err = s.ConfirmSources(ctx, flow)
	if err != nil || out.Step != AskGoal {
		t.Fatalf("confirm = %+v, %v", out, err)
	}
	if err := s.HandleSourceCallback(flow, 1, true); err == nil {
		t.Fatal("toggles after confirm must be rejected")
	}
}

func TestSearchNoCovotesIsTerminal(t *testing.T) {
	m := &fakeMatcher{votes: true, sources: []int64{9}}
	s := NewSearch(m, testKeywords())
	flow, out, err := s.HandleStartSearch(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !out.Terminal || !errors.Is(out.Warning, forms.ErrNoCovotes) || flow.Step != End {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestSearchResultsLoop(t *testing.T) {
	ctx := context.Background()
	kw := testKeywords()
	m := &fakeMatcher{votes: true, sources: []int64{9}, covotes: true, results: []int64{100, 200}}
	s := NewSearch(m, kw)
	flow, out, err := s.HandleStartSearch(ctx, 7, false)
	if err != nil || out.Step != AskGoal {
		t.Fatalf("single source should skip selection: %+v, %v", out, err)
	}

	answers := []string{kw.GoalBoth, kw.AnyGender, "3020"}
	for _, a := range answers {
		if out, err = s.Handle(ctx, flow, a); err != nil {
			t.Fatalf("answer %q: %v", a, err)
		}
		if out.Warning != nil {
			t.Fatalf("answer %q: warning %v", a, out.Warning)
		}
	}
	if out.Step != ShowResults || out.Match != 100 || flow.RunID == "" {
		t.Fatalf("first result = %+v", out)
	}
	q := m.queries[0]
	if q.Goal != forms.GoalBoth || q.Gender != forms.GenderAny || q.AgeRange != (forms.AgeRange{Min: 20, Max: 30}) {
		t.Fatalf("query = %+v", q)
	}
	if len(q.Sources) != 1 || q.Sources[0] != 9 || q.Filter != forms.NewMatches {
		t.Fatalf("query = %+v", q)
	}

	out, _ = s.Handle(ctx, flow, "what")
	if !errors.Is(out.Warning, forms.ErrIncorrectValue) || flow.Step != ShowResults {
		t.Fatalf("unknown text = %+v", out)
	}
	out, _ = s.Handle(ctx, flow, kw.ShowMore)
	if out.Match != 200 {
		t.Fatalf("second result = %+v", out)
	}
	out, _ = s.Handle(ctx, flow, kw.ShowMore)
	if !out.Terminal || !errors.Is(out.Warning, forms.ErrNoMoreResults) || flow.Step != End {
		t.Fatalf("exhausted = %+v", out)
	}
	if len(m.shown) != 2 {
		t.Fatalf("shown = %v", m.shown)
	}
}

func TestSearchZeroResultsAndFinish(t *testing.T) {
	ctx := context.Background()
	kw := testKeywords()
	m := &fakeMatcher{votes: true, sources: []int64{9}, covotes: true}
	s := NewSearch(m, kw)
	flow, _, _ := s.HandleStartSearch(ctx, 7, false)
	flow.Step = AskAge
	out, err := s.Handle(ctx, flow, kw.AnyAge)
	if err != nil || !out.Terminal || !errors.Is(out.Warning, forms.ErrNoResults) {
		t.Fatalf("zero results = %+v, %v", out, err)
	}

	m.results = []int64{1, 2}
	flow, _, _ = s.HandleStartSearch(ctx, 7, false)
	flow.Step = AskAge
	if _, err := s.Handle(ctx, flow, kw.AnyAge); err != nil {
		t.Fatalf("age: %v", err)
	}
	out, _ = s.Handle(ctx, flow, "FINISH")
	if !out.Terminal || out.Warning != nil || flow.Step != End {
		t.Fatalf("finish = %+v", out)
	}
}

func TestSearchFilterToggle(t *testing.T) {
	m := &fakeMatcher{votes: true, sources: []int64{1, 2}, covotes: true}
	s := NewSearch(m, testKeywords())
	flow, _, _ := s.HandleStartSearch(context.Background(), 7, false)
	got, err := s.ToggleFilter(flow)
	if err != nil || got != forms.AllMatches {
		t.Fatalf("toggle = %v, %v", got, err)
	}
}
