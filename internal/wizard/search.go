package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/internal/forms"
)

const componentSearch = "wizard.search"

// Matcher answers the vote and covote questions of the search wizard.
type Matcher interface {
	HasVotes(ctx context.Context, userID int64) (bool, error)
	VotedSources(ctx context.Context, userID int64) ([]int64, error)
	HasCovotes(ctx context.Context, userID int64, sources []int64) (bool, error)
	Search(ctx context.Context, userID int64, q forms.SearchQuery) ([]int64, error)
	MarkShown(ctx context.Context, userID, matchID int64) error
}

// SearchFlow is the persisted state of one search conversation.
type SearchFlow struct {
	Step Step          `json:"step"`
	Form *forms.Target `json:"form"`
	// BackNavigation mirrors the registration policy flag.
	BackNavigation bool `json:"back_navigation,omitempty"`

	RunID   string  `json:"run_id,omitempty"`
	Results []int64 `json:"results,omitempty"`
	Cursor  int     `json:"cursor,omitempty"`
}

// Search drives the search wizard.
type Search struct {
	matcher Matcher
	kw      forms.Keywords
}

// NewSearch wires the controller.
func NewSearch(matcher Matcher, kw forms.Keywords) *Search {
	return &Search{matcher: matcher, kw: kw}
}

// HandleStartSearch opens a search for userID. Users without votes get a
// terminal NoVotes outcome and a nil flow.
func (s *Search) HandleStartSearch(ctx context.Context, userID int64, backNavigation bool) (*SearchFlow, Outcome, error) {
	ok, err := s.matcher.HasVotes(ctx, userID)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("wizard: has votes: %w", err)
	}
	if !ok {
		return nil, terminal(forms.ErrNoVotes), nil
	}
	sources, err := s.matcher.VotedSources(ctx, userID)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("wizard: voted sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, terminal(forms.ErrNoVotes), nil
	}
	target := forms.NewTarget(userID)
	if err := target.SetSources(sources); err != nil {
		return nil, Outcome{}, fmt.Errorf("wizard: populate sources: %w", err)
	}
	flow := &SearchFlow{Step: Start, Form: target, BackNavigation: backNavigation}

	if target.SourceCount() > 1 {
		next, err := fire(ctx, searchEvents, Start, evSources)
		if err != nil {
			return nil, Outcome{}, err
		}
		flow.Step = next
		return flow, prompt(next), nil
	}
	out, err := s.confirmSources(ctx, flow)
	if err != nil {
		return nil, Outcome{}, err
	}
	return flow, out, nil
}

// HandleSourceCallback applies a checklist tap to the source selection.
// Key 0 applies chosen to every source.
func (s *Search) HandleSourceCallback(flow *SearchFlow, key int64, chosen bool) error {
	if flow.Step != SourceSelection {
		return fmt.Errorf("wizard: source toggle in step %s", flow.Step)
	}
	return flow.Form.ToggleSource(key, chosen)
}

// ToggleFilter flips the match display filter while sources are selected.
func (s *Search) ToggleFilter(flow *SearchFlow) (forms.MatchFilter, error) {
	if flow.Step != SourceSelection {
		return flow.Form.Filter, fmt.Errorf("wizard: filter toggle in step %s", flow.Step)
	}
	return flow.Form.ToggleFilter(), nil
}

// ConfirmSources leaves SourceSelection once at least one source is chosen
// and someone shares a vote in it.
func (s *Search) ConfirmSources(ctx context.Context, flow *SearchFlow) (Outcome, error) {
	if flow.Step != SourceSelection {
		return prompt(flow.Step), nil
	}
	return s.confirmSources(ctx, flow)
}

func (s *Search) confirmSources(ctx context.Context, flow *SearchFlow) (Outcome, error) {
	chosen := flow.Form.ChosenSources()
	if len(chosen) == 0 {
		return warn(flow.Step, forms.ErrNoSources), nil
	}
	ok, err := s.matcher.HasCovotes(ctx, flow.Form.UserID(), chosen)
	if err != nil {
		return Outcome{}, fmt.Errorf("wizard: covotes: %w", err)
	}
	if !ok {
		return s.stop(ctx, flow, forms.ErrNoCovotes)
	}
	return s.advance(ctx, flow, flow.Step)
}

// Handle dispatches a text answer to the handler of the current step.
func (s *Search) Handle(ctx context.Context, flow *SearchFlow, text string) (Outcome, error) {
	if forms.IsBack(text, s.kw, flow.BackNavigation) {
		return s.back(ctx, flow)
	}
	switch flow.Step {
	case SourceSelection:
		return prompt(SourceSelection), nil
	case AskGoal:
		return s.HandleGoal(ctx, flow, text)
	case AskGender:
		return s.HandleGender(ctx, flow, text)
	case AskAge:
		return s.HandleAge(ctx, flow, text)
	case ShowResults:
		return s.HandleResults(ctx, flow, text)
	case End:
		return Outcome{Step: End, Terminal: true}, nil
	}
	return Outcome{}, fmt.Errorf("wizard: unexpected search step %q", flow.Step)
}

// HandleGoal answers AskGoal.
func (s *Search) HandleGoal(ctx context.Context, flow *SearchFlow, text string) (Outcome, error) {
	if err := flow.Form.SetGoal(text, s.kw); err != nil {
		return warn(AskGoal, err), nil
	}
	return s.advance(ctx, flow, AskGoal)
}

// HandleGender answers AskGender. The any-gender label is accepted.
func (s *Search) HandleGender(ctx context.Context, flow *SearchFlow, text string) (Outcome, error) {
	if err := flow.Form.SetGender(text, s.kw); err != nil {
		return warn(AskGender, err), nil
	}
	return s.advance(ctx, flow, AskGender)
}

// HandleAge answers AskAge and runs the search.
func (s *Search) HandleAge(ctx context.Context, flow *SearchFlow, text string) (Outcome, error) {
	if err := flow.Form.SetAge(text, s.kw); err != nil {
		return warn(AskAge, err), nil
	}
	next, err := fire(ctx, searchEvents, AskAge, evNext)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = next
	return s.Execute(ctx, flow)
}

// Execute runs the matcher and shows the first result.
func (s *Search) Execute(ctx context.Context, flow *SearchFlow) (Outcome, error) {
	if flow.Step != ExecuteSearch {
		return Outcome{}, fmt.Errorf("wizard: execute in step %s", flow.Step)
	}
	q := flow.Form.Query()
	results, err := s.matcher.Search(ctx, flow.Form.UserID(), q)
	if err != nil {
		return Outcome{}, fmt.Errorf("wizard: search: %w", err)
	}
	flow.RunID = uuid.NewString()
	logger.Info(ctx, componentSearch, "wizard.search",
		slog.String("run_id", flow.RunID),
		slog.Int64("user_id", flow.Form.UserID()),
		slog.Int("sources", len(q.Sources)),
		slog.Int("count", len(results)),
		slog.String("filter", string(q.Filter)),
	)
	if len(results) == 0 {
		return s.stop(ctx, flow, forms.ErrNoResults)
	}
	next, err := fire(ctx, searchEvents, ExecuteSearch, evNext)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = next
	flow.Results = results
	flow.Cursor = 0
	return s.showNext(ctx, flow)
}

// HandleResults answers ShowResults: show more loops, finish ends.
func (s *Search) HandleResults(ctx context.Context, flow *SearchFlow, text string) (Outcome, error) {
	switch {
	case forms.IsShowMore(text, s.kw):
		return s.showNext(ctx, flow)
	case forms.IsFinish(text, s.kw):
		out, err := s.stop(ctx, flow, nil)
		out.Prompt = "search_finished"
		return out, err
	}
	return warn(ShowResults, forms.IncorrectValue("results")), nil
}

func (s *Search) showNext(ctx context.Context, flow *SearchFlow) (Outcome, error) {
	if flow.Cursor >= len(flow.Results) {
		return s.stop(ctx, flow, forms.ErrNoMoreResults)
	}
	match := flow.Results[flow.Cursor]
	if err := s.matcher.MarkShown(ctx, flow.Form.UserID(), match); err != nil {
		return Outcome{}, fmt.Errorf("wizard: mark shown: %w", err)
	}
	flow.Cursor++
	return Outcome{Step: ShowResults, Prompt: string(ShowResults), Match: match}, nil
}

func (s *Search) advance(ctx context.Context, flow *SearchFlow, from Step) (Outcome, error) {
	next, err := fire(ctx, searchEvents, from, evNext)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = next
	logger.Debug(ctx, componentSearch, "wizard.step",
		slog.String("step", string(next)),
	)
	return prompt(next), nil
}

func (s *Search) back(ctx context.Context, flow *SearchFlow) (Outcome, error) {
	if !can(searchEvents, flow.Step, evBack) || (flow.Step == AskGoal && flow.Form.SourceCount() < 2) {
		return prompt(flow.Step), nil
	}
	prev, err := fire(ctx, searchEvents, flow.Step, evBack)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = prev
	return prompt(prev), nil
}

// stop ends the wizard. cause is nil for a regular finish.
func (s *Search) stop(ctx context.Context, flow *SearchFlow, cause error) (Outcome, error) {
	next, err := fire(ctx, searchEvents, flow.Step, evStop)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = next
	out := terminal(cause)
	out.Step = next
	return out, nil
}
