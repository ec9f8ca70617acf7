// Package wizard drives the registration and search conversations one user
// turn at a time. Controllers are stateless: the flow value they mutate is
// what the session store persists between turns.
package wizard

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Step names a position in a wizard.
type Step string

// Registration steps.
const (
	AskName     Step = "ask_name"
	AskGoal     Step = "ask_goal"
	AskGender   Step = "ask_gender"
	AskAge      Step = "ask_age"
	AskLocation Step = "ask_location"
	AskPhotos   Step = "ask_photos"
	AskComment  Step = "ask_comment"
	Confirm     Step = "confirm"
	Created     Step = "created"
)

// Search steps. Goal, gender and age reuse the registration names.
const (
	Start           Step = "start"
	SourceSelection Step = "source_selection"
	ExecuteSearch   Step = "execute_search"
	ShowResults     Step = "show_results"
	End             Step = "end"
)

const (
	evNext    = "next"
	evBack    = "back"
	evSources = "select_sources"
	evStop    = "stop"
)

// Outcome is what one turn produced. Prompt and Warning are rendered by the
// caller; a recoverable Warning leaves Step unchanged.
type Outcome struct {
	Step     Step
	Prompt   string
	Warning  error
	Terminal bool
	// Match is the profile to display on result steps.
	Match int64
}

func prompt(step Step) Outcome {
	return Outcome{Step: step, Prompt: string(step)}
}

func warn(step Step, err error) Outcome {
	return Outcome{Step: step, Prompt: string(step), Warning: err}
}

func terminal(err error) Outcome {
	return Outcome{Step: End, Warning: err, Terminal: true}
}

var registrationOrder = []Step{AskName, AskGoal, AskGender, AskAge, AskLocation, AskPhotos, AskComment, Confirm, Created}

var registrationEvents = linearEvents(registrationOrder, Confirm)

var searchEvents = append(fsm.Events{
	{Name: evSources, Src: []string{string(Start)}, Dst: string(SourceSelection)},
	{Name: evNext, Src: []string{string(Start), string(SourceSelection)}, Dst: string(AskGoal)},
	{Name: evNext, Src: []string{string(AskGoal)}, Dst: string(AskGender)},
	{Name: evNext, Src: []string{string(AskGender)}, Dst: string(AskAge)},
	{Name: evNext, Src: []string{string(AskAge)}, Dst: string(ExecuteSearch)},
	{Name: evNext, Src: []string{string(ExecuteSearch)}, Dst: string(ShowResults)},
	{Name: evBack, Src: []string{string(AskGoal)}, Dst: string(SourceSelection)},
	{Name: evBack, Src: []string{string(AskGender)}, Dst: string(AskGoal)},
	{Name: evBack, Src: []string{string(AskAge)}, Dst: string(AskGender)},
}, fsm.EventDesc{
	Name: evStop,
	Src: []string{
		string(Start), string(SourceSelection), string(AskGoal), string(AskGender),
		string(AskAge), string(ExecuteSearch), string(ShowResults),
	},
	Dst: string(End),
})

// linearEvents chains order with "next" and allows "back" up to lastBack.
func linearEvents(order []Step, lastBack Step) fsm.Events {
	events := make(fsm.Events, 0, 2*len(order))
	backOpen := true
	for i := 0; i+1 < len(order); i++ {
		events = append(events, fsm.EventDesc{Name: evNext, Src: []string{string(order[i])}, Dst: string(order[i+1])})
		if i > 0 && backOpen {
			events = append(events, fsm.EventDesc{Name: evBack, Src: []string{string(order[i])}, Dst: string(order[i-1])})
		}
		if order[i] == lastBack {
			backOpen = false
		}
	}
	return events
}

// fire runs one event of table from the given step. Staying in place never
// goes through here.
func fire(ctx context.Context, table fsm.Events, from Step, event string) (Step, error) {
	m := fsm.NewFSM(string(from), table, fsm.Callbacks{})
	if err := m.Event(ctx, event); err != nil {
		return from, fmt.Errorf("wizard: %s from %s: %w", event, from, err)
	}
	return Step(m.Current()), nil
}

func can(table fsm.Events, from Step, event string) bool {
	return fsm.NewFSM(string(from), table, fsm.Callbacks{}).Can(event)
}
