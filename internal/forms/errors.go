package forms

import "fmt"

// Condition is a named domain outcome raised by the rules and the wizards.
// Recoverable conditions re-prompt the user, terminal ones end the conversation.
type Condition struct {
	code     string
	terminal bool
	field    string
}

var (
	// ErrIncorrectValue reports input that failed classification for the current step.
	ErrIncorrectValue = &Condition{code: "incorrect_value"}
	// ErrNoSources reports an attempt to confirm an empty source selection.
	ErrNoSources = &Condition{code: "no_sources"}
	// ErrBadLocation reports a location that could not be split into country and city.
	ErrBadLocation = &Condition{code: "bad_location"}
	// ErrLocationService reports that the geocoding collaborator is unavailable.
	ErrLocationService = &Condition{code: "location_service"}
	// ErrPhotosLimit reports a photo sent after the list is full.
	ErrPhotosLimit = &Condition{code: "photos_limit"}
	// ErrNoAccountPhotos reports an import from an account without profile photos.
	ErrNoAccountPhotos = &Condition{code: "no_account_photos"}

	// ErrNoVotes ends the search wizard for users without any recorded vote.
	ErrNoVotes = &Condition{code: "no_votes", terminal: true}
	// ErrNoCovotes ends the search wizard when nobody shares a vote in the selected sources.
	ErrNoCovotes = &Condition{code: "no_covotes", terminal: true}
	// ErrNoResults ends the search wizard when the matcher returned nothing.
	ErrNoResults = &Condition{code: "no_results", terminal: true}
	// ErrNoMoreResults ends the result loop when the cursor is exhausted.
	ErrNoMoreResults = &Condition{code: "no_more_results", terminal: true}
)

// IncorrectValue returns ErrIncorrectValue annotated with the rejected field.
func IncorrectValue(field string) error {
	return &Condition{code: ErrIncorrectValue.code, field: field}
}

func (c *Condition) Error() string {
	if c.field != "" {
		return fmt.Sprintf("forms: %s (%s)", c.code, c.field)
	}
	return "forms: " + c.code
}

// Code exposes a stable identifier picked up by handler summaries.
func (c *Condition) Code() string { return c.code }

// Field names the form field the condition refers to, if any.
func (c *Condition) Field() string { return c.field }

// Terminal reports whether the condition ends the conversation.
func (c *Condition) Terminal() bool { return c.terminal }

// Is matches conditions by code so annotated copies compare equal to the sentinels.
func (c *Condition) Is(target error) bool {
	t, ok := target.(*Condition)
	if !ok {
		return false
	}
	return t.code == c.code
}
