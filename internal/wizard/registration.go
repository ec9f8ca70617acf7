package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/internal/forms"
)

const componentRegistration = "wizard.registration"

// ProfileStore persists completed registrations.
type ProfileStore interface {
	Upsert(ctx context.Context, p forms.Profile) error
	SetPhotos(ctx context.Context, userID int64, refs []string) error
}

// Geocoder turns coordinates into a country and city.
type Geocoder interface {
	Locate(ctx context.Context, lat, lon float64) (country, city string, err error)
}

// PhotoImporter returns the transport's own profile photos of a user.
type PhotoImporter func(ctx context.Context, userID int64) ([]string, error)

// RegistrationFlow is the persisted state of one registration conversation.
type RegistrationFlow struct {
	Step Step           `json:"step"`
	Form *forms.NewUser `json:"form"`
}

// Input is one inbound user event. At most one of the fields is set.
type Input struct {
	Text     string
	PhotoRef string
	Location *Coordinates
}

// Coordinates of a shared location.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Registration drives the profile wizard.
type Registration struct {
	profiles ProfileStore
	geocoder Geocoder
	imports  PhotoImporter
	kw       forms.Keywords
}

// NewRegistration wires the controller. geocoder and imports may be nil.
func NewRegistration(profiles ProfileStore, geocoder Geocoder, imports PhotoImporter, kw forms.Keywords) *Registration {
	return &Registration{profiles: profiles, geocoder: geocoder, imports: imports, kw: kw}
}

// Start opens a registration for userID.
func (r *Registration) Start(userID int64, backNavigation bool) (*RegistrationFlow, Outcome) {
	flow := &RegistrationFlow{Step: AskName, Form: forms.NewRegistration(userID, backNavigation)}
	return flow, prompt(AskName)
}

// Handle dispatches in to the handler of the current step.
func (r *Registration) Handle(ctx context.Context, flow *RegistrationFlow, in Input) (Outcome, error) {
	if in.Text != "" && forms.IsBack(in.Text, r.kw, flow.Form.BackNavigation) {
		return r.back(ctx, flow)
	}
	switch flow.Step {
	case AskName:
		return r.HandleName(ctx, flow, in.Text)
	case AskGoal:
		return r.HandleGoal(ctx, flow, in.Text)
	case AskGender:
		return r.HandleGender(ctx, flow, in.Text)
	case AskAge:
		return r.HandleAge(ctx, flow, in.Text)
	case AskLocation:
		if in.Location != nil {
			return r.HandleCoordinates(ctx, flow, in.Location.Lat, in.Location.Lon)
		}
		return r.HandleLocationText(ctx, flow, in.Text)
	case AskPhotos:
		if in.PhotoRef != "" {
			return r.AddPhoto(flow, in.PhotoRef), nil
		}
		return r.HandlePhotoControl(ctx, flow, in.Text)
	case AskComment:
		return r.HandleComment(ctx, flow, in.Text)
	case Confirm:
		return r.HandleConfirm(ctx, flow, in.Text)
	case Created:
		return Outcome{Step: Created, Terminal: true}, nil
	}
	return Outcome{}, fmt.Errorf("wizard: unknown registration step %q", flow.Step)
}

// HandleName answers AskName.
func (r *Registration) HandleName(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetName(text); err != nil {
		return warn(AskName, err), nil
	}
	return r.advance(ctx, flow, AskName)
}

// HandleGoal answers AskGoal.
func (r *Registration) HandleGoal(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetGoal(text, r.kw); err != nil {
		return warn(AskGoal, err), nil
	}
	return r.advance(ctx, flow, AskGoal)
}

// HandleGender answers AskGender.
func (r *Registration) HandleGender(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetGender(text, r.kw); err != nil {
		return warn(AskGender, err), nil
	}
	return r.advance(ctx, flow, AskGender)
}

// HandleAge answers AskAge. The skip keyword leaves the age empty.
func (r *Registration) HandleAge(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetAge(text, r.kw); err != nil {
		return warn(AskAge, err), nil
	}
	return r.advance(ctx, flow, AskAge)
}

// HandleLocationText answers AskLocation with "country[, city]" or skip.
func (r *Registration) HandleLocationText(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetLocation(text, r.kw); err != nil {
		return warn(AskLocation, err), nil
	}
	return r.advance(ctx, flow, AskLocation)
}

// HandleCoordinates answers AskLocation with a shared location.
func (r *Registration) HandleCoordinates(ctx context.Context, flow *RegistrationFlow, lat, lon float64) (Outcome, error) {
	if r.geocoder == nil {
		return warn(AskLocation, forms.ErrLocationService), nil
	}
	country, city, err := r.geocoder.Locate(ctx, lat, lon)
	switch {
	case errors.Is(err, forms.ErrBadLocation):
		return warn(AskLocation, forms.ErrBadLocation), nil
	case err != nil:
		logger.Warn(ctx, componentRegistration, "wizard.geocode",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return warn(AskLocation, forms.ErrLocationService), nil
	}
	flow.Form.SetAddress(country, city)
	return r.advance(ctx, flow, AskLocation)
}

// AddPhoto stores one photo and stays on AskPhotos.
func (r *Registration) AddPhoto(flow *RegistrationFlow, ref string) Outcome {
	if !flow.Form.AddPhoto(ref) {
		return warn(AskPhotos, forms.ErrPhotosLimit)
	}
	return Outcome{Step: AskPhotos, Prompt: "photo_added"}
}

// HandlePhotoControl answers the remove-all, import, finish and skip controls.
func (r *Registration) HandlePhotoControl(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	switch {
	case forms.IsFinish(text, r.kw), forms.IsSkip(text, r.kw):
		return r.advance(ctx, flow, AskPhotos)
	case forms.IsRemovePhotos(text, r.kw):
		flow.Form.RemovePhotos()
		return Outcome{Step: AskPhotos, Prompt: "photos_removed"}, nil
	case forms.IsImportPhotos(text, r.kw):
		return r.importPhotos(ctx, flow)
	}
	return warn(AskPhotos, forms.IncorrectValue("photos")), nil
}

func (r *Registration) importPhotos(ctx context.Context, flow *RegistrationFlow) (Outcome, error) {
	if r.imports == nil {
		return warn(AskPhotos, forms.ErrNoAccountPhotos), nil
	}
	refs, err := r.imports(ctx, flow.Form.UserID())
	if err != nil {
		return Outcome{}, fmt.Errorf("wizard: import photos: %w", err)
	}
	added := 0
	for _, ref := range refs {
		if flow.Form.AddPhoto(ref) {
			added++
		}
	}
	if added == 0 {
		if flow.Form.PhotosFull() {
			return warn(AskPhotos, forms.ErrPhotosLimit), nil
		}
		return warn(AskPhotos, forms.ErrNoAccountPhotos), nil
	}
	return Outcome{Step: AskPhotos, Prompt: "photos_imported"}, nil
}

// HandleComment answers AskComment.
func (r *Registration) HandleComment(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if err := flow.Form.SetComment(text, r.kw); err != nil {
		return warn(AskComment, err), nil
	}
	return r.advance(ctx, flow, AskComment)
}

// HandleConfirm requires the finish keyword and then creates the profile.
func (r *Registration) HandleConfirm(ctx context.Context, flow *RegistrationFlow, text string) (Outcome, error) {
	if !forms.IsFinish(text, r.kw) {
		return warn(Confirm, forms.IncorrectValue("confirm")), nil
	}
	return r.Create(ctx, flow)
}

// Create persists the form once and closes the wizard.
func (r *Registration) Create(ctx context.Context, flow *RegistrationFlow) (Outcome, error) {
	if flow.Step == Created {
		return Outcome{Step: Created, Terminal: true}, nil
	}
	profile := flow.Form.Profile()
	if err := r.profiles.Upsert(ctx, profile); err != nil {
		return Outcome{}, fmt.Errorf("wizard: upsert profile: %w", err)
	}
	if err := r.profiles.SetPhotos(ctx, profile.UserID, flow.Form.Photos); err != nil {
		return Outcome{}, fmt.Errorf("wizard: set photos: %w", err)
	}
	flow.Step = Created
	logger.Info(ctx, componentRegistration, "wizard.created",
		slog.Int64("user_id", profile.UserID),
		slog.Int("count", len(flow.Form.Photos)),
	)
	return Outcome{Step: Created, Prompt: string(Created), Terminal: true}, nil
}

// advance moves to the step after from and prompts it.
func (r *Registration) advance(ctx context.Context, flow *RegistrationFlow, from Step) (Outcome, error) {
	next, err := fire(ctx, registrationEvents, from, evNext)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = next
	logger.Debug(ctx, componentRegistration, "wizard.step",
		slog.String("step", string(next)),
	)
	return prompt(next), nil
}

func (r *Registration) back(ctx context.Context, flow *RegistrationFlow) (Outcome, error) {
	if !can(registrationEvents, flow.Step, evBack) {
		return prompt(flow.Step), nil
	}
	prev, err := fire(ctx, registrationEvents, flow.Step, evBack)
	if err != nil {
		return Outcome{}, err
	}
	flow.Step = prev
	return prompt(prev), nil
}
