package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/datebot/internal/forms"
)

func testKeywords() forms.Keywords {
	return forms.Keywords{
		Back:         "Back",
		Skip:         "Skip",
		Finish:       "Finish",
		AnyAge:       "Any age",
		AnyGender:    "Anyone",
		GoalChat:     "Chat",
		GoalDate:     "Date",
		GoalBoth:     "Chat and date",
		GenderMale:   "Male",
		GenderFemale: "Female",
		RemovePhotos: "Remove photos",
		ImportPhotos: "Use account photos",
		ShowMore:     "Show more",
	}
}

type fakeProfiles struct {
	upserts []forms.Profile
	photos  map[int64][]string
	err     error
}

func (f *fakeProfiles) Upsert(_ context.Context, p forms.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, p)
	return nil
}

func (f *fakeProfiles) SetPhotos(_ context.Context, userID int64, refs []string) error {
	if f.photos == nil {
		f.photos = map[int64][]string{}
	}
	f.photos[userID] = append([]string(nil), refs...)
	return nil
}

type fakeGeocoder struct {
	country, city string
	err           error
}

func (f fakeGeocoder) Locate(context.Context, float64, float64) (string, string, error) {
	return f.country, f.city, f.err
}

func TestRegistrationHappyPath(t *testing.T) {
	ctx := context.Background()
	kw := testKeywords()
	store := &fakeProfiles{}
	reg := NewRegistration(store, nil, nil, kw)
	flow, out := reg.Start(42, false)
	if out.Step != AskName {
		t.Fatalf("start step = %s", out.Step)
	}

	steps := []struct {
		name string
		run  func() (Outcome, error)
		want Step
	}{
		{"name", func() (Outcome, error) { return reg.HandleName(ctx, flow, "Alice") }, AskGoal},
		{"goal", func() (Outcome, error) { return reg.HandleGoal(ctx, flow, kw.GoalChat) }, AskGender},
		{"gender", func() (Outcome, error) { return reg.HandleGender(ctx, flow, kw.GenderMale) }, AskAge},
		{"age", func() (Outcome, error) { return reg.HandleAge(ctx, flow, "25") }, AskLocation},
		{"location", func() (Outcome, error) { return reg.HandleLocationText(ctx, flow, "Spain, Madrid") }, AskPhotos},
		{"photo", func() (Outcome, error) { return reg.AddPhoto(flow, "photo-1"), nil }, AskPhotos},
		{"comment", func() (Outcome, error) { return reg.HandleComment(ctx, flow, "hi") }, Confirm},
	}
	for _, st := range steps {
		out, err := st.run()
		if err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if out.Warning != nil {
			t.Fatalf("%s: unexpected warning %v", st.name, out.Warning)
		}
		if out.Step != st.want {
			t.Fatalf("%s: step = %s want %s", st.name, out.Step, st.want)
		}
	}

	out, err := reg.Create(ctx, flow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !out.Terminal || out.Step != Created {
		t.Fatalf("create outcome = %+v", out)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, expected exactly one", len(store.upserts))
	}
	p := store.upserts[0]
	if p.UserID != 42 || p.Fullname != "Alice" || p.Goal != forms.GoalChat || p.Gender != forms.GenderMale {
		t.Fatalf("profile = %+v", p)
	}
	if p.Age == nil || *p.Age != 25 || p.Country != "Spain" || p.City != "Madrid" || p.Comment != "hi" {
		t.Fatalf("profile = %+v", p)
	}
	if got := store.photos[42]; len(got) != 1 || got[0] != "photo-1" {
		t.Fatalf("photos = %v", got)
	}

	if _, err := reg.Create(ctx, flow); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if len(store.upserts) != 1 {
		t.Fatal("created wizard must not persist again")
	}
}

func TestRegistrationRejectsAndStays(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistration(&fakeProfiles{}, nil, nil, testKeywords())
	flow, _ := reg.Start(1, false)
	flow.Step = AskAge

	out, err := reg.Handle(ctx, flow, Input{Text: "many"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !errors.Is(out.Warning, forms.ErrIncorrectValue) || out.Step != AskAge || flow.Step != AskAge {
		t.Fatalf("outcome = %+v, flow step %s", out, flow.Step)
	}
	if flow.Form.Age != nil {
		t.Fatal("rejected input mutated the form")
	}

	flow.Step = Confirm
	out, _ = reg.Handle(ctx, flow, Input{Text: "yes please"})
	if !errors.Is(out.Warning, forms.ErrIncorrectValue) || flow.Step != Confirm {
		t.Fatalf("confirm must require finish: %+v", out)
	}
}

func TestRegistrationBackNavigation(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistration(&fakeProfiles{}, nil, nil, testKeywords())

	disabled, _ := reg.Start(1, false)
	disabled.Step = AskGender
	out, _ := reg.Handle(ctx, disabled, Input{Text: "Back"})
	if disabled.Step != AskGender || !errors.Is(out.Warning, forms.ErrIncorrectValue) {
		t.Fatalf("disabled back must be plain text: step %s, %+v", disabled.Step, out)
	}

	enabled, _ := reg.Start(1, true)
	enabled.Step = AskGender
	out, err := reg.Handle(ctx, enabled, Input{Text: "back"})
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if enabled.Step != AskGoal || out.Prompt != string(AskGoal) {
		t.Fatalf("back moved to %s", enabled.Step)
	}

	enabled.Step = AskName
	if _, err := reg.Handle(ctx, enabled, Input{Text: "back"}); err != nil || enabled.Step != AskName {
		t.Fatalf("back on first step: %s, %v", enabled.Step, err)
	}
}

func TestRegistrationPhotoControls(t *testing.T) {
	ctx := context.Background()
	kw := testKeywords()
	imports := func(context.Context, int64) ([]string, error) {
		return []string{"a1", "a2", "a3", "a4"}, nil
	}
	reg := NewRegistration(&fakeProfiles{}, nil, imports, kw)
	flow, _ := reg.Start(5, false)
	flow.Step = AskPhotos

	out, err := reg.Handle(ctx, flow, Input{PhotoRef: "own"})
	if err != nil || out.Prompt != "photo_added" {
		t.Fatalf("add photo = %+v, %v", out, err)
	}
	out, _ = reg.Handle(ctx, flow, Input{Text: kw.ImportPhotos})
	if out.Prompt != "photos_imported" || len(flow.Form.Photos) != forms.MaxPhotosCount {
		t.Fatalf("import = %+v, photos %v", out, flow.Form.Photos)
	}
	out, _ = reg.Handle(ctx, flow, Input{PhotoRef: "late"})
	if !errors.Is(out.Warning, forms.ErrPhotosLimit) {
		t.Fatalf("overflow = %+v", out)
	}
	out, _ = reg.Handle(ctx, flow, Input{Text: kw.RemovePhotos})
	if out.Prompt != "photos_removed" || len(flow.Form.Photos) != 0 || flow.Step != AskPhotos {
		t.Fatalf("remove = %+v", out)
	}
	out, _ = reg.Handle(ctx, flow, Input{Text: "skip"})
	if out.Step != AskComment {
		t.Fatalf("skip moved to %s", out.Step)
	}
}

func TestRegistrationCoordinates(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistration(&fakeProfiles{}, fakeGeocoder{err: errors.New("timeout")}, nil, testKeywords())
	flow, _ := reg.Start(1, false)
	flow.Step = AskLocation
	out, err := reg.Handle(ctx, flow, Input{Location: &Coordinates{Lat: 1, Lon: 2}})
	if err != nil || !errors.Is(out.Warning, forms.ErrLocationService) || flow.Step != AskLocation {
		t.Fatalf("service failure = %+v, %v", out, err)
	}

	reg = NewRegistration(&fakeProfiles{}, fakeGeocoder{err: forms.ErrBadLocation}, nil, testKeywords())
	out, _ = reg.Handle(ctx, flow, Input{Location: &Coordinates{Lat: 1, Lon: 2}})
	if !errors.Is(out.Warning, forms.ErrBadLocation) {
		t.Fatalf("bad location = %+v", out)
	}

	reg = NewRegistration(&fakeProfiles{}, fakeGeocoder{country: "Spain", city: "Madrid"}, nil, testKeywords())
	out, _ = reg.Handle(ctx, flow, Input{Location: &Coordinates{Lat: 40.4, Lon: -3.7}})
	if out.Step != AskPhotos || flow.Form.Country != "Spain" || flow.Form.City != "Madrid" {
		t.Fatalf("geocoded = %+v, %q/%q", out, flow.Form.Country, flow.Form.City)
	}
}

func TestRegistrationPersistenceFailure(t *testing.T) {
	store := &fakeProfiles{err: errors.New("db down")}
	reg := NewRegistration(store, nil, nil, testKeywords())
	flow, _ := reg.Start(1, false)
	flow.Step = Confirm
	if _, err := reg.Handle(context.Background(), flow, Input{Text: "finish"}); err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if flow.Step != Confirm {
		t.Fatalf("failed create moved to %s", flow.Step)
	}
}
