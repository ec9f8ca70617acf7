package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func testKeywords() Keywords {
	return Keywords{
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

func TestClassifyAge(t *testing.T) {
	cases := map[string]struct {
		age int
		ok  bool
	}{
		"25":     {25, true},
		" 30 ":   {30, true},
		"16":     {16, true},
		"99":     {99, true},
		"15":     {0, false},
		"100":    {0, false},
		"2a":     {0, false},
		"":       {0, false},
		"-20":    {0, false},
		"twenty": {0, false},
	}
	for in, want := range cases {
		age, ok := ClassifyAge(in)
		if ok != want.ok || age != want.age {
			t.Fatalf("ClassifyAge(%q) = %d,%v want %d,%v", in, age, ok, want.age, want.ok)
		}
	}
}

func TestAgeRangeOrderIndependent(t *testing.T) {
	kw := testKeywords()
	for a := 18; a <= 60; a += 7 {
		for b := 20; b <= 70; b += 11 {
			r, err := ClassifyAgeRange(fmt.Sprintf("%d%d", a, b), kw)
			if err != nil {
				t.Fatalf("range %d%d: %v", a, b, err)
			}
			lo, hi := min(a, b), max(a, b)
			if r.Min != lo || r.Max != hi {
				t.Fatalf("range %d%d = %+v want (%d,%d)", a, b, r, lo, hi)
			}
		}
	}
}

func TestClassifyAgeRangeVariants(t *testing.T) {
	kw := testKeywords()
	r, err := ClassifyAgeRange("any AGE", kw)
	if err != nil || r != FullAgeRange() {
		t.Fatalf("any age = %+v, %v", r, err)
	}
	r, err = ClassifyAgeRange("40 - 25", kw)
	if err != nil || r.Min != 25 || r.Max != 40 {
		t.Fatalf("separated range = %+v, %v", r, err)
	}
	r, err = ClassifyAgeRange("33", kw)
	if err != nil || r.Min != 33 || r.Max != 33 {
		t.Fatalf("single age = %+v, %v", r, err)
	}
	for _, bad := range []string{"", "1", "1030", "abcd", "20x"} {
		if _, err := ClassifyAgeRange(bad, kw); !errors.Is(err, ErrIncorrectValue) {
			t.Fatalf("ClassifyAgeRange(%q) err = %v", bad, err)
		}
	}
}

func TestSetAgeRangeSorts(t *testing.T) {
	target := NewTarget(1)
	target.SetAgeRange(30, 10)
	if *target.AgeRange != (AgeRange{Min: 10, Max: 30}) {
		t.Fatalf("got %+v", *target.AgeRange)
	}
	target.SetAgeRange(10, 30)
	if *target.AgeRange != (AgeRange{Min: 10, Max: 30}) {
		t.Fatalf("got %+v", *target.AgeRange)
	}
}

func TestClassifyGoalAndGender(t *testing.T) {
	kw := testKeywords()
	if g, err := ClassifyGoal("chat AND date", kw); err != nil || g != GoalBoth {
		t.Fatalf("goal both = %v, %v", g, err)
	}
	if _, err := ClassifyGoal("Chats", kw); !errors.Is(err, ErrIncorrectValue) {
		t.Fatalf("expected incorrect value, got %v", err)
	}
	if g, err := ClassifyGender("female", kw); err != nil || g != GenderFemale {
		t.Fatalf("gender = %v, %v", g, err)
	}
	if _, err := ClassifyGender("Anyone", kw); !errors.Is(err, ErrIncorrectValue) {
		t.Fatalf("registration must reject any gender, got %v", err)
	}
	if g, err := ClassifyTargetGender("anyone", kw); err != nil || g != GenderAny {
		t.Fatalf("target gender = %v, %v", g, err)
	}
}

func TestAddPhotoBounded(t *testing.T) {
	form := NewRegistration(7, false)
	for i := 0; i < MaxPhotosCount; i++ {
		if !form.AddPhoto(fmt.Sprintf("file-%d", i)) {
			t.Fatalf("add #%d rejected", i)
		}
	}
	if len(form.Photos) != MaxPhotosCount {
		t.Fatalf("photos = %d", len(form.Photos))
	}
	if form.AddPhoto("overflow") {
		t.Fatal("expected overflow to be rejected")
	}
	if len(form.Photos) != MaxPhotosCount || form.Photos[MaxPhotosCount-1] != fmt.Sprintf("file-%d", MaxPhotosCount-1) {
		t.Fatalf("photos changed on overflow: %v", form.Photos)
	}
}

func TestRemovePhotos(t *testing.T) {
	form := NewRegistration(7, false)
	if form.RemovePhotos() {
		t.Fatal("remove on empty list reported true")
	}
	if len(form.Photos) != 0 {
		t.Fatalf("photos = %v", form.Photos)
	}
	form.AddPhoto("a")
	if !form.RemovePhotos() {
		t.Fatal("remove on non-empty list reported false")
	}
	if len(form.Photos) != 0 {
		t.Fatalf("photos = %v", form.Photos)
	}
}

func TestSourceToggleRoundTrip(t *testing.T) {
	target := NewTarget(1)
	if err := target.SetSources([]int64{1, 2, 3}); err != nil {
		t.Fatalf("set sources: %v", err)
	}
	_ = target.ToggleSource(1, false)
	_ = target.ToggleSource(3, false)

	if err := target.ToggleSource(AllSourcesKey, true); err != nil {
		t.Fatalf("select all: %v", err)
	}
	for _, s := range target.Sources() {
		if !s.Chosen {
			t.Fatalf("source %d not chosen after select all", s.ID)
		}
	}
	if !target.AllSourcesChosen() {
		t.Fatal("aggregate should be chosen")
	}

	if err := target.ToggleSource(AllSourcesKey, false); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	for _, s := range target.Sources() {
		if s.Chosen {
			t.Fatalf("source %d chosen after clear all", s.ID)
		}
	}

	if err := target.ToggleSource(2, true); err != nil {
		t.Fatalf("toggle single: %v", err)
	}
	if !target.IsChosen(2) || target.IsChosen(1) || target.IsChosen(3) {
		t.Fatalf("single toggle leaked: %+v", target.Sources())
	}
	if target.AllSourcesChosen() {
		t.Fatal("aggregate should not be chosen")
	}
}

func TestSetSourcesContract(t *testing.T) {
	target := NewTarget(1)
	if err := target.SetSources([]int64{4, 0}); !errors.Is(err, ErrReservedSource) {
		t.Fatalf("expected reserved source error, got %v", err)
	}
	if err := target.SetSources([]int64{4, 5, 4}); err != nil {
		t.Fatalf("set sources: %v", err)
	}
	if target.SourceCount() != 2 {
		t.Fatalf("duplicates kept: %+v", target.Sources())
	}
	if err := target.SetSources([]int64{9}); !errors.Is(err, ErrSourcesFixed) {
		t.Fatalf("expected fixed error, got %v", err)
	}
	if err := target.ToggleSource(42, true); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected unknown source, got %v", err)
	}
}

func TestSetLocation(t *testing.T) {
	kw := testKeywords()
	form := NewRegistration(1, false)
	if err := form.SetLocation("France, Paris", kw); err != nil {
		t.Fatalf("set location: %v", err)
	}
	if form.Country != "France" || form.City != "Paris" {
		t.Fatalf("got %q/%q", form.Country, form.City)
	}
	if err := form.SetLocation("Italy", kw); err != nil {
		t.Fatalf("set location: %v", err)
	}
	if form.Country != "Italy" || form.City != "Paris" {
		t.Fatalf("country-only input must keep the city: %q/%q", form.Country, form.City)
	}
	if err := form.SetLocation("skip", kw); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if form.Country != "" || form.City != "" {
		t.Fatalf("skip must clear both: %q/%q", form.Country, form.City)
	}
	if err := form.SetLocation(" , Rome", kw); !errors.Is(err, ErrIncorrectValue) {
		t.Fatalf("expected incorrect value, got %v", err)
	}
}

func TestSetAgeSkipAndReject(t *testing.T) {
	kw := testKeywords()
	form := NewRegistration(1, false)
	if err := form.SetAge("25", kw); err != nil || form.Age == nil || *form.Age != 25 {
		t.Fatalf("age = %v, %v", form.Age, err)
	}
	if err := form.SetAge("abc", kw); !errors.Is(err, ErrIncorrectValue) {
		t.Fatalf("expected incorrect value, got %v", err)
	}
	if form.Age == nil || *form.Age != 25 {
		t.Fatal("rejected input mutated the form")
	}
	if err := form.SetAge("SKIP", kw); err != nil || form.Age != nil {
		t.Fatalf("skip = %v, %v", form.Age, err)
	}
}

func TestBackAndFinishKeywords(t *testing.T) {
	kw := testKeywords()
	if IsBack("back", kw, false) {
		t.Fatal("back must be plain text when navigation is disabled")
	}
	if !IsBack(" Back ", kw, true) {
		t.Fatal("back must navigate when enabled")
	}
	if IsBack("backwards", kw, true) {
		t.Fatal("non-matching text must not navigate")
	}
	if !IsFinish("fin ish", kw) || !IsFinish("FINISH", kw) {
		t.Fatal("finish should ignore case and spaces")
	}
	if IsFinish("finished", kw) {
		t.Fatal("finish should be exact")
	}
}

func TestConditionCodes(t *testing.T) {
	err := IncorrectValue("age")
	if !errors.Is(err, ErrIncorrectValue) {
		t.Fatal("annotated condition must match the sentinel")
	}
	if errors.Is(err, ErrNoSources) {
		t.Fatal("different codes must not match")
	}
	var cond *Condition
	if !errors.As(err, &cond) || cond.Code() != "incorrect_value" || cond.Field() != "age" || cond.Terminal() {
		t.Fatalf("unexpected condition %+v", cond)
	}
	if !ErrNoCovotes.Terminal() || ErrNoSources.Terminal() {
		t.Fatal("terminal flags are wrong")
	}
}

func TestFormsSurviveSessionEncoding(t *testing.T) {
	reg := NewRegistration(11, true)
	reg.Fullname = "Alice"
	reg.AddPhoto("p1")
	data, err := json.Marshal(reg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back NewUser
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.UserID() != 11 || back.Fullname != "Alice" || len(back.Photos) != 1 || !back.BackNavigation {
		t.Fatalf("restored %+v", back)
	}

	target := NewTarget(12)
	_ = target.SetSources([]int64{30, 10, 20})
	_ = target.ToggleSource(10, false)
	data, err = json.Marshal(target)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Target
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := restored.Sources()
	if len(got) != 3 || got[0].ID != 30 || got[1].ID != 10 || got[1].Chosen || got[2].ID != 20 {
		t.Fatalf("order or state lost: %+v", got)
	}
}
