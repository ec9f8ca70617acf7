package forms

import (
	"strconv"
	"strings"
	"unicode"
)

// ClassifyAge accepts purely numeric input within [MinAge, MaxAge].
func ClassifyAge(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !isDigits(text) {
		return 0, false
	}
	age, err := strconv.Atoi(text)
	if err != nil || age < MinAge || age > MaxAge {
		return 0, false
	}
	return age, true
}

// ClassifyAgeRange parses a compact "MMNN" range or the any-age keyword.
// The split is positional on the first two characters, so both bounds are
// expected to be two-digit numbers.
func ClassifyAgeRange(text string, kw Keywords) (AgeRange, error) {
	if matches(text, kw.AnyAge) {
		return FullAgeRange(), nil
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, text)
	if len(compact) < 2 {
		return AgeRange{}, IncorrectValue("age_range")
	}
	first, ok := ClassifyAge(compact[:2])
	if !ok {
		return AgeRange{}, IncorrectValue("age_range")
	}
	rest := compact[2:]
	if rest == "" {
		return NewAgeRange(first, first), nil
	}
	second, ok := ClassifyAge(rest)
	if !ok {
		return AgeRange{}, IncorrectValue("age_range")
	}
	return NewAgeRange(first, second), nil
}

// ClassifyGoal maps one of the three goal labels to a Goal.
func ClassifyGoal(text string, kw Keywords) (Goal, error) {
	switch {
	case matches(text, kw.GoalChat):
		return GoalChat, nil
	case matches(text, kw.GoalDate):
		return GoalDate, nil
	case matches(text, kw.GoalBoth):
		return GoalBoth, nil
	}
	return "", IncorrectValue("goal")
}

// ClassifyGender maps the registration gender labels.
func ClassifyGender(text string, kw Keywords) (Gender, error) {
	switch {
	case matches(text, kw.GenderMale):
		return GenderMale, nil
	case matches(text, kw.GenderFemale):
		return GenderFemale, nil
	}
	return "", IncorrectValue("gender")
}

// ClassifyTargetGender maps the search gender labels, which include "any".
func ClassifyTargetGender(text string, kw Keywords) (Gender, error) {
	if matches(text, kw.AnyGender) {
		return GenderAny, nil
	}
	g, err := ClassifyGender(text, kw)
	if err != nil {
		return "", IncorrectValue("target_gender")
	}
	return g, nil
}

// ClassifyLocation splits "country, city" on the first comma.
func ClassifyLocation(text string, kw Keywords) (Location, error) {
	if matches(text, kw.Skip) {
		return Location{Skip: true}, nil
	}
	country, city, _ := strings.Cut(text, ",")
	country = strings.TrimSpace(country)
	if country == "" {
		return Location{}, IncorrectValue("location")
	}
	return Location{Country: country, City: strings.TrimSpace(city)}, nil
}

// ClassifyFreeText returns the trimmed text, or empty on the skip keyword.
func ClassifyFreeText(text string, kw Keywords) (string, error) {
	if matches(text, kw.Skip) {
		return "", nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", IncorrectValue("text")
	}
	return text, nil
}

// IsBack reports whether text is a back-navigation command. With navigation
// disabled the back label is ordinary text.
func IsBack(text string, kw Keywords, backNavigation bool) bool {
	return backNavigation && matches(text, kw.Back)
}

// IsFinish compares text with the finish label ignoring case and spaces.
func IsFinish(text string, kw Keywords) bool {
	if kw.Finish == "" {
		return false
	}
	return strings.EqualFold(stripSpaces(text), stripSpaces(kw.Finish))
}

// IsSkip reports whether text is the skip label.
func IsSkip(text string, kw Keywords) bool {
	return matches(text, kw.Skip)
}

// IsRemovePhotos reports whether text is the remove-all-photos control.
func IsRemovePhotos(text string, kw Keywords) bool {
	return matches(text, kw.RemovePhotos)
}

// IsImportPhotos reports whether text is the import-account-photos control.
func IsImportPhotos(text string, kw Keywords) bool {
	return matches(text, kw.ImportPhotos)
}

// IsShowMore reports whether text asks for the next search result.
func IsShowMore(text string, kw Keywords) bool {
	return matches(text, kw.ShowMore)
}

func matches(text, label string) bool {
	if label == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(label))
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
