package forms

// Goal is what a user is looking for.
type Goal string

const (
	GoalChat Goal = "chat"
	GoalDate Goal = "date"
	GoalBoth Goal = "both"
)

// Gender of a profile, or the gender filter of a search.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	// GenderAny is only legal as a search filter.
	GenderAny Gender = "any"
)

// MatchFilter selects which matches the result loop displays.
type MatchFilter string

const (
	AllMatches MatchFilter = "all"
	NewMatches MatchFilter = "new"
)

// Age bounds accepted by ClassifyAge.
const (
	MinAge = 16
	MaxAge = 99
)

// MaxPhotosCount bounds the registration photo list.
const MaxPhotosCount = 3

// AgeRange is an inclusive age interval with Min <= Max.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NewAgeRange returns the interval spanned by a and b in either order.
func NewAgeRange(a, b int) AgeRange {
	if a > b {
		a, b = b, a
	}
	return AgeRange{Min: a, Max: b}
}

// FullAgeRange spans every accepted age.
func FullAgeRange() AgeRange {
	return AgeRange{Min: MinAge, Max: MaxAge}
}

// Location is the result of classifying a free-text location.
type Location struct {
	Country string
	City    string
	// Skip is set when the user chose not to share a location.
	Skip bool
}
