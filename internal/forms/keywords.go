package forms

// Resolver maps a symbolic (domain, key) pair to display text.
type Resolver interface {
	Resolve(domain, key string) string
}

// Domain and keys of the button labels the rules compare input against.
const (
	ButtonsDomain = "buttons"

	KeyBack         = "back"
	KeySkip         = "skip"
	KeyFinish       = "finish"
	KeyAnyAge       = "any_age"
	KeyAnyGender    = "any_gender"
	KeyGoalChat     = "goal_chat"
	KeyGoalDate     = "goal_date"
	KeyGoalBoth     = "goal_both"
	KeyGenderMale   = "gender_male"
	KeyGenderFemale = "gender_female"
	KeyRemovePhotos = "remove_photos"
	KeyImportPhotos = "import_photos"
	KeyShowMore     = "show_more"
)

// Keywords is the resolved label set for one locale.
type Keywords struct {
	Back         string
	Skip         string
	Finish       string
	AnyAge       string
	AnyGender    string
	GoalChat     string
	GoalDate     string
	GoalBoth     string
	GenderMale   string
	GenderFemale string
	RemovePhotos string
	ImportPhotos string
	ShowMore     string
}

// KeywordsFrom resolves every label through r.
func KeywordsFrom(r Resolver) Keywords {
	get := func(key string) string { return r.Resolve(ButtonsDomain, key) }
	return Keywords{
		Back:         get(KeyBack),
		Skip:         get(KeySkip),
		Finish:       get(KeyFinish),
		AnyAge:       get(KeyAnyAge),
		AnyGender:    get(KeyAnyGender),
		GoalChat:     get(KeyGoalChat),
		GoalDate:     get(KeyGoalDate),
		GoalBoth:     get(KeyGoalBoth),
		GenderMale:   get(KeyGenderMale),
		GenderFemale: get(KeyGenderFemale),
		RemovePhotos: get(KeyRemovePhotos),
		ImportPhotos: get(KeyImportPhotos),
		ShowMore:     get(KeyShowMore),
	}
}
