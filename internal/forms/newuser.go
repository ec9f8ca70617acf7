package forms

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const maxFullnameRunes = 64

// Profile is the persisted projection of a completed registration form.
type Profile struct {
	UserID   int64  `db:"user_id"`
	Fullname string `db:"fullname"`
	Goal     Goal   `db:"goal"`
	Gender   Gender `db:"gender"`
	Age      *int   `db:"age"`
	Country  string `db:"country"`
	City     string `db:"city"`
	Comment  string `db:"comment"`
}

// NewUser holds the registration wizard state for one user.
type NewUser struct {
	userID int64

	Fullname string
	Goal     Goal
	Gender   Gender
	// Age is nil both before the age step and after the user skipped it.
	Age     *int
	Country string
	City    string
	Comment string
	Photos  []string

	BackNavigation bool
}

// NewRegistration starts an empty registration form owned by userID.
func NewRegistration(userID int64, backNavigation bool) *NewUser {
	return &NewUser{userID: userID, BackNavigation: backNavigation}
}

// UserID returns the owner of the form.
func (f *NewUser) UserID() int64 { return f.userID }

// SetName validates and stores the display name.
func (f *NewUser) SetName(text string) error {
	name := strings.TrimSpace(text)
	if name == "" || utf8.RuneCountInString(name) > maxFullnameRunes {
		return IncorrectValue("fullname")
	}
	f.Fullname = name
	return nil
}

// SetGoal stores the goal matching one of the goal labels.
func (f *NewUser) SetGoal(text string, kw Keywords) error {
	goal, err := ClassifyGoal(text, kw)
	if err != nil {
		return err
	}
	f.Goal = goal
	return nil
}

// SetGender stores the gender matching one of the registration labels.
func (f *NewUser) SetGender(text string, kw Keywords) error {
	gender, err := ClassifyGender(text, kw)
	if err != nil {
		return err
	}
	f.Gender = gender
	return nil
}

// SetAge stores a valid age, or clears it when the user skips.
func (f *NewUser) SetAge(text string, kw Keywords) error {
	if IsSkip(text, kw) {
		f.Age = nil
		return nil
	}
	age, ok := ClassifyAge(text)
	if !ok {
		return IncorrectValue("age")
	}
	f.Age = &age
	return nil
}

// SetLocation applies a typed location. A country without a city keeps the
// previously stored city.
func (f *NewUser) SetLocation(text string, kw Keywords) error {
	loc, err := ClassifyLocation(text, kw)
	if err != nil {
		return err
	}
	if loc.Skip {
		f.Country, f.City = "", ""
		return nil
	}
	f.Country = loc.Country
	if loc.City != "" {
		f.City = loc.City
	}
	return nil
}

// SetAddress stores a geocoded country and city.
func (f *NewUser) SetAddress(country, city string) {
	f.Country = strings.TrimSpace(country)
	f.City = strings.TrimSpace(city)
}

// SetComment stores the free-text comment, empty on skip.
func (f *NewUser) SetComment(text string, kw Keywords) error {
	comment, err := ClassifyFreeText(text, kw)
	if err != nil {
		return err
	}
	f.Comment = comment
	return nil
}

// AddPhoto appends ref unless the list is already full.
func (f *NewUser) AddPhoto(ref string) bool {
	if ref == "" || len(f.Photos) >= MaxPhotosCount {
		return false
	}
	f.Photos = append(f.Photos, ref)
	return true
}

// RemovePhotos empties the list and reports whether anything was removed.
func (f *NewUser) RemovePhotos() bool {
	if len(f.Photos) == 0 {
		return false
	}
	f.Photos = nil
	return true
}

// PhotosFull reports whether AddPhoto would be rejected.
func (f *NewUser) PhotosFull() bool {
	return len(f.Photos) >= MaxPhotosCount
}

// Profile projects the form into the persisted profile shape.
func (f *NewUser) Profile() Profile {
	return Profile{
		UserID:   f.userID,
		Fullname: f.Fullname,
		Goal:     f.Goal,
		Gender:   f.Gender,
		Age:      f.Age,
		Country:  f.Country,
		City:     f.City,
		Comment:  f.Comment,
	}
}

type newUserJSON struct {
	UserID         int64    `json:"user_id"`
	Fullname       string   `json:"fullname,omitempty"`
	Goal           Goal     `json:"goal,omitempty"`
	Gender         Gender   `json:"gender,omitempty"`
	Age            *int     `json:"age,omitempty"`
	Country        string   `json:"country,omitempty"`
	City           string   `json:"city,omitempty"`
	Comment        string   `json:"comment,omitempty"`
	Photos         []string `json:"photos,omitempty"`
	BackNavigation bool     `json:"back_navigation,omitempty"`
}

// MarshalJSON keeps the owner id in the session payload.
func (f *NewUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(newUserJSON{
		UserID:         f.userID,
		Fullname:       f.Fullname,
		Goal:           f.Goal,
		Gender:         f.Gender,
		Age:            f.Age,
		Country:        f.Country,
		City:           f.City,
		Comment:        f.Comment,
		Photos:         f.Photos,
		BackNavigation: f.BackNavigation,
	})
}

// UnmarshalJSON restores a form saved by MarshalJSON.
func (f *NewUser) UnmarshalJSON(data []byte) error {
	var w newUserJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Photos) > MaxPhotosCount {
		w.Photos = w.Photos[:MaxPhotosCount]
	}
	*f = NewUser{
		userID:         w.UserID,
		Fullname:       w.Fullname,
		Goal:           w.Goal,
		Gender:         w.Gender,
		Age:            w.Age,
		Country:        w.Country,
		City:           w.City,
		Comment:        w.Comment,
		Photos:         w.Photos,
		BackNavigation: w.BackNavigation,
	}
	return nil
}
